package taskrun

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mvdan.cc/sh/v3/interp"

	"github.com/mcmanager/devtask/pkg/fsops"
)

type posixFlags struct {
	recursive bool
	force     bool
	parents   bool
}

// splitPosixArgs separates short flags from operands. Operands are resolved against dir.
func splitPosixArgs(dir string, args []string) (posixFlags, []string, error) {
	var flags posixFlags
	operands := make([]string, 0, len(args))
	flagsDone := false

	for _, arg := range args {
		if !flagsDone && arg == "--" {
			flagsDone = true
			continue
		}

		if !flagsDone && len(arg) > 1 && arg[0] == '-' {
			for _, c := range arg[1:] {
				switch c {
				case 'r', 'R':
					flags.recursive = true
				case 'f':
					flags.force = true
				case 'p':
					flags.parents = true
				case 'v':
				default:
					return flags, nil, fmt.Errorf("unsupported flag -%c", c)
				}
			}
			continue
		}

		if !filepath.IsAbs(arg) {
			arg = filepath.Join(dir, arg)
		}
		operands = append(operands, arg)
	}

	return flags, operands, nil
}

func runPosixHelper(ctx context.Context, args []string) error {
	hc := interp.HandlerCtx(ctx)
	flags, operands, err := splitPosixArgs(hc.Dir, args[1:])
	if err == nil {
		switch args[0] {
		case "rm":
			err = fsops.Remove(operands, flags.recursive, flags.force)
		case "mkdir":
			err = fsops.Mkdir(operands, flags.parents)
		case "mv":
			if len(operands) < 2 {
				err = fmt.Errorf("missing destination operand")
			} else {
				err = fsops.Move(operands[:len(operands)-1], operands[len(operands)-1])
			}
		}
	}

	if err != nil {
		fmt.Fprintf(hc.Stderr, "%s: %s\n", args[0], err)
		return interp.NewExitStatus(1)
	}

	return nil
}

func newExecHandler(killTimeout time.Duration) interp.ExecHandlerFunc {
	defaultHandler := interp.DefaultExecHandler(killTimeout)

	return func(ctx context.Context, args []string) error {
		if len(args) > 0 {
			switch args[0] {
			case "mv", "rm", "mkdir":
				// always use our cross-platform implementation for these operations to make sure
				// they behave consistently
				return runPosixHelper(ctx, args)
			}
		}

		return defaultHandler(ctx, args)
	}
}

var defaultOpenHandler = interp.DefaultOpenHandler()

func openHandler(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	if path == "/dev/null" {
		path = os.DevNull
	}

	return defaultOpenHandler(ctx, path, flag, perm)
}

func shellReadDir(path string) ([]fs.FileInfo, error) {
	if path == "" {
		path = "."
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	infos := make([]fs.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		infos = append(infos, info)
	}

	return infos, nil
}

func taskEnv(task *Task, extra []string) []string {
	osEnv := os.Environ()
	overrides := make(map[string]string, len(task.Env)+len(extra))
	for k, v := range task.Env {
		overrides[k] = v
	}
	for _, item := range extra {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) == 2 {
			overrides[parts[0]] = parts[1]
		}
	}

	envVars := make([]string, 0, len(osEnv)+len(overrides))
	for _, item := range osEnv {
		name := strings.SplitN(item, "=", 2)[0]
		// skip overridden entries to avoid conflicts
		if _, present := overrides[name]; !present {
			envVars = append(envVars, item)
		}
	}

	for k, v := range overrides {
		envVars = append(envVars, fmt.Sprintf("%s=%s", k, v))
	}

	return envVars
}
