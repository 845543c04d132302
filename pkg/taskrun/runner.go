package taskrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Options control a single RunTask call.
type Options struct {
	// DryRun only logs the commands.
	DryRun bool
	// Force ignores the skip_if_exists and inputs/outputs checks of the task and its dependencies.
	Force bool
	// Env holds additional KEY=VALUE pairs for every command. They win over task env.
	Env []string
	// KillTimeout is how long a cancelled command gets between SIGINT and SIGKILL.
	KillTimeout time.Duration

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) stdin() io.Reader {
	if o.Stdin == nil {
		return os.Stdin
	}
	return o.Stdin
}

func (o Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}

func (o Options) killTimeout() time.Duration {
	if o.KillTimeout <= 0 {
		return 2 * time.Second
	}
	return o.KillTimeout
}

type (
	runtimeCtxKey struct{}
	runtimeCtx    struct {
		runTasks    map[string]bool
		projectRoot string
		tasks       TaskList
		opts        Options
	}
)

func getRuntimeCtx(ctx context.Context) *runtimeCtx {
	return ctx.Value(runtimeCtxKey{}).(*runtimeCtx)
}

// RunTask executes the named task after its dependencies. Each task runs at most once
// per call. A command exiting with a non-zero status yields an *ExitError.
func RunTask(ctx context.Context, projectRoot, name string, tasks TaskList, opts Options) error {
	taskMeta, found := tasks[name]
	if !found {
		return eris.Wrapf(ErrTaskNotFound, "task %s (available: %s)", name, strings.Join(tasks.Names(), ", "))
	}

	rctx := runtimeCtx{
		projectRoot: projectRoot,
		runTasks:    make(map[string]bool),
		tasks:       tasks,
		opts:        opts,
	}

	ctx = context.WithValue(ctx, runtimeCtxKey{}, &rctx)
	return runTaskInternal(ctx, taskMeta, opts.Force, true)
}

// passThrough keeps exit errors unwrapped so callers can read the status.
func passThrough(err error, format string, args ...interface{}) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	return eris.Wrapf(err, format, args...)
}

func runTaskInternal(ctx context.Context, task *Task, force, canSkip bool) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	rctx := getRuntimeCtx(ctx)
	opts := rctx.opts
	status, ok := rctx.runTasks[task.Short]
	if ok {
		if status {
			// this task has already been run
			log(ctx).Debug().Msgf("Task %s already run", task.Short)
			return nil
		}

		return eris.Wrapf(ErrCycle, "task %s was called recursively", task.Short)
	}

	rctx.runTasks[task.Short] = false

	for _, dep := range task.Deps {
		if !rctx.runTasks[dep] {
			depTask, ok := rctx.tasks[dep]
			if !ok {
				return eris.Wrapf(ErrTaskNotFound, "task %s depends on unknown task %s", task.Short, dep)
			}

			err := runTaskInternal(ctx, depTask, force, true)
			if err != nil {
				log(ctx).Error().Str("task", task.Short).Msgf("failed due to its dependency %s", dep)
				return passThrough(err, "task %s failed due to its dependency %s", task.Short, dep)
			}
		}
	}

	if canSkip && !force {
		skip, err := upToDate(ctx, task)
		if err != nil {
			return err
		}

		if skip {
			rctx.runTasks[task.Short] = true
			return nil
		}
	}

	// With the skip and input/output checks done, we can finally start executing
	runner, err := interp.New(
		interp.Dir(task.Base),
		interp.Env(expand.ListEnviron(taskEnv(task, opts.Env)...)),
		interp.ExecHandler(newExecHandler(opts.killTimeout())),
		interp.OpenHandler(openHandler),
		interp.StdIO(opts.stdin(), opts.stdout(), opts.stderr()),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "failed to initialize runner")
	}

	parser := syntax.NewParser()
	printer := syntax.NewPrinter(
		syntax.Minify(true),
	)
	strBuffer := strings.Builder{}

	for _, item := range task.Cmds {
		if usage, ok := item.(TaskCmdUsage); ok {
			if !opts.DryRun {
				fmt.Fprint(opts.stdout(), Usage(usage.Program, rctx.tasks))
			}
			continue
		}

		stmts, err := item.ToShellStmts(parser)
		if err != nil {
			return eris.Wrap(err, "failed to parse shell script")
		}
		if stmts != nil {
			for _, stm := range stmts {
				strBuffer.Reset()
				if err := printer.Print(&strBuffer, stm); err != nil {
					return eris.Wrap(err, "failed to print shell statement")
				}
				log(ctx).Info().
					Str("task", task.Short).
					Bool("command", true).
					Msg(strBuffer.String())

				if !opts.DryRun {
					err = runner.Run(ctx, stm)
					if err != nil {
						if ctx.Err() != nil {
							return ctx.Err()
						}

						if code, isExit := interp.IsExitStatus(err); isExit {
							return &ExitError{Task: task.Short, Code: int(code)}
						}
						return eris.Wrapf(err, "task %s failed", task.Short)
					}

					if runner.Exited() {
						rctx.runTasks[task.Short] = true
						return nil
					}
				}
			}
		} else {
			subTask, err := item.ToTask()
			if err != nil {
				return eris.Wrap(err, "failed to retrieve task ref")
			}

			if subTask == nil {
				return eris.Errorf("unexpected task command %+v", item)
			}

			err = runTaskInternal(ctx, subTask, force, true)
			if err != nil {
				return err
			}
		}

		if err = ctx.Err(); err != nil {
			return err
		}
	}

	if err := cleanTask(ctx, task, opts); err != nil {
		return err
	}

	if task.Short != "" {
		rctx.runTasks[task.Short] = true
	}
	return nil
}

// upToDate reports whether task can be skipped: either all skip_if_exists entries are
// present or every output is newer than the newest input.
func upToDate(ctx context.Context, task *Task) (bool, error) {
	if len(task.SkipIfExists) > 0 {
		skipList, err := resolvePatternLists(task.Base, task.SkipIfExists)
		if err != nil {
			return false, eris.Wrapf(err, "failed to resolve skip_if_exists list")
		}

		found := 0
		for _, item := range skipList {
			_, err := os.Stat(item)
			if err == nil {
				found++
			} else if !eris.Is(err, os.ErrNotExist) {
				return false, eris.Wrapf(err, "failed to check %s", item)
			}
		}

		if found > 0 && found == len(skipList) {
			log(ctx).Info().
				Str("task", task.Short).
				Msg("skipped because all skip files exist")
			return true, nil
		}
	}

	if len(task.Inputs) == 0 || len(task.Outputs) == 0 {
		return false, nil
	}

	var newestInput time.Time
	inputList, err := resolvePatternLists(task.Base, task.Inputs)
	if err != nil {
		return false, eris.Wrap(err, "failed to resolve inputs")
	}

	outputList, err := resolvePatternLists(task.Base, task.Outputs)
	if err != nil {
		return false, eris.Wrap(err, "failed to resolve output list")
	}

	for _, item := range inputList {
		info, err := os.Stat(item)
		if err != nil {
			return false, eris.Wrapf(err, "failed to check input %s", item)
		}

		if info.ModTime().After(newestInput) {
			newestInput = info.ModTime()
		}
	}

	if newestInput.IsZero() || len(outputList) == 0 {
		return false, nil
	}

	var newestOutput time.Time
	oldestOutput := time.Now()
	for _, item := range outputList {
		info, err := os.Stat(item)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				// a missing output always means the task has to run
				return false, nil
			}
			return false, eris.Wrapf(err, "failed to check output %s", item)
		}

		mt := info.ModTime()
		if mt.After(newestOutput) {
			newestOutput = mt
		}
		if mt.Before(oldestOutput) {
			oldestOutput = mt
		}
	}

	if newestOutput.Sub(oldestOutput) > 10*time.Minute {
		log(ctx).Warn().
			Str("task", task.Short).
			Msgf("oldest output is %f minutes older than the newest output", newestOutput.Sub(oldestOutput).Minutes())
	}

	if oldestOutput.After(newestInput) {
		log(ctx).Info().
			Str("task", task.Short).
			Msgf("nothing to do (output is %f seconds newer)", oldestOutput.Sub(newestInput).Seconds())
		return true, nil
	}

	return false, nil
}
