// Package cmd implements the devtask command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mcmanager/devtask/pkg/config"
	"github.com/mcmanager/devtask/pkg/console"
	"github.com/mcmanager/devtask/pkg/taskrun"
)

type rootFlags struct {
	dryRun   bool
	force    bool
	watch    bool
	dir      string
	file     string
	logLevel string
	json     bool
}

// session is everything a command needs once configuration and the task file are loaded.
type session struct {
	ctx         context.Context
	cfg         *config.Config
	logger      zerolog.Logger
	projectRoot string
	taskFile    string
	tasks       taskrun.TaskList
	options     map[string]string
}

// setupError marks failures that happen before any task runs.
type setupError struct {
	err error
}

func (e *setupError) Error() string {
	return e.err.Error()
}

func (e *setupError) Unwrap() error {
	return e.err
}

func setupErr(err error) error {
	if err == nil {
		return nil
	}
	return &setupError{err: err}
}

// NewRootCmd builds the devtask command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   taskrun.Program + " [flags] [task...] [KEY=VALUE...]",
		Short: "Development task runner for Python projects",
		Long: `This command finds the nearest devtask.yml, devtask.yaml or tasks.star file and executes the given tasks.
Without a task file the built-in Poetry/ruff tasks are used. Run it without arguments to list the tasks.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			names, options, err := splitArgs(args)
			if err != nil {
				return setupErr(err)
			}

			s, err := prepare(cmd, flags, options)
			if err != nil {
				return err
			}

			if len(names) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), taskrun.Usage(taskrun.Program, s.tasks))
				return nil
			}

			// rejects unknown names and cycles before anything runs
			if _, err := taskrun.Plan(s.tasks, names); err != nil {
				return setupErr(eris.Wrapf(err, "available tasks: %s", strings.Join(s.tasks.Names(), ", ")))
			}

			if flags.watch {
				return s.watch(cmd, flags, names)
			}
			return s.runAll(cmd, flags, names)
		},
	}

	rootCmd.Flags().BoolVarP(&flags.dryRun, "dry", "n", false, "dry run; only print the commands, don't execute anything")
	rootCmd.Flags().BoolVarP(&flags.force, "force", "f", false, "force run; run the passed tasks and their dependencies even if they're up to date")
	rootCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rerun the passed tasks whenever one of their inputs changes")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", "", "start looking for the task file in this directory")
	rootCmd.PersistentFlags().StringVar(&flags.file, "file", "", "task file to load instead of searching for one")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "output JSON log lines instead of pretty console messages")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return setupErr(err)
	})
	// "help" is a task name, cobra's help command would shadow it
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.AddCommand(newListCmd(flags))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRmCmd(), newMvCmd(), newMkdirCmd())

	return rootCmd
}

// splitArgs separates task names from KEY=VALUE options.
func splitArgs(args []string) ([]string, map[string]string, error) {
	names := make([]string, 0, len(args))
	options := make(map[string]string)

	for _, part := range args {
		pos := strings.Index(part, "=")
		if pos == 0 {
			return nil, nil, eris.Errorf("invalid option %q: missing name", part)
		}

		if pos > 0 {
			options[part[:pos]] = part[pos+1:]
		} else {
			names = append(names, part)
		}
	}

	return names, options, nil
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.Log.JSON {
		logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(NewConsoleWriter(out, os.Getenv("NO_COLOR") != ""))
	}

	if cfg.Debug || debugEnabled() {
		logger = logger.With().Stack().Logger()
	}

	return logger.Level(cfg.LogLevel())
}

func prepare(cmd *cobra.Command, flags *rootFlags, options map[string]string) (*session, error) {
	startDir := flags.dir
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, setupErr(eris.Wrap(err, "failed to retrieve the current working directory"))
		}
		startDir = wd
	}

	startDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, setupErr(err)
	}

	taskFile := flags.file
	if taskFile != "" && !filepath.IsAbs(taskFile) {
		taskFile = filepath.Join(startDir, taskFile)
	}

	if taskFile == "" {
		taskFile, err = taskrun.FindTaskFile(startDir)
		if err != nil && !eris.Is(err, taskrun.ErrNoTaskFile) {
			return nil, setupErr(err)
		}
	}

	// settings live next to the task file
	configDir := startDir
	if taskFile != "" {
		configDir = filepath.Dir(taskFile)
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, setupErr(err)
	}

	if flags.file == "" && cfg.TaskFile != "" {
		taskFile = cfg.TaskFile
		if !filepath.IsAbs(taskFile) {
			taskFile = filepath.Join(configDir, taskFile)
		}
	}

	if cmd.Flags().Changed("log-level") {
		if err := cfg.SetLogLevel(flags.logLevel); err != nil {
			return nil, setupErr(err)
		}
	}
	if cmd.Flags().Changed("json") {
		cfg.Log.JSON = flags.json
	}

	stderr := cmd.ErrOrStderr()
	s := &session{
		cfg:         cfg,
		logger:      newLogger(cfg, stderr),
		projectRoot: startDir,
		options:     options,
	}
	setErrorLogger(s.logger)
	console.SetOutput(stderr, cfg.Log.JSON || os.Getenv("NO_COLOR") != "")
	s.ctx = taskrun.WithLogger(cmd.Context(), &s.logger)

	if taskFile == "" {
		s.logger.Debug().Str("path", startDir).Msg("no task file found, using the built-in tasks")
		s.tasks = taskrun.Defaults(startDir)
	} else {
		s.taskFile = taskFile
		s.projectRoot = filepath.Dir(taskFile)
		s.tasks, err = taskrun.Load(s.ctx, taskFile, taskrun.LoadOptions{
			Options:  options,
			CacheDir: cfg.Cache.Dir,
		})
		if err != nil {
			return nil, setupErr(eris.Wrapf(err, "failed to load tasks from %s", taskFile))
		}
	}

	if err := taskrun.Validate(s.tasks); err != nil {
		return nil, setupErr(err)
	}

	return s, nil
}

func (s *session) runOptions(cmd *cobra.Command, flags *rootFlags) taskrun.Options {
	opts := taskrun.Options{
		DryRun:      flags.dryRun,
		Force:       flags.force,
		KillTimeout: s.cfg.Shell.KillTimeout,
		Stdin:       cmd.InOrStdin(),
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	}

	// YAML files export options themselves and Starlark files read them via option()
	if s.taskFile == "" {
		for key, value := range s.options {
			opts.Env = append(opts.Env, key+"="+value)
		}
	}

	return opts
}

// runAll runs the named tasks left to right and stops at the first failure.
func (s *session) runAll(cmd *cobra.Command, flags *rootFlags, names []string) error {
	opts := s.runOptions(cmd, flags)
	for _, name := range names {
		if err := taskrun.RunTask(s.ctx, s.projectRoot, name, s.tasks, opts); err != nil {
			return err
		}
	}
	return nil
}
