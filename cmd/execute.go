package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/mcmanager/devtask/pkg/taskrun"
)

// Exit codes besides the ones passed through from failing commands.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitSetup       = 2
	ExitInterrupted = 130
)

var errorLogger = zerolog.New(NewConsoleWriter(os.Stderr, os.Getenv("NO_COLOR") != ""))

func setErrorLogger(logger zerolog.Logger) {
	errorLogger = logger
}

// exitCode reports err and maps it to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *taskrun.ExitError
	if errors.As(err, &exitErr) {
		errorLogger.Error().Str("task", exitErr.Task).Msgf("command exited with status %d", exitErr.Code)
		if exitErr.Code <= 0 {
			return ExitFailure
		}
		return exitErr.Code
	}

	if errors.Is(err, context.Canceled) {
		errorLogger.Warn().Msg("interrupted")
		return ExitInterrupted
	}

	var setup *setupError
	if errors.As(err, &setup) {
		errorLogger.Error().Err(setup.err).Msg("failed")
		return ExitSetup
	}

	errorLogger.Error().Err(err).Msg("failed")
	return ExitFailure
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return exitCode(NewRootCmd().ExecuteContext(ctx))
}
