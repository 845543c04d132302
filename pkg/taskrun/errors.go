package taskrun

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	ErrTaskNotFound = eris.New("task not found")
	ErrCycle        = eris.New("dependency cycle")
	ErrNoTaskFile   = eris.New("no task file found")
	ErrReservedName = eris.New("reserved task name")
)

// ExitError reports a command that exited with a non-zero status. Code is the
// status of the wrapped tool and becomes the exit code of devtask.
type ExitError struct {
	Task string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("task %s exited with status %d", e.Task, e.Code)
}
