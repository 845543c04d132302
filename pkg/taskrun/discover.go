package taskrun

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// TaskFileNames lists the task file names in the order they are looked up.
var TaskFileNames = []string{"devtask.yml", "devtask.yaml", "tasks.star"}

// FindTaskFile searches start and its parents for the first task file. It returns
// ErrNoTaskFile when the filesystem root is reached without a match.
func FindTaskFile(start string) (string, error) {
	path, err := filepath.Abs(start)
	if err != nil {
		return "", eris.Wrap(err, "failed to resolve start directory")
	}

	for {
		for _, name := range TaskFileNames {
			taskPath := filepath.Join(path, name)
			info, err := os.Stat(taskPath)
			if err == nil && !info.IsDir() {
				return taskPath, nil
			}
			if err != nil && !eris.Is(err, os.ErrNotExist) {
				return "", eris.Wrapf(err, "failed to check %s", taskPath)
			}
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", eris.Wrapf(ErrNoTaskFile, "searched from %s", start)
		}

		path = parent
	}
}
