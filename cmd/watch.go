package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcmanager/devtask/pkg/console"
	"github.com/mcmanager/devtask/pkg/taskrun"
)

// maxListedChanges caps the changed files printed before a rerun.
const maxListedChanges = 5

// watch runs names once and then again after every settled burst of file changes
// until the context is cancelled. Task failures are reported but don't end the loop.
func (s *session) watch(cmd *cobra.Command, flags *rootFlags, names []string) error {
	plan, err := taskrun.Plan(s.tasks, names)
	if err != nil {
		return setupErr(err)
	}

	dirs, err := taskrun.WatchDirs(s.tasks, plan)
	if err != nil {
		return setupErr(err)
	}

	watcher, err := taskrun.NewWatcher(dirs, s.cfg.Watch.Debounce)
	if err != nil {
		return setupErr(err)
	}

	label := strings.Join(names, ", ")
	run := func() {
		console.PrintTask("Running " + label)
		if err := s.runAll(cmd, flags, names); err != nil {
			if s.ctx.Err() != nil {
				return
			}
			console.PrintError(err.Error())
		}
	}

	run()
	console.PrintTask(fmt.Sprintf("Watching %d directories for changes (Ctrl-C to stop)", len(dirs)))

	return watcher.Run(s.ctx, func(paths []string) {
		for idx, path := range paths {
			if idx == maxListedChanges {
				console.PrintSubtask(fmt.Sprintf("and %d more", len(paths)-idx))
				break
			}

			if rel, err := filepath.Rel(s.projectRoot, path); err == nil {
				path = rel
			}
			console.PrintSubtask(path)
		}
		run()
	})
}
