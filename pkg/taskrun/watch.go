package taskrun

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
)

// skipDirs are never watched since tasks write into them on every run.
var skipDirs = map[string]bool{
	".git":          true,
	".devtask":      true,
	".ruff_cache":   true,
	".mypy_cache":   true,
	".venv":         true,
	"__pycache__":   true,
	"node_modules":  true,
	".pytest_cache": true,
}

// WatchDirs returns the directories to watch for the given task names. Tasks with
// inputs contribute the directories of their resolved inputs, the rest contribute
// their whole base directory.
func WatchDirs(tasks TaskList, names []string) ([]string, error) {
	dirs := map[string]bool{}
	for _, name := range names {
		task, ok := tasks[name]
		if !ok {
			return nil, eris.Wrapf(ErrTaskNotFound, "task %s", name)
		}

		if len(task.Inputs) == 0 {
			if err := addTree(dirs, task.Base); err != nil {
				return nil, err
			}
			continue
		}

		inputs, err := resolvePatternLists(task.Base, task.Inputs)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to resolve inputs of %s", name)
		}
		for _, item := range inputs {
			info, err := os.Stat(item)
			if err != nil {
				continue
			}
			if info.IsDir() {
				dirs[item] = true
			} else {
				dirs[filepath.Dir(item)] = true
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for dir := range dirs {
		result = append(result, dir)
	}
	sort.Strings(result)
	return result, nil
}

func addTree(dirs map[string]bool, root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}

		if !entry.IsDir() {
			return nil
		}
		if path != root && skipDirs[entry.Name()] {
			return filepath.SkipDir
		}

		dirs[path] = true
		return nil
	})
}

// Watcher calls a function whenever files in a set of directories change. Bursts of
// events are collapsed into a single call once the debounce interval passes quietly.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher starts watching dirs.
func NewWatcher(dirs []string, debounce time.Duration) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, eris.New("nothing to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, eris.Wrap(err, "failed to create watcher")
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, eris.Wrapf(err, "failed to watch %s", dir)
		}
	}

	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	return &Watcher{watcher: watcher, debounce: debounce}, nil
}

// Run blocks until ctx is cancelled, calling onChange with the changed paths after
// every settled burst of events. The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := map[string]bool{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}

			log(ctx).Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change detected")
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log(ctx).Warn().Err(err).Msg("watch error")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}

			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			pending = map[string]bool{}

			onChange(paths)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#") || strings.HasSuffix(base, ".pyc") {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(event.Name), "/") {
		if skipDirs[part] {
			return false
		}
	}
	return true
}
