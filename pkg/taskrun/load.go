package taskrun

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// LoadOptions configure Load.
type LoadOptions struct {
	// Options are the KEY=VALUE arguments from the command line.
	Options map[string]string
	// CacheDir holds the evaluated Starlark task list. Empty disables caching.
	CacheDir string
}

// Load reads the task file at path, picking the format by file name, and fills in
// the built-in tasks the file does not override.
func Load(ctx context.Context, path string, opts LoadOptions) (TaskList, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	var tasks TaskList
	switch {
	case strings.HasSuffix(absPath, ".star"):
		tasks, err = loadStarlark(ctx, absPath, opts)
	case strings.HasSuffix(absPath, ".yml"), strings.HasSuffix(absPath, ".yaml"):
		tasks, err = LoadYAML(absPath, opts.Options)
	default:
		return nil, eris.Errorf("unsupported task file %s", path)
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(tasks); err != nil {
		return nil, eris.Wrapf(err, "invalid task file %s", path)
	}

	return tasks, nil
}

func loadStarlark(ctx context.Context, absPath string, opts LoadOptions) (TaskList, error) {
	projectRoot := filepath.Dir(absPath)

	var cacheFile string
	var key cacheKey
	if opts.CacheDir != "" {
		cacheFile = opts.CacheDir
		if !filepath.IsAbs(cacheFile) {
			cacheFile = filepath.Join(projectRoot, cacheFile)
		}
		cacheFile = filepath.Join(cacheFile, "tasks.gob")

		var err error
		key, err = newCacheKey(absPath, opts.Options)
		if err != nil {
			return nil, err
		}

		entry, hit, err := readCache(cacheFile, key)
		if err != nil {
			log(ctx).Warn().Err(err).Str("path", cacheFile).Msg("ignoring unreadable task cache")
		}
		if hit {
			log(ctx).Debug().Str("path", cacheFile).Msg("using cached task list")
			return withDefaults(entry.Tasks, entry.UseDefaults, projectRoot), nil
		}
	}

	result, err := RunScript(ctx, absPath, projectRoot, opts.Options)
	if err != nil {
		return nil, err
	}

	if cacheFile != "" {
		err = writeCache(cacheFile, key, cacheEntry{Tasks: result.Tasks, UseDefaults: result.UseDefaults})
		if err != nil {
			log(ctx).Warn().Err(err).Str("path", cacheFile).Msg("failed to write task cache")
		}
	}

	return withDefaults(result.Tasks, result.UseDefaults, projectRoot), nil
}

func withDefaults(tasks TaskList, useDefaults bool, projectRoot string) TaskList {
	if useDefaults {
		tasks.Merge(Defaults(projectRoot))
	}
	return tasks
}
