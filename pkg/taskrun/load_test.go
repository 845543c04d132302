package taskrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cachedScript = `
target = option("target", "src")

def configure():
    task("typecheck", desc = "Run mypy", cmds = [("poetry", "run", "mypy", target)])
    task("lint", desc = "Lint everything", deps = ["typecheck"], cmds = ["poetry run ruff check ."])
`

func TestLoadStarlarkMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "tasks.star"), cachedScript)

	tasks, err := Load(context.Background(), path, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Lint everything", tasks["lint"].Desc)
	assert.Equal(t, "Run mypy", tasks["typecheck"].Desc)
	assert.Contains(t, tasks, "format")
	assert.Contains(t, tasks, "clean")
	assert.NoDirExists(t, filepath.Join(dir, ".devtask"))
}

func TestLoadStarlarkCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "tasks.star"), cachedScript)
	opts := LoadOptions{Options: map[string]string{"target": "scripts"}, CacheDir: ".devtask"}

	first, err := Load(context.Background(), path, opts)
	require.NoError(t, err)
	cacheFile := filepath.Join(dir, ".devtask", "tasks.gob")
	require.FileExists(t, cacheFile)

	second, err := Load(context.Background(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, first.Names(), second.Names())
	assert.Equal(t, first["typecheck"].Cmds, second["typecheck"].Cmds)
	assert.Equal(t, "poetry run mypy scripts", second["typecheck"].Cmds[0].(TaskCmdScript).Content)

	key, err := newCacheKey(path, opts.Options)
	require.NoError(t, err)
	_, hit, err := readCache(cacheFile, key)
	require.NoError(t, err)
	assert.True(t, hit)

	otherKey, err := newCacheKey(path, map[string]string{"target": "src"})
	require.NoError(t, err)
	_, hit, err = readCache(cacheFile, otherKey)
	require.NoError(t, err)
	assert.False(t, hit, "options are part of the key")
}

func TestLoadStarlarkCacheInvalidation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "tasks.star"), cachedScript)
	opts := LoadOptions{CacheDir: filepath.Join(dir, "cache")}

	_, err := Load(context.Background(), path, opts)
	require.NoError(t, err)

	writeFile(t, path, "def configure():\n    task(\"only\", desc = \"Only task\")\n    defaults(False)\n")
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	_, err = Load(context.Background(), path, opts)
	require.Error(t, err, "defaults() outside the init phase")

	writeFile(t, path, "defaults(False)\ndef configure():\n    task(\"only\", desc = \"Only task\")\n")
	later = later.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	tasks, err := Load(context.Background(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, tasks.Names())
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "devtask.yml"), "tasks:\n  lint:\n    cmds: [\"flake8\"]\n")

	tasks, err := Load(context.Background(), path, LoadOptions{CacheDir: ".devtask"})
	require.NoError(t, err)
	assert.Equal(t, "flake8", tasks["lint"].Cmds[0].(TaskCmdScript).Content)
	assert.NoDirExists(t, filepath.Join(dir, ".devtask"))
}

func TestLoadRejectsCycles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "devtask.yml"), `
tasks:
  fix:
    deps: [format]
  format:
    deps: [fix]
`)

	_, err := Load(context.Background(), path, LoadOptions{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrCycle))
	assert.Contains(t, err.Error(), "fix -> format -> fix")
}

func TestLoadUnsupportedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "Makefile"), "all:\n")

	_, err := Load(context.Background(), path, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported task file")
}
