package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosixHelpers(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "build", "lib")

	_, _, code := execute(t, "mkdir", "-p", nested)
	require.Equal(t, ExitOK, code)
	assert.DirExists(t, nested)

	file := filepath.Join(nested, "module.py")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, _, code = execute(t, "mv", file, dir)
	require.Equal(t, ExitOK, code)
	assert.FileExists(t, filepath.Join(dir, "module.py"))

	_, _, code = execute(t, "rm", filepath.Join(dir, "build"))
	assert.Equal(t, ExitFailure, code)

	_, _, code = execute(t, "rm", "-rf", filepath.Join(dir, "build"), filepath.Join(dir, "missing"))
	require.Equal(t, ExitOK, code)
	assert.NoDirExists(t, filepath.Join(dir, "build"))

	_, _, code = execute(t, "mv", filepath.Join(dir, "module.py"))
	assert.Equal(t, ExitFailure, code)
}
