package taskrun

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTaskFileInParent(t *testing.T) {
	root := t.TempDir()
	taskFile := writeFile(t, filepath.Join(root, "devtask.yml"), "tasks: {}\n")
	nested := filepath.Join(root, "src", "handlers")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindTaskFile(nested)
	require.NoError(t, err)
	assert.Equal(t, taskFile, found)
}

func TestFindTaskFilePrefersYAML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tasks.star"), "def configure():\n    pass\n")
	yamlFile := writeFile(t, filepath.Join(root, "devtask.yaml"), "tasks: {}\n")

	found, err := FindTaskFile(root)
	require.NoError(t, err)
	assert.Equal(t, yamlFile, found)
}

func TestFindTaskFileNearestWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "devtask.yml"), "tasks: {}\n")
	inner := writeFile(t, filepath.Join(root, "sub", "tasks.star"), "def configure():\n    pass\n")

	found, err := FindTaskFile(filepath.Join(root, "sub"))
	require.NoError(t, err)
	assert.Equal(t, inner, found)
}

func TestFindTaskFileIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "devtask.yml"), 0o755))
	taskFile := writeFile(t, filepath.Join(root, "tasks.star"), "def configure():\n    pass\n")

	found, err := FindTaskFile(root)
	require.NoError(t, err)
	assert.Equal(t, taskFile, found)
}

func TestFindTaskFileMissing(t *testing.T) {
	// the temp dir's parents could contain a task file on odd machines
	if _, err := FindTaskFile(os.TempDir()); err == nil {
		t.Skip("a parent of the temp dir contains a task file")
	}

	_, err := FindTaskFile(t.TempDir())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoTaskFile))
}
