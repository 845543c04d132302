package taskrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsage(t *testing.T) {
	expected := `Usage: devtask [flags] [task...] [KEY=VALUE...]

Available tasks:
 * clean:   Remove __pycache__ directories, .pyc files and the ruff cache
 * dev:     Fix lint issues, then format
 * fix:     Run ruff with auto-fix enabled
 * format:  Format the code with ruff
 * help:    Show this help
 * install: Install dependencies with Poetry
 * lint:    Run ruff in check-only mode
 * run:     Start the bot
 * test:    Run the API test script
`

	assert.Equal(t, expected, Usage(Program, Defaults(t.TempDir())))
}

func TestUsageIsStable(t *testing.T) {
	dir := t.TempDir()
	first := Usage(Program, Defaults(dir))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Usage(Program, Defaults(dir)))
	}
}

func TestUsageSkipsHiddenTasks(t *testing.T) {
	tasks := TaskList{
		"build":   {Short: "build", Desc: "Build it"},
		"prepare": {Short: "prepare", Desc: "Internal step", Hidden: true},
	}

	usage := Usage("tool", tasks)
	assert.Contains(t, usage, " * build: Build it\n")
	assert.NotContains(t, usage, "prepare")
}
