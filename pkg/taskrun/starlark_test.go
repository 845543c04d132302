package taskrun

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `
greeting = option("greeting", "hello", help = "what to print")
defaults(False)

def configure():
    setenv("DEVTASK_SAMPLE", "from-script")

    gen = task(cmds = [("echo", greeting, "it's me")])
    task("prep", hidden = True, cmds = ["mkdir -p out"])
    task(
        "build",
        desc = "Build it",
        deps = ["prep"],
        inputs = ["src/*.py"],
        outputs = [resolve_path("out", "app.txt")],
        env = {"MODE": "release"},
        cmds = [gen, ["MODE=debug", "echo", "done"], "echo finished"],
    )
`

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "tasks.star"), sampleScript)

	result, err := RunScript(context.Background(), path, dir, map[string]string{"greeting": "hi"})
	require.NoError(t, err)

	assert.False(t, result.UseDefaults)
	require.Contains(t, result.Options, "greeting")
	assert.Equal(t, "hello", result.Options["greeting"].Default())
	assert.Equal(t, "what to print", result.Options["greeting"].Help)

	assert.Equal(t, []string{"build"}, result.Tasks.Names())
	require.Contains(t, result.Tasks, "prep")
	assert.True(t, result.Tasks["prep"].Hidden)

	build := result.Tasks["build"]
	assert.Equal(t, "Build it", build.Desc)
	assert.Equal(t, dir, build.Base)
	assert.Equal(t, []string{"prep"}, build.Deps)
	assert.Equal(t, []string{filepath.Join(dir, "out", "app.txt")}, build.Outputs)
	assert.Equal(t, "release", build.Env["MODE"])
	assert.Equal(t, "from-script", build.Env["DEVTASK_SAMPLE"])
	require.Len(t, build.Cmds, 3)

	ref, ok := build.Cmds[0].(TaskCmdTaskRef)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(ref.Task.Short, "auto#"))
	assert.True(t, ref.Task.Hidden)
	assert.Equal(t, "from-script", ref.Task.Env["DEVTASK_SAMPLE"])
	require.Len(t, ref.Task.Cmds, 1)
	assert.Equal(t, `echo hi 'it'"'"'s me'`, ref.Task.Cmds[0].(TaskCmdScript).Content)

	assert.Equal(t, "MODE=debug echo done", build.Cmds[1].(TaskCmdScript).Content)
	assert.Equal(t, "echo finished", build.Cmds[2].(TaskCmdScript).Content)
}

func TestRunScriptDefaultOption(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "tasks.star"), sampleScript)

	result, err := RunScript(context.Background(), path, dir, nil)
	require.NoError(t, err)

	ref := result.Tasks["build"].Cmds[0].(TaskCmdTaskRef)
	assert.Contains(t, ref.Task.Cmds[0].(TaskCmdScript).Content, "echo hello")
}

func TestRunScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{
			name:    "missing configure",
			script:  `x = 1`,
			wantErr: "did not declare a configure function",
		},
		{
			name:    "reserved name",
			script:  "def configure():\n    task(\"configure\")\n",
			wantErr: "is reserved",
		},
		{
			name:    "option outside init",
			script:  "def configure():\n    option(\"late\", \"x\")\n",
			wantErr: "init phase",
		},
		{
			name:    "duplicate task",
			script:  "def configure():\n    task(\"a\")\n    task(\"a\")\n",
			wantErr: "declared task a twice",
		},
		{
			name:    "script error",
			script:  "error(\"python 3.12 required\")\ndef configure():\n    pass\n",
			wantErr: "python 3.12 required",
		},
		{
			name:    "bad command type",
			script:  "def configure():\n    task(\"a\", cmds = [1])\n",
			wantErr: "unexpected type int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, filepath.Join(dir, "tasks.star"), tt.script)

			_, err := RunScript(context.Background(), path, dir, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunScriptBuiltins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.yml"), "tool:\n  poetry:\n    name: mcbot\n    packages:\n      - src\n    strict: true\n")
	writeFile(t, filepath.Join(dir, "src", "main.py"), "print('hi')\n")
	path := writeFile(t, filepath.Join(dir, "tasks.star"), `
name = read_yaml("pyproject.yml", "tool.poetry.name")
first = read_yaml("pyproject.yml", "tool.poetry.packages.0")
missing = read_yaml("pyproject.yml", "tool.poetry.version", "0.0.0")
strict = read_yaml("pyproject.yml", "tool.poetry.strict")
prepend_path("//.venv/bin")
min_version(">= 0.1")

def configure():
    if not isdir("src") or not isfile("src/main.py") or isfile("src"):
        error("file checks failed")

    task(name, desc = "%s %s %s %s" % (first, missing, strict, OS), cmds = ["echo $PATH"])
`)

	result, err := RunScript(context.Background(), path, dir, nil)
	require.NoError(t, err)
	require.Contains(t, result.Tasks, "mcbot")
	assert.True(t, result.UseDefaults)

	task := result.Tasks["mcbot"]
	assert.True(t, strings.HasPrefix(task.Desc, "src 0.0.0 True "))
	assert.True(t, strings.HasPrefix(task.Env["PATH"], filepath.Join(dir, ".venv", "bin")))
}
