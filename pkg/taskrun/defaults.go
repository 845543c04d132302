package taskrun

import "path/filepath"

// Program is the name used in the usage summary.
const Program = "devtask"

var pythonSources = []string{"src/**/*.py", "scripts/**/*.py"}

type defaultTask struct {
	desc   string
	deps   []string
	cmds   []string
	clean  []string
	inputs []string
	usage  bool
}

// The project's command table. Every entry wraps exactly one tool invocation except
// dev (composition), clean (file removal) and help (usage summary).
var defaultTasks = map[string]defaultTask{
	"install": {
		desc: "Install dependencies with Poetry",
		cmds: []string{"poetry install"},
	},
	"lint": {
		desc:   "Run ruff in check-only mode",
		cmds:   []string{"poetry run ruff check src scripts"},
		inputs: pythonSources,
	},
	"fix": {
		desc:   "Run ruff with auto-fix enabled",
		cmds:   []string{"poetry run ruff check --fix src scripts"},
		inputs: pythonSources,
	},
	"format": {
		desc:   "Format the code with ruff",
		cmds:   []string{"poetry run ruff format src scripts"},
		inputs: pythonSources,
	},
	"dev": {
		desc: "Fix lint issues, then format",
		deps: []string{"fix", "format"},
	},
	"test": {
		desc:   "Run the API test script",
		cmds:   []string{"poetry run python scripts/test_apis.py"},
		inputs: pythonSources,
	},
	"run": {
		desc:   "Start the bot",
		cmds:   []string{"poetry run python -m src.main"},
		inputs: pythonSources,
	},
	"clean": {
		desc:  "Remove __pycache__ directories, .pyc files and the ruff cache",
		clean: []string{"**/__pycache__", "**/*.pyc", ".ruff_cache"},
	},
	"help": {
		desc:  "Show this help",
		usage: true,
	},
}

// Defaults returns the built-in task list rooted at projectRoot.
func Defaults(projectRoot string) TaskList {
	base, err := filepath.Abs(projectRoot)
	if err != nil {
		base = filepath.Clean(projectRoot)
	}

	tasks := make(TaskList, len(defaultTasks))
	for name, def := range defaultTasks {
		task := &Task{
			Short:  name,
			Desc:   def.desc,
			Base:   base,
			Env:    map[string]string{},
			Deps:   append([]string(nil), def.deps...),
			Clean:  append([]string(nil), def.clean...),
			Inputs: append([]string(nil), def.inputs...),
			Cmds:   make([]TaskCmd, 0, len(def.cmds)),
		}

		for idx, content := range def.cmds {
			task.Cmds = append(task.Cmds, TaskCmdScript{TaskName: name, Content: content, Index: idx})
		}

		if def.usage {
			task.Cmds = append(task.Cmds, TaskCmdUsage{Program: Program})
		}

		tasks[name] = task
	}

	return tasks
}
