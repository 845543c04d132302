package taskrun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
	starsyntax "go.starlark.net/syntax"
	"mvdan.cc/sh/v3/syntax"
)

type ScriptOption struct {
	DefaultValue starlark.String
	Help         string
}

func (o ScriptOption) Default() string {
	return o.DefaultValue.GoString()
}

// ScriptResult is everything a tasks.star file declared.
type ScriptResult struct {
	Tasks       TaskList
	Options     map[string]ScriptOption
	UseDefaults bool
}

type parserCtx struct {
	ctx          context.Context
	options      map[string]ScriptOption
	optionValues map[string]string
	envOverrides map[string]string
	yamlCache    map[string]interface{}
	filepath     string
	projectRoot  string
	tasks        []*Task
	initPhase    bool
	useDefaults  bool
}

func getCtx(thread *starlark.Thread) *parserCtx {
	return thread.Local("parserCtx").(*parserCtx)
}

// StarlarkPath is a normalized filesystem path returned by resolve_path().
type StarlarkPath string

func (p StarlarkPath) String() string {
	return starlark.String(p).String()
}

func (p StarlarkPath) Type() string {
	return "path"
}

func (p StarlarkPath) Freeze() {}

func (p StarlarkPath) Truth() starlark.Bool {
	return p != ""
}

func (p StarlarkPath) Hash() (uint32, error) {
	return starlark.String(p).Hash()
}

func (p StarlarkPath) CompareSameType(op starsyntax.Token, y_ starlark.Value, depth int) (bool, error) {
	y := y_.(StarlarkPath)

	switch op {
	case starsyntax.EQL:
		return p == y, nil
	case starsyntax.NEQ:
		return p != y, nil
	case starsyntax.LT:
		return p < y, nil
	case starsyntax.LE:
		return p <= y, nil
	case starsyntax.GT:
		return p > y, nil
	case starsyntax.GE:
		return p >= y, nil
	}

	return false, eris.Errorf("unknown operator %v", op)
}

// Implement starlark.Value for *Task so task() results can be used as commands of other tasks.

// String returns a string representation of the task
func (t *Task) String() string {
	return fmt.Sprintf("<Task %s: %s>", t.Short, t.Desc)
}

// Type always returns "task" to indicate this type
func (t *Task) Type() string {
	return "task"
}

// Freeze doesn't do anything since tasks are immutable anyway
func (t *Task) Freeze() {}

// Truth always returns true since a task can't be nil or None
func (t *Task) Truth() starlark.Bool {
	return starlark.True
}

// Hash always returns an error since task is not hashable
func (t *Task) Hash() (uint32, error) {
	return 0, eris.New("task is not a hashable type")
}

func normalizePath(ctx *parserCtx, pathList ...string) string {
	result := filepath.Dir(ctx.filepath)

	for _, path := range pathList {
		if strings.HasPrefix(path, "//") {
			result = filepath.Join(ctx.projectRoot, path[2:])
		} else if strings.HasPrefix(path, "/") {
			result = filepath.Join(filepath.VolumeName(result), path)
		} else if !filepath.IsAbs(path) {
			result = filepath.Join(result, path)
		} else {
			result = path
		}
	}

	return filepath.Clean(result)
}

func simplifyPath(ctx *parserCtx, path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	if strings.HasPrefix(absPath, ctx.projectRoot+string(filepath.Separator)) {
		return "//" + filepath.ToSlash(absPath[len(ctx.projectRoot)+1:])
	}
	return path
}

type starlarkIterable interface {
	Len() int
	Iterate() starlark.Iterator
}

func starlarkIterable2stringSlice(input starlarkIterable, field string) ([]string, error) {
	if value, ok := input.(*starlark.List); ok && value == nil {
		return []string{}, nil
	}

	result := make([]string, 0, input.Len())
	iter := input.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		switch value := item.(type) {
		case starlark.String:
			result = append(result, value.GoString())
		case StarlarkPath:
			result = append(result, string(value))
		default:
			return nil, eris.Errorf("expected all items in %s to be strings but found %s", field, item.Type())
		}
	}
	return result, nil
}

func info(thread *starlark.Thread, msg string, args ...interface{}) {
	ctx := getCtx(thread)
	pos := thread.CallFrame(1).Pos

	log(ctx.ctx).Info().
		Msgf("%s:%d:%d: %s", simplifyPath(ctx, ctx.filepath), pos.Line, pos.Col, fmt.Sprintf(msg, args...))
}

func warn(thread *starlark.Thread, msg string, args ...interface{}) {
	ctx := getCtx(thread)
	pos := thread.CallFrame(1).Pos

	log(ctx.ctx).Warn().
		Msgf("%s:%d:%d: %s", simplifyPath(ctx, ctx.filepath), pos.Line, pos.Col, fmt.Sprintf(msg, args...))
}

// quoteCmdParts turns a list of arguments into a single shell command line.
// Leading KEY=VALUE items become environment assignments.
func quoteCmdParts(parts []starlark.Value, base string) (string, error) {
	printer := syntax.NewPrinter(syntax.Minify(true))
	cmd := new(syntax.CallExpr)
	inAssigns := true

	for _, part := range parts {
		var encodedValue string

		switch value := part.(type) {
		case starlark.String:
			encodedValue = value.GoString()
		case StarlarkPath:
			encodedValue = string(value)

			if filepath.IsAbs(encodedValue) {
				// absolute paths cause issues on Windows
				relValue, err := filepath.Rel(base, encodedValue)
				if err == nil {
					encodedValue = relValue
				}
			}

			encodedValue = filepath.ToSlash(encodedValue)
		default:
			return "", eris.Errorf("found argument of type %s but only strings and paths are supported: %s", part.Type(), part.String())
		}

		if inAssigns {
			if pos := strings.Index(encodedValue, "="); pos > 0 && syntax.ValidName(encodedValue[:pos]) {
				cmd.Assigns = append(cmd.Assigns, &syntax.Assign{
					Name:  &syntax.Lit{Value: encodedValue[:pos]},
					Value: quoteWord(encodedValue[pos+1:]),
				})
				continue
			}
			inAssigns = false
		}

		cmd.Args = append(cmd.Args, quoteWord(encodedValue))
	}

	if len(cmd.Args) == 0 {
		return "", eris.New("command has no arguments")
	}

	buffer := strings.Builder{}
	if err := printer.Print(&buffer, cmd); err != nil {
		return "", err
	}

	return buffer.String(), nil
}

func quoteWord(value string) *syntax.Word {
	var wordPart syntax.WordPart

	if value == "" || strings.ContainsAny(value, " \t$'\"*?[]&|;<>()`\\#~") {
		wordPart = &syntax.SglQuoted{Value: strings.ReplaceAll(value, "'", `'"'"'`)}
	} else {
		wordPart = &syntax.Lit{Value: value}
	}

	return &syntax.Word{Parts: []syntax.WordPart{wordPart}}
}

func option(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var defaultValue starlark.String
	var help string

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "default?", &defaultValue, "help?", &help)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if !ctx.initPhase {
		return nil, eris.New("can only be called during the init phase (in the global scope)")
	}

	ctx.options[name] = ScriptOption{
		DefaultValue: defaultValue,
		Help:         help,
	}

	value, ok := ctx.optionValues[name]
	if ok {
		return starlark.String(value), nil
	}

	return defaultValue, nil
}

func task(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var deps *starlark.List
	var skipIfExists *starlark.List
	var inputs *starlark.List
	var outputs *starlark.List
	var clean *starlark.List
	var env *starlark.Dict
	var cmds *starlark.List

	task := new(Task)
	ctx := getCtx(thread)

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "short??", &task.Short, "hidden?", &task.Hidden,
		"desc?", &task.Desc, "deps?", &deps, "base?", &task.Base, "skip_if_exists?", &skipIfExists, "inputs?",
		&inputs, "outputs?", &outputs, "clean?", &clean, "env?", &env, "cmds?", &cmds)
	if err != nil {
		return nil, err
	}

	anonymous := task.Short == ""
	if anonymous {
		task.Hidden = true
		task.Short = "auto#" + nanoid.New()
	}

	if task.Short == "configure" {
		return nil, eris.Wrap(ErrReservedName, `the task name "configure" is reserved, please use a different name`)
	}

	task.Env = map[string]string{}

	if task.Base == "" {
		task.Base = "."
	}
	task.Base = normalizePath(ctx, task.Base)

	task.Deps, err = starlarkIterable2stringSlice(deps, "deps")
	if err != nil {
		return nil, err
	}

	task.SkipIfExists, err = starlarkIterable2stringSlice(skipIfExists, "skip_if_exists")
	if err != nil {
		return nil, err
	}

	task.Inputs, err = starlarkIterable2stringSlice(inputs, "inputs")
	if err != nil {
		return nil, err
	}

	task.Outputs, err = starlarkIterable2stringSlice(outputs, "outputs")
	if err != nil {
		return nil, err
	}

	task.Clean, err = starlarkIterable2stringSlice(clean, "clean")
	if err != nil {
		return nil, err
	}

	if env != nil {
		for _, rawKey := range env.Keys() {
			key, ok := rawKey.(starlark.String)
			if !ok {
				return nil, eris.Errorf("found key type %s in env map but only strings are supported", rawKey.Type())
			}

			rawValue, _, err := env.Get(rawKey)
			if err != nil {
				return nil, err
			}

			value, ok := rawValue.(starlark.String)
			if !ok {
				return nil, eris.Errorf("found value of type %s for key %s but only strings are supported", rawValue.Type(), key.GoString())
			}
			task.Env[key.GoString()] = value.GoString()
		}
	}

	task.Cmds = make([]TaskCmd, 0)
	if cmds != nil {
		iter := cmds.Iterate()
		defer iter.Done()

		var item starlark.Value
		idx := 0
		for iter.Next(&item) {
			var parts []starlark.Value

			switch value := item.(type) {
			case starlark.String:
				task.Cmds = append(task.Cmds, TaskCmdScript{TaskName: task.Short, Content: value.GoString(), Index: idx})
			case starlark.Tuple:
				parts = value
			case *starlark.List:
				parts = make([]starlark.Value, 0, value.Len())
				for i := 0; i < value.Len(); i++ {
					parts = append(parts, value.Index(i))
				}
			case *Task:
				task.Cmds = append(task.Cmds, TaskCmdTaskRef{Task: value})
			default:
				return nil, eris.Errorf("%s: unexpected type %s. Only strings, tuples, lists and tasks are valid", fn.Name(), item.Type())
			}

			if parts != nil {
				content, err := quoteCmdParts(parts, task.Base)
				if err != nil {
					return nil, eris.Wrapf(err, "failed to process command #%d", idx)
				}

				task.Cmds = append(task.Cmds, TaskCmdScript{TaskName: task.Short, Content: content, Index: idx})
			}

			idx++
		}
	}

	if len(task.Inputs) > 0 && len(task.Outputs) == 0 {
		warn(thread, "%s: found inputs but no outputs", task.Short)
	}

	if !anonymous {
		ctx.tasks = append(ctx.tasks, task)
	}
	return task, nil
}

// RunScript executes a Starlark task script. The script declares options in its global
// scope and tasks in its configure() function.
func RunScript(ctx context.Context, filename, projectRoot string, options map[string]string) (*ScriptResult, error) {
	projectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}

	filename, err = filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	builtins := starlark.StringDict{
		"OS":           starlark.String(runtime.GOOS),
		"ARCH":         starlark.String(runtime.GOARCH),
		"info":         starlark.NewBuiltin("info", starInfo),
		"warn":         starlark.NewBuiltin("warn", starWarn),
		"error":        starlark.NewBuiltin("error", starError),
		"resolve_path": starlark.NewBuiltin("resolve_path", resolvePath),
		"option":       starlark.NewBuiltin("option", option),
		"getenv":       starlark.NewBuiltin("getenv", getenv),
		"setenv":       starlark.NewBuiltin("setenv", setenv),
		"prepend_path": starlark.NewBuiltin("prepend_path", prependPathDir),
		"read_yaml":    starlark.NewBuiltin("read_yaml", readYaml),
		"isdir":        starlark.NewBuiltin("isdir", starIsdir),
		"isfile":       starlark.NewBuiltin("isfile", starIsfile),
		"min_version":  starlark.NewBuiltin("min_version", starMinVersion),
		"defaults":     starlark.NewBuiltin("defaults", starDefaults),
		"task":         starlark.NewBuiltin("task", task),
	}

	thread := &starlark.Thread{
		Name: "main",
		Print: func(thread *starlark.Thread, msg string) {
			log(ctx).Info().Str("thread", thread.Name).Msg(msg)
		},
	}
	threadCtx := parserCtx{
		ctx:          ctx,
		filepath:     filename,
		projectRoot:  projectRoot,
		options:      make(map[string]ScriptOption),
		optionValues: options,
		envOverrides: make(map[string]string),
		tasks:        make([]*Task, 0),
		yamlCache:    make(map[string]interface{}),
		initPhase:    true,
		useDefaults:  true,
	}
	if threadCtx.optionValues == nil {
		threadCtx.optionValues = map[string]string{}
	}
	thread.SetLocal("parserCtx", &threadCtx)

	script, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read file")
	}

	displayName := simplifyPath(&threadCtx, filename)
	globals, err := starlark.ExecFile(thread, displayName, script, builtins)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.Errorf("failed to execute %s:\n%s", displayName, evalError.Backtrace())
		}
		return nil, eris.Wrapf(err, "failed to execute %s", displayName)
	}

	configure, ok := globals["configure"]
	if !ok {
		return nil, eris.Errorf("%s did not declare a configure function", displayName)
	}

	configureFunc, ok := configure.(starlark.Callable)
	if !ok {
		return nil, eris.Errorf("%s did declare a configure value but it's not a function", displayName)
	}

	threadCtx.initPhase = false
	_, err = starlark.Call(thread, configureFunc, starlark.Tuple{}, nil)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.New(evalError.Backtrace())
		}
		return nil, eris.Wrapf(err, "failed configure call in %s", displayName)
	}

	tasks := TaskList{}
	for _, task := range threadCtx.tasks {
		if _, dup := tasks[task.Short]; dup {
			return nil, eris.Errorf("%s declared task %s twice", displayName, task.Short)
		}
		tasks[task.Short] = task
	}

	// env overrides also apply to anonymous tasks referenced as commands
	applyEnv := func(task *Task) {
		for name, value := range threadCtx.envOverrides {
			if _, present := task.Env[name]; !present {
				task.Env[name] = value
			}
		}
	}
	for _, task := range tasks {
		applyEnv(task)
		for _, cmd := range task.Cmds {
			if ref, ok := cmd.(TaskCmdTaskRef); ok && ref.Task != nil {
				applyEnv(ref.Task)
			}
		}
	}

	return &ScriptResult{
		Tasks:       tasks,
		Options:     threadCtx.options,
		UseDefaults: threadCtx.useDefaults,
	}, nil
}
