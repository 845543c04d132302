package taskrun

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
	"gopkg.in/yaml.v3"
)

func resolvePath(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	base := ""
	ctx := getCtx(thread)

	for _, kv := range kwargs {
		key := kv[0].(starlark.String).GoString()
		if key != "base" {
			return nil, eris.Errorf("unexpected keyword argument %s", key)
		}

		switch value := kv[1].(type) {
		case starlark.String:
			base = value.GoString()
		case StarlarkPath:
			base = string(value)
		default:
			return nil, eris.Errorf("invalid type %s for keyword base, expected string or path", kv[1].Type())
		}

		base = normalizePath(ctx, base)
	}

	if len(args) < 1 {
		return nil, eris.New("expects at least one argument")
	}

	parts := make([]string, len(args))
	for idx, path := range args {
		switch value := path.(type) {
		case starlark.String:
			parts[idx] = value.GoString()
		case StarlarkPath:
			parts[idx] = string(value)
		default:
			return nil, eris.Errorf("only accepts string arguments but argument %d was a %s", idx, path.Type())
		}
	}

	normPath := normalizePath(ctx, parts...)
	if base != "" {
		var err error
		normPath, err = filepath.Rel(base, normPath)
		if err != nil {
			return nil, err
		}
	}

	return StarlarkPath(normPath), nil
}

func starInfo(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	info(thread, "%s", message)
	return starlark.None, nil
}

func starWarn(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	warn(thread, "%s", message)
	return starlark.None, nil
}

func starError(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	return nil, eris.New(message)
}

func getenv(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &key)
	if err != nil {
		return nil, err
	}

	value, ok := getCtx(thread).envOverrides[key]
	if !ok {
		value = os.Getenv(key)
	}

	return starlark.String(value), nil
}

func setenv(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string
	var value string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &key, &value)
	if err != nil {
		return nil, err
	}

	getCtx(thread).envOverrides[key] = value
	return starlark.True, nil
}

func prependPathDir(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pathDir string

	if len(args) != 1 {
		return nil, eris.Errorf("got %d arguments, want 1", len(args))
	}

	switch value := args[0].(type) {
	case starlark.String:
		pathDir = value.GoString()
	case StarlarkPath:
		pathDir = string(value)
	default:
		return nil, eris.Errorf("for parameter 1: got %s, want path or string", args[0].Type())
	}

	envOverrides := getCtx(thread).envOverrides
	path, ok := envOverrides["PATH"]
	if !ok {
		path = os.Getenv("PATH")
	}

	envOverrides["PATH"] = normalizePath(getCtx(thread), pathDir) + string(os.PathListSeparator) + path
	return starlark.String(envOverrides["PATH"]), nil
}

func readYaml(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var yamlFile string
	var yamlKey string
	var defaultValue starlark.Value = starlark.None

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &yamlFile, &yamlKey, &defaultValue)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	yamlFile = normalizePath(ctx, yamlFile)

	doc, loaded := ctx.yamlCache[yamlFile]
	if !loaded {
		content, err := os.ReadFile(yamlFile)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to open file %s", yamlFile)
		}

		err = yaml.Unmarshal(content, &doc)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to parse file %s", yamlFile)
		}
		ctx.yamlCache[yamlFile] = doc
	}

	node := doc
	for _, key := range strings.Split(yamlKey, ".") {
		switch value := node.(type) {
		case map[string]interface{}:
			node = value[key]
		case []interface{}:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(value) {
				node = nil
			} else {
				node = value[idx]
			}
		case nil:
		default:
			return nil, eris.Errorf("can't look up %s in a %T", key, node)
		}
	}

	switch value := node.(type) {
	case nil:
		return defaultValue, nil
	case string:
		return starlark.String(value), nil
	case int:
		return starlark.MakeInt(value), nil
	case bool:
		return starlark.Bool(value), nil
	case float64:
		return starlark.Float(value), nil
	default:
		return nil, eris.Errorf("can't return value %v", value)
	}
}

func starIsdir(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dirPath string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &dirPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(normalizePath(getCtx(thread), dirPath))
	return starlark.Bool(err == nil && info.IsDir()), nil
}

func starIsfile(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var filePath string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &filePath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(normalizePath(getCtx(thread), filePath))
	return starlark.Bool(err == nil && info.Mode().IsRegular()), nil
}

func starMinVersion(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var constraint string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &constraint)
	if err != nil {
		return nil, err
	}

	if err := CheckMinVersion(constraint); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func starDefaults(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var enabled bool

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &enabled)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if !ctx.initPhase {
		return nil, eris.New("can only be called during the init phase (in the global scope)")
	}

	ctx.useDefaults = enabled
	return starlark.None, nil
}
