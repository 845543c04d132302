package taskrun

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

type yamlTask struct {
	Desc         string            `yaml:"desc"`
	Deps         []string          `yaml:"deps"`
	Cmds         []string          `yaml:"cmds"`
	Clean        []string          `yaml:"clean"`
	Inputs       []string          `yaml:"inputs"`
	Outputs      []string          `yaml:"outputs"`
	SkipIfExists []string          `yaml:"skip_if_exists"`
	Env          map[string]string `yaml:"env"`
	Dir          string            `yaml:"dir"`
	Hidden       bool              `yaml:"hidden"`
}

type yamlTaskFile struct {
	MinVersion string              `yaml:"min_version"`
	Defaults   *bool               `yaml:"defaults"`
	Env        map[string]string   `yaml:"env"`
	Tasks      map[string]yamlTask `yaml:"tasks"`
}

// LoadYAML parses a devtask.yml file. options are exported to every task's environment.
func LoadYAML(path string, options map[string]string) (TaskList, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}

	var doc yamlTaskFile
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && err != io.EOF {
		return nil, eris.Wrapf(err, "failed to parse %s", path)
	}

	if err := CheckMinVersion(doc.MinVersion); err != nil {
		return nil, err
	}

	projectRoot := filepath.Dir(absPath)
	tasks := make(TaskList, len(doc.Tasks))
	for name, def := range doc.Tasks {
		if name == "" {
			return nil, eris.Errorf("%s: task without a name", path)
		}

		task := &Task{
			Short:        name,
			Desc:         def.Desc,
			Base:         projectRoot,
			Deps:         def.Deps,
			Clean:        def.Clean,
			Inputs:       def.Inputs,
			Outputs:      def.Outputs,
			SkipIfExists: def.SkipIfExists,
			Hidden:       def.Hidden,
			Env:          map[string]string{},
			Cmds:         make([]TaskCmd, 0, len(def.Cmds)),
		}

		if def.Dir != "" {
			if filepath.IsAbs(def.Dir) {
				task.Base = filepath.Clean(def.Dir)
			} else {
				task.Base = filepath.Join(projectRoot, def.Dir)
			}
		}

		for idx, content := range def.Cmds {
			task.Cmds = append(task.Cmds, TaskCmdScript{TaskName: name, Content: content, Index: idx})
		}

		for k, v := range def.Env {
			task.Env[k] = v
		}

		tasks[name] = task
	}

	if doc.Defaults == nil || *doc.Defaults {
		tasks.Merge(Defaults(projectRoot))
	}

	for _, task := range tasks {
		for k, v := range doc.Env {
			if _, present := task.Env[k]; !present {
				task.Env[k] = v
			}
		}
		for k, v := range options {
			task.Env[k] = v
		}
	}

	return tasks, nil
}
