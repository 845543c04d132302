package taskrun

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/syntax"
)

// TaskCmd is a single step of a task. It either expands to shell statements or
// references another task.
type TaskCmd interface {
	ToTask() (*Task, error)
	ToShellStmts(*syntax.Parser) ([]*syntax.Stmt, error)
}

type TaskCmdScript struct {
	TaskName string
	Content  string
	Index    int
}

func (s TaskCmdScript) ToTask() (*Task, error) {
	return nil, nil
}

func (s TaskCmdScript) ToShellStmts(parser *syntax.Parser) ([]*syntax.Stmt, error) {
	reader := strings.NewReader(s.Content)
	result, err := parser.Parse(reader, fmt.Sprintf("%s:%d", s.TaskName, s.Index))
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse command %s", s.Content)
	}

	return result.Stmts, nil
}

type TaskCmdTaskRef struct {
	Task *Task
}

func (t TaskCmdTaskRef) ToTask() (*Task, error) {
	return t.Task, nil
}

func (t TaskCmdTaskRef) ToShellStmts(*syntax.Parser) ([]*syntax.Stmt, error) {
	return nil, nil
}

// TaskCmdUsage prints the usage summary for the loaded task list.
type TaskCmdUsage struct {
	Program string
}

func (u TaskCmdUsage) ToTask() (*Task, error) {
	return nil, nil
}

func (u TaskCmdUsage) ToShellStmts(*syntax.Parser) ([]*syntax.Stmt, error) {
	return nil, nil
}

// Task contains everything needed to run one named task
type Task struct {
	Env          map[string]string
	Short        string
	Desc         string
	Base         string
	Inputs       []string
	Deps         []string
	SkipIfExists []string
	Outputs      []string
	Clean        []string
	Cmds         []TaskCmd
	Hidden       bool
}

// TaskList maps short names to each relevant task
type TaskList map[string]*Task

// Names returns the names of all visible tasks in sorted order.
func (l TaskList) Names() []string {
	names := make([]string, 0, len(l))
	for name, task := range l {
		if !task.Hidden {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names
}

// Merge adds every task from other whose name is not yet present in l.
func (l TaskList) Merge(other TaskList) {
	for name, task := range other {
		if _, present := l[name]; !present {
			l[name] = task
		}
	}
}
