package taskrun

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	white = iota
	gray
	black
)

// edges lists the tasks that have to run before or as part of task, in execution order.
func edges(tasks TaskList, task *Task) []string {
	result := append([]string(nil), task.Deps...)
	for _, cmd := range task.Cmds {
		ref, ok := cmd.(TaskCmdTaskRef)
		if !ok || ref.Task == nil {
			continue
		}

		if _, known := tasks[ref.Task.Short]; known {
			result = append(result, ref.Task.Short)
		}
	}

	return result
}

// Validate checks that every dependency exists and that the dependency graph is acyclic.
// Tasks are visited in sorted order so the reported cycle is stable.
func Validate(tasks TaskList) error {
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, dep := range tasks[name].Deps {
			if _, ok := tasks[dep]; !ok {
				return eris.Wrapf(ErrTaskNotFound, "task %s depends on unknown task %s", name, dep)
			}
		}
	}

	_, err := walk(tasks, names)
	return err
}

// Plan returns the order in which the given tasks and their dependencies run. Every
// task appears once, after all of its dependencies.
func Plan(tasks TaskList, targets []string) ([]string, error) {
	for _, name := range targets {
		if _, ok := tasks[name]; !ok {
			return nil, eris.Wrapf(ErrTaskNotFound, "task %s", name)
		}
	}

	return walk(tasks, targets)
}

func walk(tasks TaskList, roots []string) ([]string, error) {
	color := make(map[string]int, len(tasks))
	order := make([]string, 0, len(tasks))
	stack := make([]string, 0)

	var visit func(name string) error
	visit = func(name string) error {
		color[name] = gray
		stack = append(stack, name)

		for _, dep := range edges(tasks, tasks[name]) {
			switch color[dep] {
			case gray:
				start := 0
				for idx, item := range stack {
					if item == dep {
						start = idx
						break
					}
				}

				cycle := append(append([]string(nil), stack[start:]...), dep)
				return eris.Wrapf(ErrCycle, "%s", strings.Join(cycle, " -> "))
			case white:
				if _, ok := tasks[dep]; !ok {
					return eris.Wrapf(ErrTaskNotFound, "task %s depends on unknown task %s", name, dep)
				}

				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
		order = append(order, name)
		return nil
	}

	for _, name := range roots {
		if color[name] == white {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}
