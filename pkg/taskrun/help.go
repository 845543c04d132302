package taskrun

import (
	"fmt"
	"strings"
)

// Usage renders the usage summary for tasks. The output only depends on the task
// names and descriptions.
func Usage(program string, tasks TaskList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s [flags] [task...] [KEY=VALUE...]\n\n", program)
	b.WriteString("Available tasks:\n")

	names := tasks.Names()
	maxNameLen := 0
	for _, name := range names {
		if len(name) > maxNameLen {
			maxNameLen = len(name)
		}
	}

	lineFmt := fmt.Sprintf(" * %%-%ds %%s\n", maxNameLen+1)
	for _, name := range names {
		fmt.Fprintf(&b, lineFmt, name+":", tasks[name].Desc)
	}

	return b.String()
}
