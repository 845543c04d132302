// Package taskrun implements the devtask runtime. Tasks come from a devtask.yml or
// tasks.star file (or the built-in defaults for the project) and their commands run
// through the mvdan.cc/sh interpreter so they behave the same on every platform.
package taskrun
