// Package buildinfo holds the version details stamped into the binary with
// -ldflags "-X github.com/mcmanager/devtask/pkg/buildinfo.Version=...".
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the version for the version subcommand.
func String(program string) string {
	if Version == "dev" {
		return fmt.Sprintf("%s development version (commit %s)", program, Commit)
	}
	return fmt.Sprintf("%s %s (commit %s, built %s)", program, Version, Commit, Date)
}
