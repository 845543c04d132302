package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() {
		Version, Commit, Date = oldVersion, oldCommit, oldDate
	})

	Version, Commit = "dev", "abc123"
	assert.Equal(t, "devtask development version (commit abc123)", String("devtask"))

	Version, Date = "1.2.0", "2026-10-01"
	assert.Equal(t, "devtask 1.2.0 (commit abc123, built 2026-10-01)", String("devtask"))
}
