package console

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)
	t.Cleanup(func() { SetOutput(os.Stderr, false) })

	PrintTask("watching 3 directories")
	PrintSubtask("src/main.py")
	PrintError("lint failed")

	assert.Equal(t, "==> watching 3 directories\n  -> src/main.py\n  -> lint failed\n", buf.String())
}

func TestColoredOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	t.Cleanup(func() { SetOutput(os.Stderr, false) })

	PrintTask("running")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "==>")
}
