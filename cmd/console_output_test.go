package cmd

import (
	"bytes"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleWriter(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.New(NewConsoleWriter(&out, true))

	logger.Info().Str("task", "lint").Bool("command", true).Msg("poetry run ruff check src scripts")
	logger.Warn().Msg("oldest output is [stale]")
	logger.Error().Str("task", "fix").Err(eris.New("boom")).Msg("failed")

	assert.Equal(t, "lint: $ poetry run ruff check src scripts\n"+
		"oldest output is [stale]\n"+
		"fix: Error: failed\nboom\n", out.String())
}

func TestConsoleWriterColors(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.New(NewConsoleWriter(&out, false))

	logger.Error().Msg("broken")
	assert.Contains(t, out.String(), "\x1b[31m")
	assert.Contains(t, out.String(), "Error: broken")
}

func TestConsoleWriterRejectsGarbage(t *testing.T) {
	_, err := NewConsoleWriter(&bytes.Buffer{}, true).Write([]byte("not json"))
	require.Error(t, err)
}
