package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.TaskFile)
	assert.Equal(t, 2*time.Second, cfg.Shell.KillTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, ".devtask", cfg.Cache.Dir)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel())
}

func TestSettingsFile(t *testing.T) {
	dir := t.TempDir()
	content := "[log]\nlevel = \"debug\"\njson = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("[log]\nlevel = \"debug\"\n"), 0o644))
	t.Setenv("DEVTASK_LOG_LEVEL", "warn")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel())
}

func TestInvalidLevel(t *testing.T) {
	t.Setenv("DEVTASK_LOG_LEVEL", "loud")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestSetLogLevel(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.SetLogLevel("error"))
	assert.Equal(t, zerolog.ErrorLevel, cfg.LogLevel())

	require.Error(t, cfg.SetLogLevel("chatty"))
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestValidateDebounce(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Watch.Debounce = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateKillTimeout(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Shell.KillTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg.Shell.KillTimeout = -time.Second
	assert.Error(t, cfg.Validate())

	cfg.Shell.KillTimeout = 500 * time.Millisecond
	assert.NoError(t, cfg.Validate())
}
