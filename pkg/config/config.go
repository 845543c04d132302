package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// FileName is the optional settings file looked up in the project directory.
const FileName = "devtask.toml"

// Config describes all configuration options
type Config struct {
	TaskFile string `usage:"Task file to load instead of searching for one, relative to the project directory"`
	Debug    bool   `default:"false" usage:"Include stack traces in error messages"`
	Log      struct {
		Level string `default:"info"`
		JSON  bool   `default:"false" usage:"Output JSONND instead of pretty console messages"`
	}
	Shell struct {
		KillTimeout time.Duration `default:"2s" usage:"Time between SIGINT and SIGKILL for cancelled commands"`
	}
	Watch struct {
		Debounce time.Duration `default:"300ms" usage:"Quiet period before a change triggers a rerun"`
	}
	Cache struct {
		Dir string `default:".devtask" usage:"Directory for the evaluated task file cache, relative to the task file"`
	}
}

var logLevels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object.
// Values come from the defaults, then devtask.toml in dir (if present), then DEVTASK_*
// environment variables. Command line flags are handled by the caller.
func Loader(dir string) (*Config, *aconfig.Loader) {
	files := []string{}
	settings := filepath.Join(dir, FileName)
	if _, err := os.Stat(settings); err == nil {
		files = append(files, settings)
	}

	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "DEVTASK",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load reads the configuration for dir and validates it.
func Load(dir string) (*Config, error) {
	cfg, loader := Loader(dir)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	_, ok := logLevels[cfg.Log.Level]
	if !ok {
		return eris.Errorf(`Invalid value for log.level: %s`, cfg.Log.Level)
	}

	if cfg.Shell.KillTimeout <= 0 {
		return eris.Errorf(`Invalid value for shell.killtimeout: %s (must be positive)`, cfg.Shell.KillTimeout)
	}

	if cfg.Watch.Debounce <= 0 {
		return eris.Errorf(`Invalid value for watch.debounce: %s (must be positive)`, cfg.Watch.Debounce)
	}

	return nil
}

// SetLogLevel overrides the configured level after validating it.
func (cfg *Config) SetLogLevel(level string) error {
	if _, ok := logLevels[level]; !ok {
		return eris.Errorf(`Invalid log level: %s`, level)
	}
	cfg.Log.Level = level
	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}
