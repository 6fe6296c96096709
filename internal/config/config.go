// Package config resolves go-tally settings from defaults, config file,
// environment and flags.
package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/data/storage"
	"github.com/penwyp/go-tally/internal/data/watcher"
	"github.com/penwyp/go-tally/internal/util"
	"github.com/spf13/viper"
)

// Config file lookup and environment binding
const (
	FileName  = ".go-tally"
	EnvPrefix = "TALLY"
)

// Defaults
const (
	DefaultBackend   = storage.BackendFile
	DefaultDataDir   = "~/.go-tally/data"
	DefaultExportDir = "."
	DefaultLogFile   = "~/.go-tally/logs/app.log"
	DefaultLogLevel  = "info"
)

var logLevels = []interface{}{"debug", "info", "warn", "error"}

// Config is the resolved configuration shared by all commands.
type Config struct {
	Backend       string        `mapstructure:"backend"`
	DataDir       string        `mapstructure:"data-dir"`
	DSN           string        `mapstructure:"dsn"`
	ExportDir     string        `mapstructure:"export-dir"`
	AlertDuration time.Duration `mapstructure:"alert-duration"`
	PollInterval  time.Duration `mapstructure:"poll-interval"`
	Debug         bool          `mapstructure:"debug"`
	LogFile       string        `mapstructure:"log-file"`
	LogLevel      string        `mapstructure:"log-level"`
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("data-dir", DefaultDataDir)
	v.SetDefault("dsn", "")
	v.SetDefault("export-dir", DefaultExportDir)
	v.SetDefault("alert-duration", model.AlertDuration)
	v.SetDefault("poll-interval", watcher.DefaultPollInterval)
	v.SetDefault("debug", false)
	v.SetDefault("log-file", DefaultLogFile)
	v.SetDefault("log-level", DefaultLogLevel)
}

// BindEnv makes TALLY_* variables override file values.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// ReadFile loads path, or .go-tally.yaml from the working or home
// directory. A missing file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// Load unmarshals v, expands paths and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	for _, p := range []*string{&cfg.DataDir, &cfg.ExportDir, &cfg.LogFile} {
		if *p != "" {
			*p = util.ExpandPath(*p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	backends := make([]interface{}, len(storage.Backends))
	for i, b := range storage.Backends {
		backends[i] = b
	}
	needsDir := c.Backend == storage.BackendFile || (c.Backend == storage.BackendSQLite && c.DSN == "")
	needsDSN := c.Backend == storage.BackendMySQL || c.Backend == storage.BackendPostgres

	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(backends...)),
		validation.Field(&c.DataDir, validation.Required.When(needsDir)),
		validation.Field(&c.DSN, validation.Required.When(needsDSN)),
		validation.Field(&c.ExportDir, validation.Required),
		validation.Field(&c.AlertDuration, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.PollInterval, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.LogLevel, validation.In(logLevels...)),
	)
}

// StorageOptions returns the settings storage.Open needs.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend: c.Backend,
		DataDir: c.DataDir,
		DSN:     c.DSN,
	}
}
