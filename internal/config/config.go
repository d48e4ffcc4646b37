// Package config loads lostfound settings from defaults, an optional config
// file, LOSTFOUND_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/erazemk/lostfound/internal/logging"
	"github.com/erazemk/lostfound/internal/query"
)

// EnvPrefix is prepended to every environment variable, so db.dsn is read
// from LOSTFOUND_DB_DSN.
const EnvPrefix = "LOSTFOUND"

type DB struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTP struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type Admin struct {
	Username string `mapstructure:"username"`
}

type JWT struct {
	// Secret signs operator tokens. Empty means use the one stored in the
	// database, generating it on first start.
	Secret string `mapstructure:"secret"`
}

// Config is the full runtime configuration.
type Config struct {
	DB    DB    `mapstructure:"db"`
	HTTP  HTTP  `mapstructure:"http"`
	Log   Log   `mapstructure:"log"`
	Admin Admin `mapstructure:"admin"`
	JWT   JWT   `mapstructure:"jwt"`
}

// Logging returns the logger options for this configuration.
func (c Config) Logging() logging.Options {
	return logging.Options{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File}
}

var defaults = map[string]any{
	"db.driver":            "sqlite",
	"db.dsn":               "lostfound.sqlite3",
	"http.addr":            ":8080",
	"http.request_timeout": 30 * time.Second,
	"log.level":            "info",
	"log.format":           "text",
	"log.file":             "",
	"admin.username":       "admin",
	"jwt.secret":           "",
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"driver":     "db.driver",
	"dsn":        "db.dsn",
	"addr":       "http.addr",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log":        "log.file",
	"user":       "admin.username",
}

// Load builds a Config. path names an optional config file (any format
// viper reads); an empty path skips it. flags may be nil; only flags the user
// actually set override file and environment values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if _, err := query.DialectFor(c.DB.Driver); err != nil {
		errs = append(errs, fmt.Errorf("db.driver: %w", err))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn must be set"))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr must be set"))
	}
	if c.HTTP.RequestTimeout < 0 {
		errs = append(errs, errors.New("http.request_timeout must not be negative"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if strings.TrimSpace(c.Admin.Username) == "" {
		errs = append(errs, errors.New("admin.username must be set"))
	}
	return errors.Join(errs...)
}
