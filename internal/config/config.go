// Package config loads application settings from defaults, an optional YAML
// file and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full application configuration.
type Config struct {
	Store     StoreConfig  `mapstructure:"store"`
	Server    ServerConfig `mapstructure:"server"`
	StatePath string       `mapstructure:"state_path"`
}

// StoreConfig selects and locates the task store.
type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	DatabaseURL string `mapstructure:"database_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// Dir returns the per-user directory holding the database, state and config.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".todo"
	}
	return filepath.Join(home, ".todo")
}

// DefaultPath returns the path of the default config file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", filepath.Join(Dir(), "todo.db"))
	v.SetDefault("server.port", "8080")
	v.SetDefault("state_path", filepath.Join(Dir(), "state.yaml"))
}

// Load reads configuration. path may be empty, in which case the default
// config file is used if it exists. Environment variables prefixed TODO_
// (e.g. TODO_STORE_DRIVER) override file values; DATABASE_URL and PORT are
// honoured as well. Without an explicit driver, a database URL selects
// postgres and anything else sqlite.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("todo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("store.driver", "TODO_STORE_DRIVER")
	_ = v.BindEnv("store.database_url", "TODO_STORE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("server.port", "TODO_SERVER_PORT", "PORT")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil || explicit {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverSQLite
		if cfg.Store.DatabaseURL != "" {
			cfg.Store.Driver = DriverPostgres
		}
	}
	return cfg, nil
}
