// Package config provides configuration loading for the petcare CLI and gateway.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. PETCARE_STORAGE_DRIVER.
const EnvPrefix = "PETCARE"

// Config holds the application configuration.
type Config struct {
	// Endpoint is the gateway URL used by the CLI
	Endpoint string `mapstructure:"endpoint"`

	Auth AuthConfig `mapstructure:"auth"`

	// Server configuration (for gateway)
	Server ServerConfig `mapstructure:"server"`

	Storage StorageConfig `mapstructure:"storage"`

	Reminders RemindersConfig `mapstructure:"reminders"`

	// Timezone names the IANA location used for day boundaries. Empty means local.
	Timezone string `mapstructure:"timezone"`

	Logging LoggingConfig `mapstructure:"logging"`

	Sentry SentryConfig `mapstructure:"sentry"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// Token is the bearer token the CLI sends.
	Token string `mapstructure:"token"`

	// Users are the gateway's static token grants.
	Users []UserConfig `mapstructure:"users"`
}

// UserConfig maps one static token to a household member.
type UserConfig struct {
	Name  string   `mapstructure:"name"`
	Token string   `mapstructure:"token"`
	Roles []string `mapstructure:"roles"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`

	// RateLimit is the sustained requests per second per client. Zero disables limiting.
	RateLimit float64 `mapstructure:"rateLimit"`
	RateBurst int     `mapstructure:"rateBurst"`
}

// StorageConfig selects and tunes the repository backend.
type StorageConfig struct {
	// Driver is one of memory, postgres, sqlite or duckdb.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`

	// Latency is the artificial delay added by the memory backend.
	Latency time.Duration `mapstructure:"latency"`

	// Seed loads the demo household into an empty store.
	Seed bool `mapstructure:"seed"`

	// SeedFile replaces the built-in demo household.
	SeedFile string `mapstructure:"seedFile"`

	// WatchSeed reloads SeedFile into the memory backend when it changes.
	WatchSeed bool `mapstructure:"watchSeed"`
}

// RemindersConfig holds reminder behaviour.
type RemindersConfig struct {
	Snooze time.Duration `mapstructure:"snooze"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks values viper cannot check on its own.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres", "sqlite", "duckdb":
	default:
		return fmt.Errorf("storage.driver must be memory, postgres, sqlite or duckdb, got %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
	}
	if c.Storage.WatchSeed && (c.Storage.Driver != "memory" || c.Storage.SeedFile == "") {
		return fmt.Errorf("storage.watchSeed needs the memory driver and storage.seedFile")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rateLimit cannot be negative")
	}
	if c.Reminders.Snooze <= 0 {
		return fmt.Errorf("reminders.snooze must be positive")
	}
	for i, u := range c.Auth.Users {
		if u.Name == "" || u.Token == "" {
			return fmt.Errorf("auth.users[%d] needs a name and a token", i)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: "http://localhost:8080",
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit:    20,
			RateBurst:    40,
		},
		Storage: StorageConfig{
			Driver:  "memory",
			Latency: 300 * time.Millisecond,
			Seed:    true,
		},
		Reminders: RemindersConfig{
			Snooze: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Sentry: SentryConfig{
			Environment: "development",
		},
	}
}

// Load loads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".petcare"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("auth.token", "")
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.readTimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writeTimeout", d.Server.WriteTimeout)
	v.SetDefault("server.rateLimit", d.Server.RateLimit)
	v.SetDefault("server.rateBurst", d.Server.RateBurst)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.latency", d.Storage.Latency)
	v.SetDefault("storage.seed", d.Storage.Seed)
	v.SetDefault("storage.seedFile", "")
	v.SetDefault("storage.watchSeed", false)
	v.SetDefault("reminders.snooze", d.Reminders.Snooze)
	v.SetDefault("timezone", "")
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", d.Sentry.Environment)
}
