package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings for the web application.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// DatabaseConfig points at the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// SessionConfig controls the login session cookie and its storage.
type SessionConfig struct {
	// Expiration is how long an idle session stays valid.
	Expiration time.Duration `mapstructure:"expiration" yaml:"expiration"`

	CookieSecure bool `mapstructure:"cookie_secure" yaml:"cookie_secure"`

	// CookieKey is a base64 encoded 32-byte key for cookie encryption.
	// When empty the key is loaded from (or generated into) the OS keyring.
	CookieKey string `mapstructure:"cookie_key" yaml:"cookie_key"`

	// RedisHost enables Redis-backed session storage when set.
	RedisHost string `mapstructure:"redis_host" yaml:"redis_host"`
	RedisPort int    `mapstructure:"redis_port" yaml:"redis_port"`
}

// AuthConfig holds password hashing settings.
type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// ChecklistConfig holds settings for the terminal checklist tool.
type ChecklistConfig struct {
	DataFile string `mapstructure:"data_file" yaml:"data_file"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Checklist ChecklistConfig `mapstructure:"checklist" yaml:"checklist"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/callsheet/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "callsheet", "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Addr:         ":3000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "callsheet.db",
		},
		Session: SessionConfig{
			Expiration: 24 * time.Hour,
			RedisPort:  6379,
		},
		Auth: AuthConfig{
			BcryptCost: 12,
		},
		Checklist: ChecklistConfig{
			DataFile: "checklists.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("session.expiration", d.Session.Expiration)
	v.SetDefault("session.cookie_secure", d.Session.CookieSecure)
	v.SetDefault("session.cookie_key", d.Session.CookieKey)
	v.SetDefault("session.redis_host", d.Session.RedisHost)
	v.SetDefault("session.redis_port", d.Session.RedisPort)
	v.SetDefault("auth.bcrypt_cost", d.Auth.BcryptCost)
	v.SetDefault("checklist.data_file", d.Checklist.DataFile)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with CALLSHEET_ override file values
// (for example CALLSHEET_SERVER_ADDR). If the file does not exist, defaults
// plus environment overrides are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("callsheet")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Auth.BcryptCost <= 0 {
		cfg.Auth.BcryptCost = DefaultAppConfig().Auth.BcryptCost
	}
	if cfg.Session.Expiration <= 0 {
		cfg.Session.Expiration = DefaultAppConfig().Session.Expiration
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("database", cfg.Database)
	v.Set("session", cfg.Session)
	v.Set("auth", cfg.Auth)
	v.Set("checklist", cfg.Checklist)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
