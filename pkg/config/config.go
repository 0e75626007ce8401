package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	// Shop time zones must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Shop      ShopConfig      `yaml:"shop"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Printing  PrintingConfig  `yaml:"printing"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
	Output string `yaml:"output"` // "stdout", "stderr" or a file path
}

// ShopConfig describes the shop printed on receipts and the time zone its
// reports are bucketed in.
type ShopConfig struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Phone    string `yaml:"phone"`
	Currency string `yaml:"currency"`
	Timezone string `yaml:"timezone"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SweepRentals string `yaml:"sweep_rentals"`
}

// PrintingConfig configures PDF rendering. An empty RemoteURL starts a
// local headless Chrome.
type PrintingConfig struct {
	RemoteURL      string `yaml:"remote_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AuthConfig contains session token settings and the account created on
// first start.
type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
	AdminUsername   string `yaml:"admin_username"`
	AdminPassword   string `yaml:"admin_password"`
}

// Default returns a configuration usable without a file.
func Default() *Config {
	cfg := &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "gestiondestock.db"},
	}
	cfg.overrideWithEnv()
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. A missing file falls back to
// Default, so environment variables alone can configure the server.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("no config file at %s: invalid configuration: %w", configPath, err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("SHOP_TIMEZONE"); val != "" {
		c.Shop.Timezone = val
	}
	if val := os.Getenv("CHROME_URL"); val != "" {
		c.Printing.RemoteURL = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.Auth.JWTSecret = val
	}
	if val := os.Getenv("ADMIN_USERNAME"); val != "" {
		c.Auth.AdminUsername = val
	}
	if val := os.Getenv("ADMIN_PASSWORD"); val != "" {
		c.Auth.AdminPassword = val
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Shop.Timezone == "" {
		c.Shop.Timezone = "UTC"
	}
	if c.Shop.Currency == "" {
		c.Shop.Currency = "DA"
	}
	if c.Scheduler.SweepRentals == "" {
		c.Scheduler.SweepRentals = "0 0 2 * * *" // 2 AM shop time
	}
	if c.Printing.TimeoutSeconds == 0 {
		c.Printing.TimeoutSeconds = 30
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = 12 * 60 // one shop day
	}
	if c.Auth.AdminUsername == "" {
		c.Auth.AdminUsername = "admin"
	}
}

// Validate checks the configuration and fills in defaults for optional
// settings.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	c.applyDefaults()

	if _, err := time.LoadLocation(c.Shop.Timezone); err != nil {
		return fmt.Errorf("invalid shop timezone %q: %w", c.Shop.Timezone, err)
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.Printing.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid printing timeout: %d", c.Printing.TimeoutSeconds)
	}
	return nil
}

// Location returns the shop's time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Shop.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) PrintTimeout() time.Duration {
	return time.Duration(c.Printing.TimeoutSeconds) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}
