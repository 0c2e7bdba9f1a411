package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Sessions SessionsConfig `yaml:"sessions"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	HTTPPort   int    `yaml:"http_port"`
	StaticDir  string `yaml:"static_dir"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	// Backend is one of "memory", "file" or "redis"
	Backend string      `yaml:"backend"`
	File    FileConfig  `yaml:"file"`
	Redis   RedisConfig `yaml:"redis"`
}

// FileConfig holds settings for the file-per-user backend
type FileConfig struct {
	Dir string `yaml:"dir"`
}

// RedisConfig holds settings for the redis backend
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
}

// SessionsConfig holds session token settings
type SessionsConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "0.0.0.0"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 3000
	}
	// StaticDir has no default; empty means don't serve static files

	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.File.Dir == "" {
		c.Storage.File.Dir = "user_data"
	}
	if c.Storage.Redis.URL == "" {
		c.Storage.Redis.URL = "redis://localhost:6379"
	}

	if c.Sessions.TTL == 0 {
		c.Sessions.TTL = 24 * time.Hour
	}
	if c.Sessions.SweepInterval == 0 {
		c.Sessions.SweepInterval = time.Hour
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
