// Package config loads server configuration from the environment, with
// an optional YAML file overriding the defaults. A .env file in the
// working directory is loaded first so both sources see it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level server configuration
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Gateway  GatewayConfig `yaml:"gateway"`
	LogLevel string        `yaml:"log_level"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GatewayConfig selects and configures the sync backend
type GatewayConfig struct {
	// Type is "memory", "redis" or "nats"
	Type  string      `yaml:"type"`
	Redis RedisConfig `yaml:"redis"`
	NATS  NATSConfig  `yaml:"nats"`
}

// RedisConfig holds redis backend settings
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	GameTTL      time.Duration `yaml:"game_ttl"`
}

// NATSConfig holds NATS backend settings
type NATSConfig struct {
	URL           string `yaml:"url"`
	MaxReconnects int    `yaml:"max_reconnects"`
}

// Load builds the configuration: .env first, then environment variables,
// then the YAML file named by path (or RUMMY_CONFIG) when one exists.
func Load(path string) (*Config, error) {
	// A missing .env file is the normal case outside development
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("RUMMY_HOST", ""),
			Port: getEnvAsInt("RUMMY_PORT", 8080),
		},
		Gateway: GatewayConfig{
			Type: getEnv("RUMMY_GATEWAY", "memory"),
			Redis: RedisConfig{
				URL: getEnv("REDIS_URL", ""),
			},
			NATS: NATSConfig{
				URL:           getEnv("NATS_URL", ""),
				MaxReconnects: -1,
			},
		},
		LogLevel: getEnv("RUMMY_LOG_LEVEL", "info"),
	}

	if path == "" {
		path = os.Getenv("RUMMY_CONFIG")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Gateway.Type {
	case "memory", "redis", "nats":
	default:
		return fmt.Errorf("invalid gateway type %q: must be memory, redis or nats", c.Gateway.Type)
	}
	if c.Gateway.Type == "redis" && c.Gateway.Redis.URL == "" {
		return fmt.Errorf("redis gateway requires a url (REDIS_URL or gateway.redis.url)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
