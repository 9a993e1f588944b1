package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP gateway settings.
type ServerConfig struct {
	ListenAddr   string `yaml:"listen_addr"`
	QueryTimeout string `yaml:"query_timeout"`
}

// NATSConfig holds the settings for the message-bus ingest path.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds the connection settings for the ClickHouse sink.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SinkDef defines a single snapshot sink from the config file.
type SinkDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Interval   string           `yaml:"interval"`
	Path       string           `yaml:"path"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Server ServerConfig `yaml:"server"`
	NATS   NATSConfig   `yaml:"nats"`
	Sinks  []SinkDef    `yaml:"sinks"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct. An optional .env file and the process environment override the
// endpoint and credential fields, so secrets stay out of the YAML.
func LoadConfig(filePath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TT_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("TT_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("TT_CLICKHOUSE_PASSWORD"); v != "" {
		for i := range cfg.Sinks {
			if cfg.Sinks[i].Type == "clickhouse" {
				cfg.Sinks[i].ClickHouse.Password = v
			}
		}
	}
}
