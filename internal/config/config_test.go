package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
server:
  listen_addr: ":8080"
  query_timeout: "5s"
nats:
  enabled: true
  url: "nats://localhost:4222"
  subject: "sensors.batches"
sinks:
  - type: clickhouse
    enabled: false
    interval: "1m"
    clickhouse:
      host: "localhost"
      port: 9000
      database: "default"
      username: "default"
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Expected listen_addr :8080, got %q", cfg.Server.ListenAddr)
	}
	if !cfg.NATS.Enabled || cfg.NATS.Subject != "sensors.batches" {
		t.Errorf("Unexpected NATS config: %+v", cfg.NATS)
	}
	if len(cfg.Sinks) != 1 || cfg.Sinks[0].Type != "clickhouse" {
		t.Errorf("Unexpected sinks config: %+v", cfg.Sinks)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TT_LISTEN_ADDR", ":9999")
	t.Setenv("TT_CLICKHOUSE_PASSWORD", "hunter2")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("Expected env override for listen addr, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Sinks[0].ClickHouse.Password != "hunter2" {
		t.Errorf("Expected env override for clickhouse password, got %q", cfg.Sinks[0].ClickHouse.Password)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected an error for a missing config file")
	}
}
