package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bindery/internal/config"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[metastore]
base_url = "https://meta.example.org/api/"

[storage]
endpoint = "https://objects.example.org"
bucket = "books"
`

func TestLoadMinimalConfigAppliesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := writeConfig(t, t.TempDir(), minimalConfig)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}

	if cfg.Catalog.BaseURL != "https://gutendex.com" {
		t.Errorf("catalog base = %q", cfg.Catalog.BaseURL)
	}
	if cfg.Metastore.BaseURL != "https://meta.example.org/api" {
		t.Errorf("metastore base = %q, want trailing slash trimmed", cfg.Metastore.BaseURL)
	}
	if cfg.Processing.DownloadRetries != 3 || cfg.Processing.MinQualityScore != 60 {
		t.Errorf("processing = %+v", cfg.Processing)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Errorf("logging = %+v", cfg.Logging)
	}

	wantData := filepath.Join(tempHome, ".local", "share", "bindery")
	if cfg.Paths.DataDir != wantData {
		t.Errorf("data dir = %q, want %q", cfg.Paths.DataDir, wantData)
	}
}

func TestLoadMissingFileFailsValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected validation failure without metastore.base_url")
	}
	if !strings.Contains(err.Error(), "metastore.base_url") {
		t.Fatalf("err = %v", err)
	}
}

func TestTokenEnvFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BINDERY_METASTORE_TOKEN", "meta-secret")
	t.Setenv("BINDERY_STORAGE_TOKEN", "store-secret")

	path := writeConfig(t, t.TempDir(), minimalConfig)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Metastore.Token != "meta-secret" {
		t.Errorf("metastore token = %q", cfg.Metastore.Token)
	}
	if cfg.Storage.Token != "store-secret" {
		t.Errorf("storage token = %q", cfg.Storage.Token)
	}
}

func TestLoadRejectsBadQualityScore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	body := minimalConfig + `
[processing]
min_quality_score = 150
`
	path := writeConfig(t, t.TempDir(), body)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "min_quality_score") {
		t.Fatalf("err = %v", err)
	}
}

func TestNormalizeLoggingFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	body := minimalConfig + `
[logging]
format = "YAML"
level = "DEBUG"
`
	path := writeConfig(t, t.TempDir(), body)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("format = %q, want unknown formats coerced to console", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestSampleConfigParses(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Catalog.BaseURL != "https://gutendex.com" {
		t.Errorf("sample catalog base = %q", cfg.Catalog.BaseURL)
	}
}
