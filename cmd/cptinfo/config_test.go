package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%q): %v", path, err)
		}
		if cfg.Charset != "cp1250" || cfg.Format != "text" || cfg.LogLevel != "warn" {
			t.Fatalf("defaults: got %+v", cfg)
		}
		if cfg.MaxUploadBytes != 64<<20 || cfg.ServerAddress != "127.0.0.1:8080" {
			t.Fatalf("server defaults: got %+v", cfg)
		}
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "charset: cp1252\nformat: json\ndump_dir: /tmp/dumps\nmax_upload_bytes: 1024\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Charset != "cp1252" || cfg.Format != "json" || cfg.DumpDir != "/tmp/dumps" || cfg.MaxUploadBytes != 1024 {
		t.Fatalf("overrides: got %+v", cfg)
	}
	if cfg.LogFormat != "pretty" {
		t.Fatalf("unset key lost its default: got %q", cfg.LogFormat)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("charset: [\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
