package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing-means-defaults-only"))
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}

	cfg, err = Load(writeYAML(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 3000 {
		t.Errorf("port = %d, want default 3000", cfg.Port)
	}
	if cfg.AuthDir != "./auth" || cfg.TempDir != "./temp" {
		t.Errorf("dirs = %q, %q", cfg.AuthDir, cfg.TempDir)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeYAML(t, `
port: 8080
owner: 263718456744@s.whatsapp.net
temp_dir: /var/tmp/wabot
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.OwnerJID != "263718456744@s.whatsapp.net" {
		t.Errorf("owner = %q", cfg.OwnerJID)
	}
	if cfg.TempDir != "/var/tmp/wabot" {
		t.Errorf("temp dir = %q", cfg.TempDir)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Untouched fields keep their defaults.
	if cfg.AuthDir != "./auth" {
		t.Errorf("auth dir = %q, want default", cfg.AuthDir)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, "port: 8080\nowner: file@s.whatsapp.net\n")
	t.Setenv("PORT", "9090")
	t.Setenv("OWNER_NUMBER", "env@s.whatsapp.net")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want env value 9090", cfg.Port)
	}
	if cfg.OwnerJID != "env@s.whatsapp.net" {
		t.Errorf("owner = %q, want env value", cfg.OwnerJID)
	}
}

func TestLoadOptionalKeysDefaultEmpty(t *testing.T) {
	cfg, err := Load(writeYAML(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	// Missing credentials degrade features, they are not load errors.
	if cfg.UnsplashKey != "" {
		t.Errorf("unsplash key = %q, want empty", cfg.UnsplashKey)
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OwnerJID = "263718456744@s.whatsapp.net"
	cfg.Port = 4000

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := SaveToFile(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.OwnerJID != cfg.OwnerJID || loaded.Port != cfg.Port {
		t.Errorf("round trip = %+v", loaded)
	}
}
