package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, _, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPPort != "8080" || cfg.Database.Driver != "sqlite" || cfg.Dashboard.ToastTTL != 3*time.Second {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "fleet.yaml")
	yaml := "server:\n  http_port: \"9000\"\ndatabase:\n  driver: Postgres\n  dsn: postgres://file\nlogging:\n  level: debug\ndashboard:\n  toast_ttl: 5s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLEETDASH_DATABASE_DSN", "postgres://env")

	fs := Flags()
	if err := fs.Parse([]string{"--config", path, "--logging.level", "warn"}); err != nil {
		t.Fatal(err)
	}
	cfg, v, err := Load(fs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.ConfigFileUsed() != path {
		t.Fatalf("config file = %q", v.ConfigFileUsed())
	}
	if cfg.Server.HTTPPort != "9000" || cfg.Database.Driver != "postgres" {
		t.Fatalf("file values = %+v", cfg)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("env must override file, dsn = %q", cfg.Database.DSN)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("flag must override file, level = %q", cfg.Logging.Level)
	}
	if cfg.Dashboard.ToastTTL != 5*time.Second {
		t.Fatalf("toast ttl = %v", cfg.Dashboard.ToastTTL)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	fs := Flags()
	_ = fs.Parse([]string{"--config", "does-not-exist.yaml"})
	if _, _, err := Load(fs); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
