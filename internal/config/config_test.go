package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("RATE_LIMIT_AUTH_RPS", "2.5")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("Server.Port = %q, want env override 9999", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want default localhost", cfg.Database.Host)
	}
	if cfg.RateLimit.AuthRPS != 2.5 {
		t.Errorf("RateLimit.AuthRPS = %v, want 2.5", cfg.RateLimit.AuthRPS)
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadConfig should fail without a JWT secret")
	}
}

func TestLoadConfigReadsYAMLFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	os.Unsetenv("SERVER_PORT")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: \"3000\"\ndatabase:\n  dbname: lms_test\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("Server.Port = %q, want 3000 from file", cfg.Server.Port)
	}
	if cfg.Database.DBName != "lms_test" {
		t.Errorf("Database.DBName = %q, want lms_test", cfg.Database.DBName)
	}
}
