package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Port:        "8080",
		Environment: "dev",
		DatabaseURL: "postgres://localhost:5432/arbor",
		StoreDriver: StoreDriverPostgres,
		DBMaxConns:  25,
		DBMinConns:  5,
		JWKSURL:     "https://auth.example.com/.well-known/jwks.json",
		LogMaxFiles: 10,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"memory store needs no database url", func(c *Config) {
			c.StoreDriver = StoreDriverMemory
			c.DatabaseURL = ""
		}, false},
		{"dev header needs no jwks url", func(c *Config) {
			c.DevUserHeader = true
			c.JWKSURL = ""
		}, false},
		{"bad port", func(c *Config) { c.Port = "http" }, true},
		{"unknown environment", func(c *Config) { c.Environment = "staging" }, true},
		{"unknown store driver", func(c *Config) { c.StoreDriver = "sqlite" }, true},
		{"postgres without database url", func(c *Config) { c.DatabaseURL = "" }, true},
		{"missing jwks url", func(c *Config) { c.JWKSURL = "" }, true},
		{"malformed jwks url", func(c *Config) { c.JWKSURL = "not a url" }, true},
		{"memory store in prod", func(c *Config) {
			c.Environment = "prod"
			c.StoreDriver = StoreDriverMemory
		}, true},
		{"dev header in prod", func(c *Config) {
			c.Environment = "prod"
			c.DevUserHeader = true
		}, true},
		{"min conns above max", func(c *Config) { c.DBMinConns = 30 }, true},
		{"zero log files", func(c *Config) { c.LogMaxFiles = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "STORE_DRIVER", "TABLE_PREFIX", "DEBUG", "DB_MAX_CONNS", "AUTH_ADMIN_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Environment != "dev" || cfg.Port != "8080" {
		t.Errorf("env/port = %s/%s", cfg.Environment, cfg.Port)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Errorf("StoreDriver = %s", cfg.StoreDriver)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %q", cfg.TablePrefix)
	}
	if !cfg.Debug {
		t.Error("Debug should default to true outside prod")
	}
	if cfg.DBMaxConns != 25 {
		t.Errorf("DBMaxConns = %d", cfg.DBMaxConns)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DEBUG", "")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("AUTH_ADMIN_URL", "https://auth.example.com/")

	cfg := Load()
	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %q", cfg.TablePrefix)
	}
	if cfg.Debug {
		t.Error("Debug should default to false in prod")
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Errorf("StoreDriver = %s", cfg.StoreDriver)
	}
	if cfg.DBMaxConns != 25 {
		t.Errorf("malformed DB_MAX_CONNS should fall back, got %d", cfg.DBMaxConns)
	}
	if cfg.AuthAdminURL != "https://auth.example.com" {
		t.Errorf("AuthAdminURL = %s", cfg.AuthAdminURL)
	}
}

func TestGetTablePrefix(t *testing.T) {
	t.Setenv("TABLE_PREFIX", "")
	for env, want := range map[string]string{"dev": "dev_", "test": "test_", "prod": "prod_", "": "dev_"} {
		if got := getTablePrefix(env); got != want {
			t.Errorf("getTablePrefix(%q) = %q, want %q", env, got, want)
		}
	}

	t.Setenv("TABLE_PREFIX", "pr42_")
	if got := getTablePrefix("test"); got != "pr42_" {
		t.Errorf("override ignored, got %q", got)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"server-2026-01-01T00-00-00.log",
		"server-2026-01-02T00-00-00.log",
		"server-2026-01-03T00-00-00.log",
		"seed-2026-01-01T00-00-00.log",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanupOldLogs(dir, "server", 2); err != nil {
		t.Fatalf("cleanupOldLogs() error = %v", err)
	}

	remaining, _ := filepath.Glob(filepath.Join(dir, "*.log"))
	if len(remaining) != 3 {
		t.Fatalf("remaining = %v", remaining)
	}
	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Error("oldest server log should be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, names[3])); err != nil {
		t.Error("logs of other binaries must be kept")
	}
}

func TestNewLogger_FileSink(t *testing.T) {
	cfg := validConfig()
	cfg.LogDir = t.TempDir()

	logger, closeLog, err := NewLogger(cfg, "server")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Info("hello")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}

	files, _ := filepath.Glob(filepath.Join(cfg.LogDir, "server-*.log"))
	if len(files) != 1 {
		t.Fatalf("log files = %v", files)
	}
	data, _ := os.ReadFile(files[0])
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}
