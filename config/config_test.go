package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("AI_TIMEOUT", "15s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("Auth.JWTSecret = %q, want s3cret", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.AI.Timeout != 15*time.Second {
		t.Errorf("AI.Timeout = %v, want 15s", cfg.AI.Timeout)
	}
	if cfg.AI.Model != "llama3-70b-8192" {
		t.Errorf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %q, want sqlite3", cfg.Database.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "todoiq.yaml")
	content := `
server:
  addr: ":9090"
database:
  driver: postgres
  host: db
  port: "5432"
  user: todo
  password: pw
  name: todos
auth:
  jwt_secret: from-file
ai:
  model: other-model
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AI_MODEL", "env-model")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.AI.Model != "env-model" {
		t.Errorf("AI.Model = %q, env should win over file", cfg.AI.Model)
	}
	want := "host=db port=5432 user=todo password=pw dbname=todos sslmode=disable"
	if got := cfg.Database.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: DriverSQLite, DSN: "x.db"},
			Auth:     AuthConfig{JWTSecret: "k", TokenTTL: time.Hour},
			AI:       AIConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "jwt_secret"},
		{name: "zero timeout", mutate: func(c *Config) { c.AI.Timeout = 0 }, wantErr: "ai.timeout"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "unsupported"},
		{name: "sqlite without dsn", mutate: func(c *Config) { c.Database.DSN = "" }, wantErr: "DB_DSN"},
		{
			name: "postgres missing host",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Driver: DriverPostgres, Port: "5432", User: "u", Password: "p", Name: "n"}
			},
			wantErr: "DB_HOST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseValidate_IgnoresOtherSections(t *testing.T) {
	c := Config{Database: DatabaseConfig{Driver: DriverSQLite, DSN: "file:x.db"}}
	if err := c.Database.Validate(); err != nil {
		t.Errorf("Database.Validate() error = %v", err)
	}
	if err := c.Validate(); err == nil {
		t.Error("Validate() accepted a config without a JWT secret")
	}
	c.Database.DSN = ""
	if err := c.Database.Validate(); err == nil {
		t.Error("Database.Validate() accepted sqlite3 without a DSN")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
