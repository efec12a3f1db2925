package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/viswayadeedya/TodoIQ-BE/config"
	"github.com/viswayadeedya/TodoIQ-BE/database"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{name: "defaults", cfg: config.LogConfig{Level: "info", Format: "text"}},
		{name: "upper case", cfg: config.LogConfig{Level: "DEBUG", Format: "JSON"}},
		{name: "logfmt", cfg: config.LogConfig{Level: "warn", Format: "logfmt"}},
		{name: "empty format", cfg: config.LogConfig{Level: "error"}},
		{name: "bad level", cfg: config.LogConfig{Level: "loud", Format: "text"}, wantErr: true},
		{name: "bad format", cfg: config.LogConfig{Level: "info", Format: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newLogger(io.Discard, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("newLogger(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("warn line missing or not json: %q", out)
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- run(ctx, server, log.New(io.Discard)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	server := &http.Server{Addr: "256.0.0.1:bad", Handler: http.NotFoundHandler()}
	if err := run(context.Background(), server, log.New(io.Discard)); err == nil {
		t.Fatal("expected listen error")
	}
}

func TestInitdb_DoesNotNeedJWTSecret(t *testing.T) {
	chdir(t, t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "todoiq.db")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", dbPath)
	t.Setenv("LOG_LEVEL", "error")
	configFile = ""

	if _, err := loadConfig(validateAll); err == nil {
		t.Fatal("server config without JWT_SECRET validated")
	}

	root := newRootCmd()
	root.SetArgs([]string{"initdb"})
	if err := root.Execute(); err != nil {
		t.Fatalf("initdb error = %v", err)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Driver: config.DriverSQLite, DSN: dbPath}, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		t.Errorf("tasks table missing after initdb: %v", err)
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
