package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/log"
	sheetsmem "fintrack/internal/sheets/memory"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("FINTRACK_TEST_ENV_VALUE=from-file\n"), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FINTRACK_TEST_ENV_VALUE") })

	if err := LoadEnvFile(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("FINTRACK_TEST_ENV_VALUE"); got != "from-file" {
		t.Errorf("env value = %q, want from-file", got)
	}
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, log.ComponentWorker)
	if logger.Component() != log.ComponentWorker {
		t.Errorf("Component() = %s", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}

	fallback := SetupLogger(&config.Config{LogLevel: "loud"}, log.ComponentCLI)
	if fallback.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("unknown level should fall back to info")
	}
}

func TestNewReportWriterWithoutSpreadsheet(t *testing.T) {
	logger := log.New(log.DefaultConfig())
	w, err := NewReportWriter(context.Background(), logger, &config.Config{})
	if err != nil {
		t.Fatalf("NewReportWriter() error = %v", err)
	}
	if _, ok := w.(*sheetsmem.Store); !ok {
		t.Errorf("NewReportWriter() = %T, want in-memory writer", w)
	}
}

func TestNewReportWriterMissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	logger := log.New(log.DefaultConfig())
	_, err := NewReportWriter(context.Background(), logger, &config.Config{GoogleSpreadsheetID: "abc"})
	if err == nil {
		t.Fatal("expected error without credentials")
	}
}
