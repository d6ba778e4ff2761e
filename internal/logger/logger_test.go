package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitCreatesLogDir(t *testing.T) {
	dir := t.TempDir()

	if err := Init(Config{ConfigDir: dir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "logs")); err != nil {
		t.Errorf("expected logs directory to exist: %v", err)
	}
	if Logger == nil {
		t.Error("expected Logger to be set after Init")
	}
}

func TestHelpersNilSafe(t *testing.T) {
	// Package-level helpers must not panic before Init is called.
	old := Logger
	Logger = nil
	defer func() { Logger = old }()

	Debug("debug message")
	Info("info message", "key", "value")
	Warn("warn message")
	Error("error message", "err", "boom")
}
