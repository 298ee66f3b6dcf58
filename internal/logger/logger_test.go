package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/smallwins/internal/constants"
)

func TestInit(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	if err := Init(Config{Debug: false, DataDir: dataDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(dataDir, constants.LogDirName)
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}

	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message", "key", "value")
	Error("Test error message")
}

func TestInitDebugMode(t *testing.T) {
	dataDir := t.TempDir()

	if err := Init(Config{Debug: true, DataDir: dataDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message in debug mode")
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, false)

	Debug("hidden debug")
	Warn("visible warning", "habit", "Drink Water")

	out := buf.String()
	if strings.Contains(out, "hidden debug") {
		t.Errorf("debug message written at warn level: %q", out)
	}
	if !strings.Contains(out, "visible warning") || !strings.Contains(out, "Drink Water") {
		t.Errorf("warning not written: %q", out)
	}

	buf.Reset()
	InitWriter(&buf, true)
	Debug("shown debug")
	if !strings.Contains(buf.String(), "shown debug") {
		t.Errorf("debug message missing in debug mode: %q", buf.String())
	}
}
