package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "test.log")

	l, err := New(Config{Level: "debug", File: logFile})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer l.Close()

	l.Info("test", "hello", F("key", "value"))
	l.Error("test", "boom", os.ErrNotExist)

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "[INFO] [test] hello") {
		t.Errorf("log missing info line: %q", content)
	}
	if !strings.Contains(content, "key=value") {
		t.Errorf("log missing field: %q", content)
	}
	if !strings.Contains(content, "error=file does not exist") {
		t.Errorf("log missing error: %q", content)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "test.log")

	l, err := New(Config{Level: "warn", File: logFile})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer l.Close()

	l.Debug("test", "invisible")
	l.Info("test", "invisible too")
	l.Warn("test", "visible")

	data, _ := os.ReadFile(logFile)
	if strings.Contains(string(data), "invisible") {
		t.Errorf("debug/info should have been filtered: %q", string(data))
	}
	if !strings.Contains(string(data), "visible") {
		t.Errorf("warn line missing: %q", string(data))
	}
}

func TestRotateFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "cinepost.log")

	os.WriteFile(base, []byte("current"), 0644)
	os.WriteFile(filepath.Join(dir, "cinepost.1.log"), []byte("one"), 0644)
	os.WriteFile(filepath.Join(dir, "cinepost.2.log"), []byte("two"), 0644)

	if err := rotateFiles(base, 2); err != nil {
		t.Fatalf("rotateFiles() error = %v", err)
	}

	// current -> .1, old .1 -> .2, old .2 dropped (at maxBackups)
	data, err := os.ReadFile(filepath.Join(dir, "cinepost.1.log"))
	if err != nil || string(data) != "current" {
		t.Errorf("cinepost.1.log = %q, err %v; want %q", data, err, "current")
	}
	data, err = os.ReadFile(filepath.Join(dir, "cinepost.2.log"))
	if err != nil || string(data) != "one" {
		t.Errorf("cinepost.2.log = %q, err %v; want %q", data, err, "one")
	}
	if _, err := os.Stat(base); !os.IsNotExist(err) {
		t.Errorf("base log should be rotated away")
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := Nop()
	l.Debug("x", "msg")
	l.Info("x", "msg")
	l.Warn("x", "msg")
	l.Error("x", "msg", os.ErrClosed)
}
