package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/insight/pkg/insight/logging"
)

// Note: these tests use the package's global state and cannot run in
// parallel with each other.

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		cfg     logging.Config
		wantErr bool
	}{
		{
			name: "valid config with defaults",
			cfg: logging.Config{
				Level: "info",
				Path:  filepath.Join(t.TempDir(), "test.log"),
			},
		},
		{
			name: "component overrides",
			cfg: logging.Config{
				Level: "info",
				Path:  filepath.Join(t.TempDir(), "test.log"),
				Components: map[string]string{
					"scanner": "debug",
					"store":   "error",
				},
			},
		},
		{
			name: "invalid level",
			cfg: logging.Config{
				Level: "loud",
				Path:  filepath.Join(t.TempDir(), "test.log"),
			},
			wantErr: true,
		},
		{
			name: "invalid component level",
			cfg: logging.Config{
				Level:      "info",
				Path:       filepath.Join(t.TempDir(), "test.log"),
				Components: map[string]string{"scanner": "loud"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logging.Init(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Init failed: %v", err)
			}
			if err := logging.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
		})
	}
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	// Must not panic or write anywhere.
	logger := logging.Get("scanner")
	logger.Info("discarded message")
	logger.Debug("also discarded")
}

func TestLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.log")
	if err := logging.Init(logging.Config{Level: "debug", Path: path}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer logging.Close()

	logger := logging.Get("scanner")
	logger.Info("scan started", "path", "/tmp/x")
	logger.Debug("detail line")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "scan started") {
		t.Errorf("log file missing info line: %q", content)
	}
	if !strings.Contains(content, "detail line") {
		t.Errorf("log file missing debug line: %q", content)
	}
}

func TestComponentLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.log")
	cfg := logging.Config{
		Level:      "info",
		Path:       path,
		Components: map[string]string{"classify": "error"},
	}
	if err := logging.Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer logging.Close()

	logging.Get("classify").Info("should be filtered")
	logging.Get("scanner").Info("should appear")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "should be filtered") {
		t.Error("component override did not filter info line")
	}
	if !strings.Contains(content, "should appear") {
		t.Error("default-level component line missing")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"info", logging.LevelInfo, false},
		{"WARN", logging.LevelWarn, false},
		{"warning", logging.LevelWarn, false},
		{"error", logging.LevelError, false},
		{"loud", logging.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
