package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriter_WriteAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1024})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	msg := []byte("hello log\n")
	n, err := w.Write(msg)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(msg) {
		t.Errorf("Write returned %d, want %d", n, len(msg))
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if string(data) != "hello log\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestRotatingWriter_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "test.log")

	w, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestRotatingWriter_RotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 64})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer w.Close()

	line := []byte(strings.Repeat("x", 40) + "\n")
	for i := 0; i < 4; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Errorf("expected rotated backup files, found %d entries", len(entries))
	}
}

func TestRotatingWriter_AppendsOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1024})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w, err = NewRotatingWriter(path, RotationConfig{MaxSize: 1024})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("unexpected content: %q", data)
	}
}
