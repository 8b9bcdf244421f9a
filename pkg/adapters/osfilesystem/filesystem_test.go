package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_Create(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "nested", "out.mp4")

	w, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", data)
	}
}

func TestFileSystem_ExistsAndRemove(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b")

	if ok, err := fs.Exists(path); err != nil || ok {
		t.Fatalf("expected missing path, got %v/%v", ok, err)
	}
	if err := fs.MkdirAll(path); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if ok, _ := fs.Exists(path); !ok {
		t.Error("expected path to exist")
	}
	if err := fs.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok, _ := fs.Exists(path); ok {
		t.Error("expected path to be removed")
	}
}
