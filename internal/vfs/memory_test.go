package vfs

import (
	"errors"
	"io/fs"
	"testing"
)

func TestMemFSReadWrite(t *testing.T) {
	m := NewMemFS()

	if err := m.WriteFile("doc.txt", []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if !m.Exists("/doc.txt") {
		t.Error("file should exist under its cleaned path")
	}

	got, err := m.ReadFile("/doc.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("ReadFile() = %q, want %q", got, "hello")
	}

	// Mutating the returned slice must not change the stored file.
	got[0] = 'J'
	again, _ := m.ReadFile("doc.txt")
	if string(again) != "hello" {
		t.Errorf("stored content changed: %q", again)
	}
}

func TestMemFSNotExist(t *testing.T) {
	m := NewMemFS()
	_, err := m.ReadFile("missing.txt")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile() error = %v, want fs.ErrNotExist", err)
	}
	if m.Exists("missing.txt") {
		t.Error("missing file should not exist")
	}
}

func TestMemFSPermissions(t *testing.T) {
	m := NewMemFS()
	if err := m.AddFile("locked.txt", "secret"); err != nil {
		t.Fatal(err)
	}

	if err := m.Chmod("locked.txt", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ReadFile("locked.txt"); !errors.Is(err, fs.ErrPermission) {
		t.Errorf("ReadFile() error = %v, want fs.ErrPermission", err)
	}
	if err := m.WriteFile("locked.txt", []byte("x"), 0644); !errors.Is(err, fs.ErrPermission) {
		t.Errorf("WriteFile() error = %v, want fs.ErrPermission", err)
	}

	if err := m.Chmod("nope.txt", 0644); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Chmod() error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemFSFiles(t *testing.T) {
	m := NewMemFS()
	_ = m.AddFile("b.txt", "")
	_ = m.AddFile("a.txt", "")

	got := m.Files()
	if len(got) != 2 || got[0] != "/a.txt" || got[1] != "/b.txt" {
		t.Errorf("Files() = %v", got)
	}
}
