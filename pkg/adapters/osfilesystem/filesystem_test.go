package osfilesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_CreateAndOpen(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "streams", "out.h264")

	w, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, chunk := range []string{"\x00\x00\x00\x01", "\x67\x42"} {
		if _, err := io.WriteString(w, chunk); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := fs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "\x00\x00\x00\x01\x67\x42" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestFileSystem_OpenMissing(t *testing.T) {
	fs := New()
	if _, err := fs.Open(filepath.Join(t.TempDir(), "missing.yuv")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "debug", "frames", "config.json")

	if err := fs.WriteFile(path, []byte("{}")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("expected {}, got %q", data)
	}
}

func TestFileSystem_MkdirAllAndExists(t *testing.T) {
	fs := New()
	dir := filepath.Join(t.TempDir(), "a", "b")

	exists, err := fs.Exists(dir)
	if err != nil || exists {
		t.Fatalf("expected missing dir, got exists=%v err=%v", exists, err)
	}

	if err := fs.MkdirAll(dir); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	exists, err = fs.Exists(dir)
	if err != nil || !exists {
		t.Errorf("expected dir to exist, got exists=%v err=%v", exists, err)
	}
}

func TestFileSystem_Remove(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "latency.csv")
	os.WriteFile(path, []byte("frame\n"), 0644)

	if err := fs.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if exists, _ := fs.Exists(path); exists {
		t.Error("expected file to be removed")
	}
}
