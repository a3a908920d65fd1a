package vpidevice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/vpetranscode/pkg/adapters/logger"
	"github.com/user/vpetranscode/pkg/ports"
)

// fakeNode creates a regular file standing in for the device node.
func fakeNode(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcoder0")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("failed to create node: %v", err)
	}
	return path
}

func TestDevice_OpenClose(t *testing.T) {
	path := fakeNode(t)
	d := New(logger.NewNoop(), WithLibraryPaths(nil))

	err := d.Open(context.Background(), ports.DeviceOptions{Path: path, Priority: ports.PriorityLive, LogLevel: 3})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	info := d.Info()
	if info.Path != path || info.Priority != ports.PriorityLive || info.LogLevel != 3 {
		t.Errorf("unexpected info %+v", info)
	}
	if info.FD <= 0 {
		t.Errorf("expected a valid fd, got %d", info.FD)
	}
	if info.LibraryPath != "" {
		t.Errorf("expected no library, got %q", info.LibraryPath)
	}

	if err := d.Open(context.Background(), ports.DeviceOptions{Path: path}); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("expected ErrAlreadyOpen, got %v", err)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestDevice_MissingNode(t *testing.T) {
	d := New(logger.NewNoop(), WithLibraryPaths(nil))
	err := d.Open(context.Background(), ports.DeviceOptions{Path: filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestDevice_LibraryFallback(t *testing.T) {
	path := fakeNode(t)
	d := New(logger.NewNoop(), WithLibraryPaths([]string{filepath.Join(t.TempDir(), "libvpi.so")}))

	if err := d.Open(context.Background(), ports.DeviceOptions{Path: path}); err != nil {
		t.Fatalf("Open should fall back to the device node: %v", err)
	}
	defer d.Close()
	if d.Info().LibraryPath != "" {
		t.Errorf("expected direct open, got library %q", d.Info().LibraryPath)
	}
}

func TestDevice_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := New(logger.NewNoop(), WithLibraryPaths(nil))
	if err := d.Open(ctx, ports.DeviceOptions{Path: fakeNode(t)}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	missing := Probe(filepath.Join(t.TempDir(), "none"), []string{})
	if missing.DeviceExists || missing.Available() {
		t.Errorf("expected missing device, got %+v", missing)
	}
	if missing.LibraryError == "" {
		t.Error("expected library error with no search paths")
	}

	regular := Probe(fakeNode(t), []string{})
	if !regular.DeviceExists || regular.Available() {
		t.Errorf("regular file should exist but not be usable: %+v", regular)
	}
}

func TestLibraryPaths_Env(t *testing.T) {
	t.Setenv(LibraryEnv, "/opt/vpe/lib/libvpi.so")
	paths := libraryPaths()
	if len(paths) == 0 || paths[0] != "/opt/vpe/lib/libvpi.so" {
		t.Errorf("expected env path first, got %v", paths)
	}
}
