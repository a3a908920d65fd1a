// Package vpidevice opens the VeriSilicon transcoder device.
//
// When libvpi can be loaded at runtime the device is opened through
// vpi_open_hwdevice so that the vendor driver registers the task. Otherwise
// the device node is opened directly.
package vpidevice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/user/vpetranscode/pkg/ports"
)

// DefaultPath is the device node of the first transcoder card.
const DefaultPath = "/dev/transcoder0"

// Option configures a Device.
type Option func(*Device)

// WithLibraryPaths replaces the libvpi search paths.
// An empty list disables the library.
func WithLibraryPaths(paths []string) Option {
	return func(d *Device) {
		d.libPaths = paths
		d.libPathsSet = true
	}
}

// Device implements ports.HWDevice.
type Device struct {
	mu          sync.Mutex
	logger      ports.Logger
	libPaths    []string
	libPathsSet bool

	lib  library
	file *os.File
	info ports.DeviceInfo
	open bool
}

// New creates a Device.
func New(logger ports.Logger, opts ...Option) *Device {
	d := &Device{logger: logger.WithComponent("vpidevice")}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Device) searchPaths() []string {
	if d.libPathsSet {
		return d.libPaths
	}
	return libraryPaths()
}

// Open opens the device node and applies the device options.
func (d *Device) Open(ctx context.Context, opts ports.DeviceOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return ErrAlreadyOpen
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if _, err := os.Stat(opts.Path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDeviceNotFound, opts.Path)
		}
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	d.info = ports.DeviceInfo{
		Path:     opts.Path,
		Priority: opts.Priority,
		LogLevel: opts.LogLevel,
	}

	if paths := d.searchPaths(); len(paths) > 0 {
		lib, err := loadLibrary(paths)
		if err == nil {
			fd := lib.OpenHWDevice(opts.Path)
			if fd < 0 {
				msg := lib.ErrorString(fd)
				lib.Close()
				return fmt.Errorf("%w: %s: %s", ErrOpenFailed, opts.Path, msg)
			}
			d.lib = lib
			d.info.FD = fd
			d.info.LibraryPath = lib.Path()
			d.open = true
			d.logger.Debug("Opened %s through %s (fd=%d)", opts.Path, lib.Path(), fd)
			return nil
		}
		d.logger.Debug("libvpi unavailable, opening device node directly: %v", err)
	}

	f, err := os.OpenFile(opts.Path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOpenFailed, opts.Path, err)
	}
	d.file = f
	d.info.FD = int(f.Fd())
	d.open = true
	d.logger.Debug("Opened %s (fd=%d, priority=%s, log level=%d)", opts.Path, d.info.FD, opts.Priority, opts.LogLevel)
	return nil
}

// Info returns information about the opened device.
func (d *Device) Info() ports.DeviceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

// Close closes the device. Closing a closed device is a no-op.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil
	}
	d.open = false

	var errs []error
	if d.lib != nil {
		if ret := d.lib.CloseHWDevice(d.info.FD); ret < 0 {
			errs = append(errs, fmt.Errorf("vpi_close_hwdevice: %s", d.lib.ErrorString(ret)))
		}
		if err := d.lib.Close(); err != nil {
			errs = append(errs, err)
		}
		d.lib = nil
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil {
			errs = append(errs, err)
		}
		d.file = nil
	}
	d.logger.Debug("Closed %s", d.info.Path)
	return errors.Join(errs...)
}

var _ ports.HWDevice = (*Device)(nil)
