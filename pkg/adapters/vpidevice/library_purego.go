//go:build linux || darwin

package vpidevice

import (
	"errors"
	"fmt"

	"github.com/ebitengine/purego"
)

type puregoLibrary struct {
	path   string
	handle uintptr

	openHWDevice  func(device string) int32
	closeHWDevice func(fd int32) int32
	errorStr      func(code int32) string
}

// loadLibrary loads libvpi from the first path that provides the device symbols.
func loadLibrary(paths []string) (library, error) {
	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		lib := &puregoLibrary{path: path, handle: handle}
		if err := lib.registerSymbols(); err != nil {
			purego.Dlclose(handle)
			lastErr = err
			continue
		}
		return lib, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrLibraryUnavailable, lastErr)
	}
	return nil, ErrLibraryUnavailable
}

func (l *puregoLibrary) registerSymbols() error {
	for _, sym := range []string{"vpi_open_hwdevice", "vpi_close_hwdevice", "vpi_error_str"} {
		if _, err := purego.Dlsym(l.handle, sym); err != nil {
			return fmt.Errorf("%s: %w", sym, err)
		}
	}
	purego.RegisterLibFunc(&l.openHWDevice, l.handle, "vpi_open_hwdevice")
	purego.RegisterLibFunc(&l.closeHWDevice, l.handle, "vpi_close_hwdevice")
	purego.RegisterLibFunc(&l.errorStr, l.handle, "vpi_error_str")
	return nil
}

func (l *puregoLibrary) Path() string { return l.path }

func (l *puregoLibrary) OpenHWDevice(device string) int {
	return int(l.openHWDevice(device))
}

func (l *puregoLibrary) CloseHWDevice(fd int) int {
	return int(l.closeHWDevice(int32(fd)))
}

func (l *puregoLibrary) ErrorString(code int) string {
	return l.errorStr(int32(code))
}

func (l *puregoLibrary) Close() error {
	if l.handle == 0 {
		return errors.New("vpidevice: library already closed")
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}
