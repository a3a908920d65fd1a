package vpidevice

import "os"

// ProbeResult describes what is available on this host.
type ProbeResult struct {
	DevicePath   string
	DeviceExists bool
	DeviceError  string

	LibraryPath  string
	LibraryError string
}

// Probe checks the device node and the vendor library without opening the device.
func Probe(path string, libPaths []string) ProbeResult {
	if path == "" {
		path = DefaultPath
	}
	if libPaths == nil {
		libPaths = libraryPaths()
	}

	r := ProbeResult{DevicePath: path}
	if info, err := os.Stat(path); err != nil {
		r.DeviceError = err.Error()
	} else if info.Mode()&os.ModeDevice == 0 {
		r.DeviceExists = true
		r.DeviceError = "not a device node"
	} else {
		r.DeviceExists = true
	}

	lib, err := loadLibrary(libPaths)
	if err != nil {
		r.LibraryError = err.Error()
		return r
	}
	r.LibraryPath = lib.Path()
	lib.Close()
	return r
}

// Available reports whether the device can be used.
func (r ProbeResult) Available() bool {
	return r.DeviceExists && r.DeviceError == ""
}
