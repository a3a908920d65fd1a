package vpidevice

import "errors"

var (
	// ErrDeviceNotFound is returned when the device node does not exist.
	ErrDeviceNotFound = errors.New("vpidevice: device node not found")

	// ErrOpenFailed is returned when the device could not be opened.
	ErrOpenFailed = errors.New("vpidevice: failed to open device")

	// ErrAlreadyOpen is returned when Open is called twice.
	ErrAlreadyOpen = errors.New("vpidevice: device already open")

	// ErrLibraryUnavailable is returned when libvpi cannot be loaded.
	ErrLibraryUnavailable = errors.New("vpidevice: libvpi not available")
)
