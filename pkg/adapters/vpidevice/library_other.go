//go:build !linux && !darwin

package vpidevice

func loadLibrary(paths []string) (library, error) {
	return nil, ErrLibraryUnavailable
}
