package vpidevice

import (
	"os"
	"path/filepath"
	"runtime"
)

// LibraryEnv overrides the libvpi location.
const LibraryEnv = "VPI_LIB_PATH"

// library is the subset of libvpi used to manage the device node.
type library interface {
	Path() string
	OpenHWDevice(device string) int
	CloseHWDevice(fd int) int
	ErrorString(code int) string
	Close() error
}

// libraryPaths returns candidate libvpi locations, highest priority first.
func libraryPaths() []string {
	libName := "libvpi.so"
	if runtime.GOOS == "darwin" {
		libName = "libvpi.dylib"
	}

	var paths []string
	if env := os.Getenv(LibraryEnv); env != "" {
		if info, err := os.Stat(env); err == nil && info.IsDir() {
			paths = append(paths, filepath.Join(env, libName))
		} else {
			paths = append(paths, env)
		}
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, libName),
			filepath.Join(exeDir, "..", "lib", libName),
		)
	}

	paths = append(paths,
		libName,
		"/usr/lib/vpe/"+libName,
		"/usr/local/lib/"+libName,
		"/usr/lib/"+libName,
	)
	return paths
}
