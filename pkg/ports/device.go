// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"fmt"
)

// Priority is the scheduling class of a hardware task.
type Priority int

const (
	// PriorityVOD schedules the task as video on demand.
	PriorityVOD Priority = iota
	// PriorityLive schedules the task as a live stream.
	PriorityLive
)

// String returns the option value of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLive:
		return "live"
	default:
		return "vod"
	}
}

// ParsePriority parses a device priority option value.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "vod":
		return PriorityVOD, nil
	case "live":
		return PriorityLive, nil
	default:
		return PriorityVOD, fmt.Errorf("unknown priority: %s", s)
	}
}

// DeviceOptions configures how a hardware device is opened.
type DeviceOptions struct {
	Path     string   // Device node, e.g. /dev/transcoder0
	Priority Priority // Task priority
	LogLevel int      // Vendor library log level (0 = quiet)
}

// DeviceInfo describes an opened device.
type DeviceInfo struct {
	Path        string
	FD          int
	Priority    Priority
	LogLevel    int
	LibraryPath string // Vendor library used to open the device, empty if none
}

// HWDevice abstracts the transcoder hardware context.
type HWDevice interface {
	// Open opens the device node and creates the hardware context.
	Open(ctx context.Context, opts DeviceOptions) error

	// Info returns information about the opened device.
	Info() DeviceInfo

	// Close destroys the hardware context and closes the device node.
	Close() error
}
