package mocks

import (
	"context"

	"github.com/user/vpetranscode/pkg/ports"
)

// HWDevice is a mock implementation of ports.HWDevice.
type HWDevice struct {
	OpenFunc  func(ctx context.Context, opts ports.DeviceOptions) error
	CloseFunc func() error

	// Recorded calls for verification
	Opts        ports.DeviceOptions
	OpenCalled  bool
	CloseCalled bool
}

func (m *HWDevice) Open(ctx context.Context, opts ports.DeviceOptions) error {
	m.OpenCalled = true
	m.Opts = opts
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, opts)
	}
	return nil
}

func (m *HWDevice) Info() ports.DeviceInfo {
	return ports.DeviceInfo{
		Path:     m.Opts.Path,
		FD:       3,
		Priority: m.Opts.Priority,
		LogLevel: m.Opts.LogLevel,
	}
}

func (m *HWDevice) Close() error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.HWDevice = (*HWDevice)(nil)
