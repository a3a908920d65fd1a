package mocks

import (
	"github.com/user/vpetranscode/pkg/ports"
)

// Preprocessor is a mock implementation of ports.Preprocessor.
// Process copies the input planes into out, resized to the output geometry.
type Preprocessor struct {
	InitFunc    func(opts ports.PPOptions) error
	ProcessFunc func(in, out *ports.Frame) error
	CloseFunc   func() error

	// Recorded calls for verification
	Opts         ports.PPOptions
	InitCalled   bool
	ProcessCalls int
	CloseCalled  bool
}

func (m *Preprocessor) Init(opts ports.PPOptions) error {
	m.InitCalled = true
	m.Opts = opts
	if m.InitFunc != nil {
		return m.InitFunc(opts)
	}
	return nil
}

func (m *Preprocessor) Process(in, out *ports.Frame) error {
	m.ProcessCalls++
	if m.ProcessFunc != nil {
		return m.ProcessFunc(in, out)
	}

	w, h, format := m.Opts.OutWidth, m.Opts.OutHeight, m.Opts.OutFormat
	if w == 0 || h == 0 {
		w, h = in.Width, in.Height
	}
	if format == "" {
		format = in.Format
	}
	slot := out.Slot
	out.Alloc(w, h, format)
	for i := 0; i < 3; i++ {
		copy(out.Data[i], in.Data[i])
	}
	out.Pts = in.Pts
	out.PktDts = in.PktDts
	out.KeyFrame = in.KeyFrame
	out.Slot = slot
	return nil
}

func (m *Preprocessor) Close() error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.Preprocessor = (*Preprocessor)(nil)
