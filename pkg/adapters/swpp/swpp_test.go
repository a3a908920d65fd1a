package swpp

import (
	"errors"
	"testing"

	"github.com/user/vpetranscode/pkg/ports"
)

func filledFrame(w, h int, format ports.PixelFormat, y, u, v byte) *ports.Frame {
	f := &ports.Frame{}
	f.Alloc(w, h, format)
	for i := range f.Data[0] {
		f.Data[0][i] = y
	}
	switch format {
	case ports.PixelFormatNV12:
		for i := 0; i < len(f.Data[1]); i += 2 {
			f.Data[1][i] = u
			f.Data[1][i+1] = v
		}
	default:
		for i := range f.Data[1] {
			f.Data[1][i] = u
			f.Data[2][i] = v
		}
	}
	return f
}

func TestPreprocessor_Passthrough(t *testing.T) {
	p := New()
	if err := p.Init(ports.PPOptions{Width: 8, Height: 4, Format: ports.PixelFormatYUV420P}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	in := filledFrame(8, 4, ports.PixelFormatYUV420P, 16, 128, 200)
	in.Pts = 7
	in.KeyFrame = true

	var out ports.Frame
	if err := p.Process(in, &out); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out.Width != 8 || out.Height != 4 || out.Format != ports.PixelFormatYUV420P {
		t.Errorf("unexpected output geometry %dx%d %s", out.Width, out.Height, out.Format)
	}
	if out.Pts != 7 || !out.KeyFrame {
		t.Errorf("timing not propagated: pts=%d key=%v", out.Pts, out.KeyFrame)
	}
	if out.Data[2][3] != 200 {
		t.Errorf("expected V=200, got %d", out.Data[2][3])
	}
}

func TestPreprocessor_NV12ToYUV420P(t *testing.T) {
	p := New()
	err := p.Init(ports.PPOptions{Width: 4, Height: 4, Format: ports.PixelFormatNV12, OutFormat: ports.PixelFormatYUV420P})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	in := filledFrame(4, 4, ports.PixelFormatNV12, 50, 60, 70)

	var out ports.Frame
	if err := p.Process(in, &out); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if out.Data[1][i] != 60 || out.Data[2][i] != 70 {
			t.Fatalf("chroma sample %d: got U=%d V=%d", i, out.Data[1][i], out.Data[2][i])
		}
	}
}

func TestPreprocessor_YUV420PToNV12(t *testing.T) {
	p := New()
	err := p.Init(ports.PPOptions{Width: 4, Height: 2, Format: ports.PixelFormatYUV420P, OutFormat: ports.PixelFormatNV12})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	in := filledFrame(4, 2, ports.PixelFormatYUV420P, 1, 2, 3)

	var out ports.Frame
	if err := p.Process(in, &out); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	want := []byte{2, 3, 2, 3}
	for i, b := range want {
		if out.Data[1][i] != b {
			t.Fatalf("uv[%d]: expected %d, got %d", i, b, out.Data[1][i])
		}
	}
}

func TestPreprocessor_Downscale(t *testing.T) {
	for _, outFormat := range []ports.PixelFormat{ports.PixelFormatYUV420P, ports.PixelFormatNV12} {
		t.Run(string(outFormat), func(t *testing.T) {
			p := New()
			err := p.Init(ports.PPOptions{
				Width: 16, Height: 8, Format: ports.PixelFormatNV12,
				OutWidth: 8, OutHeight: 4, OutFormat: outFormat,
			})
			if err != nil {
				t.Fatalf("Init failed: %v", err)
			}
			in := filledFrame(16, 8, ports.PixelFormatNV12, 100, 90, 80)

			var out ports.Frame
			if err := p.Process(in, &out); err != nil {
				t.Fatalf("Process failed: %v", err)
			}
			if out.Width != 8 || out.Height != 4 {
				t.Fatalf("unexpected size %dx%d", out.Width, out.Height)
			}
			if len(out.Data[0]) != 32 {
				t.Fatalf("unexpected luma size %d", len(out.Data[0]))
			}
			// A flat picture stays flat after scaling.
			if out.Data[0][0] != 100 || out.Data[0][31] != 100 {
				t.Errorf("unexpected luma %d/%d", out.Data[0][0], out.Data[0][31])
			}
			if outFormat == ports.PixelFormatNV12 {
				if out.Data[1][0] != 90 || out.Data[1][1] != 80 {
					t.Errorf("unexpected chroma %d/%d", out.Data[1][0], out.Data[1][1])
				}
			} else if out.Data[1][0] != 90 || out.Data[2][0] != 80 {
				t.Errorf("unexpected chroma %d/%d", out.Data[1][0], out.Data[2][0])
			}
		})
	}
}

func TestPreprocessor_InitErrors(t *testing.T) {
	tests := []struct {
		name string
		opts ports.PPOptions
	}{
		{"zero size", ports.PPOptions{Format: ports.PixelFormatYUV420P}},
		{"upscale", ports.PPOptions{Width: 8, Height: 8, Format: ports.PixelFormatYUV420P, OutWidth: 16, OutHeight: 16}},
		{"odd output", ports.PPOptions{Width: 8, Height: 8, Format: ports.PixelFormatYUV420P, OutWidth: 3, OutHeight: 4}},
		{"two outputs", ports.PPOptions{Width: 8, Height: 8, Format: ports.PixelFormatYUV420P, NbOutputs: 2}},
		{"10 bit", ports.PPOptions{Width: 8, Height: 8, Format: ports.PixelFormatYUV420P, Force10Bit: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := New().Init(tt.opts); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}

	if err := New().Init(ports.PPOptions{Width: 8, Height: 8, Format: "p010le"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPreprocessor_ProcessErrors(t *testing.T) {
	p := New()
	var out ports.Frame
	if err := p.Process(filledFrame(4, 4, ports.PixelFormatYUV420P, 0, 0, 0), &out); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}

	p.Init(ports.PPOptions{Width: 8, Height: 8, Format: ports.PixelFormatYUV420P})
	if err := p.Process(filledFrame(4, 4, ports.PixelFormatYUV420P, 0, 0, 0), &out); !errors.Is(err, ErrGeometryMismatch) {
		t.Errorf("expected ErrGeometryMismatch, got %v", err)
	}

	p.Close()
	if err := p.Process(filledFrame(8, 8, ports.PixelFormatYUV420P, 0, 0, 0), &out); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized after Close, got %v", err)
	}
}
