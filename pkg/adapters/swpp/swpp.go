// Package swpp is a software preprocessor: pixel format conversion between
// nv12 and yuv420p and downscaling to a low resolution output.
package swpp

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/user/vpetranscode/pkg/ports"
)

var (
	// ErrNotInitialized is returned when Process is called before Init.
	ErrNotInitialized = errors.New("swpp: not initialized")

	// ErrInvalidOptions is returned for unsupported preprocessing options.
	ErrInvalidOptions = errors.New("swpp: invalid options")

	// ErrGeometryMismatch is returned when an input frame differs from the configured geometry.
	ErrGeometryMismatch = errors.New("swpp: input geometry mismatch")
)

// Preprocessor implements ports.Preprocessor in software.
type Preprocessor struct {
	opts   ports.PPOptions
	ready  bool
	scaler draw.Interpolator

	// Planar scratch frame used when converting before or after scaling.
	planar ports.Frame
}

// New creates a Preprocessor.
func New() *Preprocessor {
	return &Preprocessor{scaler: draw.CatmullRom}
}

// Init validates and stores opts.
func (p *Preprocessor) Init(opts ports.PPOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("%w: input size %dx%d", ErrInvalidOptions, opts.Width, opts.Height)
	}
	if _, err := ports.ParsePixelFormat(string(opts.Format)); err != nil {
		return err
	}
	if opts.OutWidth == 0 && opts.OutHeight == 0 {
		opts.OutWidth, opts.OutHeight = opts.Width, opts.Height
	}
	if opts.OutWidth <= 0 || opts.OutHeight <= 0 || opts.OutWidth%2 != 0 || opts.OutHeight%2 != 0 {
		return fmt.Errorf("%w: output size %dx%d", ErrInvalidOptions, opts.OutWidth, opts.OutHeight)
	}
	if opts.OutWidth > opts.Width || opts.OutHeight > opts.Height {
		return fmt.Errorf("%w: output %dx%d larger than input %dx%d",
			ErrInvalidOptions, opts.OutWidth, opts.OutHeight, opts.Width, opts.Height)
	}
	if opts.OutFormat == "" {
		opts.OutFormat = opts.Format
	}
	if _, err := ports.ParsePixelFormat(string(opts.OutFormat)); err != nil {
		return err
	}
	if opts.NbOutputs == 0 {
		opts.NbOutputs = 1
	}
	if opts.NbOutputs != 1 {
		return fmt.Errorf("%w: nb_outputs=%d", ErrInvalidOptions, opts.NbOutputs)
	}
	if opts.Force10Bit {
		return fmt.Errorf("%w: 10-bit output", ErrInvalidOptions)
	}

	p.opts = opts
	p.ready = true
	return nil
}

// Process converts in into out, allocating out's planes as needed.
func (p *Preprocessor) Process(in, out *ports.Frame) error {
	if !p.ready {
		return ErrNotInitialized
	}
	o := p.opts
	if in.Width != o.Width || in.Height != o.Height || in.Format != o.Format {
		return fmt.Errorf("%w: got %dx%d %s, want %dx%d %s",
			ErrGeometryMismatch, in.Width, in.Height, in.Format, o.Width, o.Height, o.Format)
	}

	out.Alloc(o.OutWidth, o.OutHeight, o.OutFormat)
	out.Pts = in.Pts
	out.PktDts = in.PktDts
	out.KeyFrame = in.KeyFrame

	scale := o.OutWidth != o.Width || o.OutHeight != o.Height
	switch {
	case !scale && o.Format == o.OutFormat:
		for i := range out.Data {
			copy(out.Data[i], in.Data[i])
		}
	case !scale:
		convert(in, out)
	default:
		src := in
		if in.Format == ports.PixelFormatNV12 {
			p.planar.Alloc(in.Width, in.Height, ports.PixelFormatYUV420P)
			convert(in, &p.planar)
			src = &p.planar
		}
		if o.OutFormat == ports.PixelFormatYUV420P {
			p.scalePlanes(src, out)
		} else {
			var tmp ports.Frame
			tmp.Alloc(o.OutWidth, o.OutHeight, ports.PixelFormatYUV420P)
			p.scalePlanes(src, &tmp)
			convert(&tmp, out)
		}
	}
	return nil
}

// scalePlanes scales each plane of the yuv420p frame src into dst.
func (p *Preprocessor) scalePlanes(src, dst *ports.Frame) {
	for i := 0; i < 3; i++ {
		sw, sh := src.Width, src.Height
		dw, dh := dst.Width, dst.Height
		if i > 0 {
			sw, sh, dw, dh = sw/2, sh/2, dw/2, dh/2
		}
		s := &image.Gray{Pix: src.Data[i], Stride: src.Linesize[i], Rect: image.Rect(0, 0, sw, sh)}
		d := &image.Gray{Pix: dst.Data[i], Stride: dst.Linesize[i], Rect: image.Rect(0, 0, dw, dh)}
		p.scaler.Scale(d, d.Bounds(), s, s.Bounds(), draw.Src, nil)
	}
}

// convert converts between nv12 and yuv420p at the same size.
func convert(in, out *ports.Frame) {
	copy(out.Data[0], in.Data[0])
	n := in.Width * in.Height / 4
	switch {
	case in.Format == ports.PixelFormatNV12 && out.Format == ports.PixelFormatYUV420P:
		uv := in.Data[1]
		for i := 0; i < n; i++ {
			out.Data[1][i] = uv[2*i]
			out.Data[2][i] = uv[2*i+1]
		}
	case in.Format == ports.PixelFormatYUV420P && out.Format == ports.PixelFormatNV12:
		uv := out.Data[1]
		for i := 0; i < n; i++ {
			uv[2*i] = in.Data[1][i]
			uv[2*i+1] = in.Data[2][i]
		}
	default:
		copy(out.Data[1], in.Data[1])
		copy(out.Data[2], in.Data[2])
	}
}

// Close releases the preprocessor.
func (p *Preprocessor) Close() error {
	p.ready = false
	p.planar = ports.Frame{}
	return nil
}

var _ ports.Preprocessor = (*Preprocessor)(nil)
