package bitstream

import "errors"

var (
	// ErrNoParameterSets is returned when an MP4 output receives a picture
	// before the SPS/PPS needed for its sample description.
	ErrNoParameterSets = errors.New("bitstream: SPS/PPS not found before first picture")

	// ErrUnsupportedContainer is returned when the codec cannot be stored in the
	// requested container.
	ErrUnsupportedContainer = errors.New("bitstream: codec not supported by container")

	// ErrReorderedFrames is returned for an MP4 output of a stream with
	// B-frames; samples are written without composition time offsets.
	ErrReorderedFrames = errors.New("bitstream: B-frames not supported in mp4 output")

	// ErrClosed is returned when writing to a closed writer.
	ErrClosed = errors.New("bitstream: writer closed")
)
