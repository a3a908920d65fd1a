package ffmpegenc

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg executable is found.
	ErrFFmpegNotFound = errors.New("ffmpegenc: ffmpeg not found")

	// ErrNotInitialized is returned when encoder methods are called before Init.
	ErrNotInitialized = errors.New("ffmpegenc: encoder not initialized")

	// ErrAlreadyInitialized is returned when Init is called twice.
	ErrAlreadyInitialized = errors.New("ffmpegenc: encoder already initialized")

	// ErrEndOfStream is returned when a frame is put after end of stream.
	ErrEndOfStream = errors.New("ffmpegenc: frame after end of stream")

	// ErrProcessFailed is returned when the ffmpeg process fails.
	ErrProcessFailed = errors.New("ffmpegenc: ffmpeg failed")

	// ErrBufferTooSmall is returned when GetPacket is given a buffer smaller
	// than the packet.
	ErrBufferTooSmall = errors.New("ffmpegenc: packet buffer too small")
)
