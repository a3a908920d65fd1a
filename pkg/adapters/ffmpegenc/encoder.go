// Package ffmpegenc encodes raw frames with an ffmpeg child process.
//
// Frames are streamed to the process stdin as rawvideo. The Annex-B stream
// ffmpeg writes to stdout is cut into access units and queued as packets.
package ffmpegenc

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/user/vpetranscode/pkg/adapters/bitstream"
	"github.com/user/vpetranscode/pkg/ports"
)

const readChunk = 64 * 1024

// Options configures an Encoder.
type Options struct {
	FFmpegPath string
	Mode       Mode
	Device     ports.DeviceOptions
	Logger     ports.Logger
}

// Encoder implements ports.VideoEncoder on top of ffmpeg.
type Encoder struct {
	opts   Options
	logger ports.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer
	group  errgroup.Group

	mu       sync.Mutex
	packets  []bitstream.AccessUnit
	consumed []*ports.Frame
	nextPts  int64
	done     bool
	doneErr  error
	eos      bool
	started  bool
	closed   bool
}

// New creates an Encoder. The process is started by Init.
func New(opts Options) *Encoder {
	return &Encoder{
		opts:   opts,
		logger: opts.Logger.WithComponent("ffmpegenc"),
		stderr: newTailBuffer(4096),
	}
}

// Init resolves ffmpeg and starts the encoding process.
func (e *Encoder) Init(cfg ports.EncoderConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrAlreadyInitialized
	}

	path, err := FindFFmpeg(e.opts.FFmpegPath)
	if err != nil {
		return err
	}

	args := BuildArgs(e.opts.Mode, cfg, e.opts.Device)
	e.logger.Debug("Starting %s %v", path, args)

	e.cmd = exec.Command(path, args...)
	e.cmd.Stderr = e.stderr
	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	e.stdin = stdin
	e.started = true
	splitter := bitstream.NewSplitter(cfg.Codec)
	e.group.Go(func() error {
		return e.readLoop(stdout, splitter)
	})
	return nil
}

// readLoop splits stdout into access units until ffmpeg exits.
func (e *Encoder) readLoop(stdout io.Reader, splitter *bitstream.Splitter) error {
	buf := make([]byte, readChunk)
	var readErr error
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			aus, splitErr := splitter.Write(buf[:n])
			e.enqueue(aus)
			if splitErr != nil && readErr == nil {
				readErr = splitErr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}

	aus, err := splitter.Flush()
	e.enqueue(aus)
	if err != nil && readErr == nil {
		readErr = err
	}

	waitErr := e.cmd.Wait()
	if waitErr != nil {
		readErr = fmt.Errorf("%w: %v: %s", ErrProcessFailed, waitErr, e.stderr.String())
	}

	e.mu.Lock()
	e.done = true
	e.doneErr = readErr
	e.mu.Unlock()
	return readErr
}

func (e *Encoder) enqueue(aus []bitstream.AccessUnit) {
	if len(aus) == 0 {
		return
	}
	e.mu.Lock()
	e.packets = append(e.packets, aus...)
	e.mu.Unlock()
}

// PutFrame writes frame to ffmpeg. A nil frame closes stdin.
func (e *Encoder) PutFrame(frame *ports.Frame) error {
	e.mu.Lock()
	if !e.started || e.closed {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	if e.eos {
		e.mu.Unlock()
		if frame == nil {
			return nil
		}
		return ErrEndOfStream
	}
	if frame == nil {
		e.eos = true
		e.mu.Unlock()
		return e.stdin.Close()
	}
	e.mu.Unlock()

	// Writing may block on a full pipe; the read loop needs the lock meanwhile.
	for i := 0; i < 3; i++ {
		if len(frame.Data[i]) == 0 {
			continue
		}
		if _, err := e.stdin.Write(frame.Data[i]); err != nil {
			return fmt.Errorf("%w: write frame %d: %v: %s", ErrProcessFailed, frame.Pts, err, e.stderr.String())
		}
	}

	e.mu.Lock()
	e.consumed = append(e.consumed, frame)
	e.mu.Unlock()
	return nil
}

// PacketSize returns the size of the next queued packet.
func (e *Encoder) PacketSize() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return 0, ErrNotInitialized
	}
	if len(e.packets) > 0 {
		return len(e.packets[0].Data), nil
	}
	if e.done {
		if e.doneErr != nil {
			return 0, e.doneErr
		}
		return 0, io.EOF
	}
	return 0, ports.ErrAgain
}

// GetPacket pops the next packet into pkt.
func (e *Encoder) GetPacket(pkt *ports.Packet) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.packets) == 0 {
		return ports.ErrAgain
	}
	au := e.packets[0]
	if cap(pkt.Data) < len(au.Data) {
		return fmt.Errorf("%w: %d < %d", ErrBufferTooSmall, cap(pkt.Data), len(au.Data))
	}
	e.packets[0] = bitstream.AccessUnit{}
	e.packets = e.packets[1:]

	pkt.Data = pkt.Data[:cap(pkt.Data)]
	pkt.Size = copy(pkt.Data, au.Data)
	pkt.Pts = e.nextPts
	pkt.KeyFrame = au.KeyFrame
	e.nextPts++
	return nil
}

// ConsumedFrame returns a frame that has been handed to ffmpeg, or nil.
func (e *Encoder) ConsumedFrame() (*ports.Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.consumed) == 0 {
		return nil, nil
	}
	f := e.consumed[0]
	e.consumed[0] = nil
	e.consumed = e.consumed[1:]
	return f, nil
}

// Close stops ffmpeg. A process still running because end of stream was
// never signalled is killed.
func (e *Encoder) Close() error {
	e.mu.Lock()
	if !e.started || e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	eos := e.eos
	e.mu.Unlock()

	if !eos {
		e.stdin.Close()
		if e.cmd.Process != nil {
			e.cmd.Process.Kill()
		}
	}

	err := e.group.Wait()
	if !eos {
		// Killed on purpose; the exit status carries no information.
		return nil
	}
	if errors.Is(err, ErrProcessFailed) {
		return err
	}
	return nil
}

var _ ports.VideoEncoder = (*Encoder)(nil)
