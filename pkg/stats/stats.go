// Package stats tracks transcode throughput and per-frame latency.
package stats

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// MaxTracked is the number of frames whose in/out timestamps are kept.
const MaxTracked = 10000

// ReportInterval is the minimum time between two unforced reports.
const ReportInterval = time.Second

// Clock returns the current time.
type Clock func() time.Time

// Tracker records frame timestamps and prints periodic progress lines.
type Tracker struct {
	mu  sync.Mutex
	now Clock
	out io.Writer

	start      time.Time
	lastReport time.Time

	inTimes  []time.Time
	outTimes []time.Time
	framesIn int
	frames   int
}

// New creates a Tracker writing progress lines to out. A nil out discards them.
func New(out io.Writer, now Clock) *Tracker {
	if now == nil {
		now = time.Now
	}
	if out == nil {
		out = io.Discard
	}
	return &Tracker{
		now:      now,
		out:      out,
		inTimes:  make([]time.Time, 0, 256),
		outTimes: make([]time.Time, 0, 256),
	}
}

// Start sets the reference time for fps computation.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = t.now()
}

// FrameIn stamps the arrival of the next input frame.
func (t *Tracker) FrameIn() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.framesIn < MaxTracked {
		t.inTimes = append(t.inTimes, t.now())
	}
	t.framesIn++
}

// FrameOut stamps the completion of the next output frame.
func (t *Tracker) FrameOut() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frames < MaxTracked {
		t.outTimes = append(t.outTimes, t.now())
	}
	t.frames++
}

// fps returns output frames per second since Start.
func (t *Tracker) fps(now time.Time) float64 {
	elapsed := now.Sub(t.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(t.frames) / elapsed
}

// latency returns the latency of output frame n (1-based), false when untracked.
func (t *Tracker) latency(n int) (time.Duration, bool) {
	i := n - 1
	if i < 0 || i >= len(t.outTimes) || i >= len(t.inTimes) {
		return 0, false
	}
	return t.outTimes[i].Sub(t.inTimes[i]), true
}

// Report writes a progress line if force is set or ReportInterval has
// elapsed since the previous one. It returns the line written, if any.
func (t *Tracker) Report(force bool) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !force && now.Sub(t.lastReport) <= ReportInterval {
		return ""
	}
	t.lastReport = now

	line := fmt.Sprintf("\rframe %5d, fps=%3.1f", t.frames, t.fps(now))
	if lat, ok := t.latency(t.frames); ok {
		line += fmt.Sprintf(" latency=%3dms \n", lat.Milliseconds())
	}
	io.WriteString(t.out, line)
	return line
}

// Snapshot summarises the run so far.
type Snapshot struct {
	FramesIn   int
	FramesOut  int
	Elapsed    time.Duration
	FPS        float64
	MinLatency time.Duration
	AvgLatency time.Duration
	MaxLatency time.Duration
}

// Snapshot returns the current statistics.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s := Snapshot{
		FramesIn:  t.framesIn,
		FramesOut: t.frames,
		Elapsed:   now.Sub(t.start),
		FPS:       t.fps(now),
	}

	n := len(t.outTimes)
	if len(t.inTimes) < n {
		n = len(t.inTimes)
	}
	if n == 0 {
		return s
	}

	var total time.Duration
	for i := 0; i < n; i++ {
		lat := t.outTimes[i].Sub(t.inTimes[i])
		if i == 0 || lat < s.MinLatency {
			s.MinLatency = lat
		}
		if lat > s.MaxLatency {
			s.MaxLatency = lat
		}
		total += lat
	}
	s.AvgLatency = total / time.Duration(n)
	return s
}

// LatencyCSV renders the tracked per-frame latencies as CSV.
func (t *Tracker) LatencyCSV() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString("frame,in_us,out_us,latency_us\n")
	for i := 0; i < len(t.outTimes) && i < len(t.inTimes); i++ {
		in := t.inTimes[i].Sub(t.start).Microseconds()
		out := t.outTimes[i].Sub(t.start).Microseconds()
		fmt.Fprintf(&buf, "%d,%d,%d,%d\n", i, in, out, out-in)
	}
	return buf.Bytes()
}
