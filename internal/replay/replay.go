// Package replay implements deterministic playback of a recorded sample
// dataset through the live decode path. Each tick synthesizes one
// EEG-shaped notification per recorded channel and hands it to a feed
// callback; pacing follows the recorded timestamps, falling back to a
// fixed ~256 Hz tick where timestamps are absent, non-monotonic, or at
// the loop wraparound.
package replay

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/neuroband/internal/packet"
)

// Channels is the number of recorded channels per dataset row.
const Channels = 4

// DefaultTick is the fallback delay between rows, approximating 256 Hz.
const DefaultTick = 4 * time.Millisecond

// Record is one row of the recorded dataset. TimestampMs is negative when
// the row carries no usable timestamp.
type Record struct {
	TimestampMs int64
	Samples     [Channels]uint16
}

// Delay computes the pause before feeding next after cur. The recorded
// spacing is used only when both timestamps are present and next does not
// precede cur; otherwise the default tick applies.
func Delay(cur, next Record) time.Duration {
	if cur.TimestampMs >= 0 && next.TimestampMs >= 0 && next.TimestampMs >= cur.TimestampMs {
		return time.Duration(next.TimestampMs-cur.TimestampMs) * time.Millisecond
	}
	return DefaultTick
}

// FeedFunc receives one synthesized notification for a channel index.
type FeedFunc func(channel int, payload []byte)

// ActiveFunc reports whether playback should continue. The engine checks
// it at every tick and before every reschedule.
type ActiveFunc func() bool

// Engine replays a loaded dataset on its own timer. One engine serves one
// session; Stop cancels the timer synchronously so no tick fires after
// teardown.
type Engine struct {
	records []Record
	feed    FeedFunc
	active  ActiveFunc
	logger  *logrus.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	idx     int
	seq     uint16
}

// NewEngine creates an engine over the given records. The record slice
// must be non-empty; callers validate dataset loading beforehand.
func NewEngine(records []Record, feed FeedFunc, active ActiveFunc, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		records: records,
		feed:    feed,
		active:  active,
		logger:  logger,
	}
}

// Start begins playback with the first row fed immediately.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || e.timer != nil {
		return
	}
	e.logger.WithField("rows", len(e.records)).Debug("Starting mock replay")
	e.timer = time.AfterFunc(0, e.tick)
}

// Stop cancels the timer. Safe to call repeatedly; once stopped the
// engine never fires again.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.logger.Debug("Mock replay stopped")
}

func (e *Engine) tick() {
	if !e.active() {
		e.Stop()
		return
	}

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	rec := e.records[e.idx]
	seq := e.seq
	e.seq++

	// Advance to the next row; the wraparound transition always uses the
	// default tick, never a computed delta.
	var delay time.Duration
	if e.idx+1 < len(e.records) {
		delay = Delay(rec, e.records[e.idx+1])
		e.idx++
	} else {
		delay = DefaultTick
		e.idx = 0
	}
	e.mu.Unlock()

	for ch := 0; ch < Channels; ch++ {
		s := rec.Samples[ch]
		e.feed(ch, packet.EncodeEEG12(seq, []uint16{s, s}))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || !e.active() {
		e.stopped = true
		e.timer = nil
		return
	}
	e.timer = time.AfterFunc(delay, e.tick)
}
