package scanner

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"
)

const (
	// DefaultIdleGap segments keystroke bursts. Hardware scanners emit the
	// whole code well inside this window; a human typist almost never does.
	// Tunable via scan_idle_gap: shorter risks splitting slow scanners,
	// longer risks merging two back-to-back scans.
	DefaultIdleGap = 500 * time.Millisecond

	// DefaultMinLength is the shortest buffer accepted by an idle flush.
	// Real barcodes (EAN-8 and up) are at least this long; shorter leftovers
	// are treated as stray typing and discarded.
	DefaultMinLength = 8

	// enterMinLength guards the explicit-terminator path: an Enter only
	// dispatches when the buffer already looks like a code.
	enterMinLength = 3
)

// Dispatch receives a complete barcode. Both the keyboard path and the
// device path funnel through the same dispatch entry point.
type Dispatch func(code string)

// KeyEvent is one keystroke with its arrival time. Carrying the timestamp
// keeps segmentation deterministic under test.
type KeyEvent struct {
	Rune rune
	At   time.Time
}

// Disambiguator tells hardware-scanner keystroke bursts apart from human
// typing. Printable runes accumulate in a transient buffer; the buffer is
// finalized by an Enter (compliant scanners) or by the idle gap (scanners
// that send no terminator), and discarded when too short to be a barcode.
type Disambiguator struct {
	gap      time.Duration
	minLen   int
	dispatch Dispatch
	logger   *zap.Logger

	mu      sync.Mutex
	buf     strings.Builder
	lastKey time.Time
	timer   *time.Timer
}

func NewDisambiguator(gap time.Duration, minLen int, dispatch Dispatch, logger *zap.Logger) *Disambiguator {
	if gap <= 0 {
		gap = DefaultIdleGap
	}
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	return &Disambiguator{
		gap:      gap,
		minLen:   minLen,
		dispatch: dispatch,
		logger:   logger.Named("scanner"),
	}
}

// Key feeds one keystroke. Enter with a plausible buffer dispatches
// immediately; otherwise printable runes accumulate, and a gap of idle time
// since the previous key closes the previous burst before the new one
// starts, so two scans inside one window are never concatenated.
func (d *Disambiguator) Key(ev KeyEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ev.Rune == '\n' || ev.Rune == '\r' {
		d.stopTimer()
		code := d.buf.String()
		d.reset()
		if len(code) >= enterMinLength {
			d.mu.Unlock()
			d.dispatch(code)
			d.mu.Lock()
		}
		return
	}

	// Spaces never occur inside a barcode; skipping them keeps stray
	// whitespace out of the buffer.
	if !unicode.IsGraphic(ev.Rune) || unicode.IsSpace(ev.Rune) {
		return
	}

	if d.buf.Len() > 0 && ev.At.Sub(d.lastKey) >= d.gap {
		d.flushLocked()
	}

	d.buf.WriteRune(ev.Rune)
	d.lastKey = ev.At
	d.armTimer()
}

// Buffer exposes the accumulating keystrokes for the register's live
// scan indicator.
func (d *Disambiguator) Buffer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.String()
}

// Stop cancels the trailing idle timer. The buffer is discarded, not
// dispatched; teardown is not a scan.
func (d *Disambiguator) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimer()
	d.reset()
}

// flushLocked finalizes the current buffer: long enough means a complete
// barcode, anything shorter is discarded as typing noise.
func (d *Disambiguator) flushLocked() {
	code := d.buf.String()
	d.reset()
	if len(code) < d.minLen {
		if code != "" {
			d.logger.Debug("discarding short scan buffer", zap.Int("len", len(code)))
		}
		return
	}
	d.mu.Unlock()
	d.dispatch(code)
	d.mu.Lock()
}

func (d *Disambiguator) armTimer() {
	d.stopTimer()
	d.timer = time.AfterFunc(d.gap, d.idleFlush)
}

func (d *Disambiguator) idleFlush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.buf.Len() == 0 {
		return
	}
	if time.Since(d.lastKey) < d.gap {
		// A key arrived after this timer was scheduled; its own timer
		// takes over.
		return
	}
	d.flushLocked()
}

func (d *Disambiguator) reset() {
	d.buf.Reset()
	d.lastKey = time.Time{}
}

func (d *Disambiguator) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
