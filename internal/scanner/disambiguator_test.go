package scanner

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type capture struct {
	mu    sync.Mutex
	codes []string
}

func (c *capture) dispatch(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes = append(c.codes, code)
}

func (c *capture) got() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

func feed(d *Disambiguator, at time.Time, step time.Duration, s string) time.Time {
	for _, r := range s {
		d.Key(KeyEvent{Rune: r, At: at})
		at = at.Add(step)
	}
	return at
}

func TestEnterDispatchesPlausibleBuffer(t *testing.T) {
	var sink capture
	d := NewDisambiguator(DefaultIdleGap, DefaultMinLength, sink.dispatch, zap.NewNop())
	defer d.Stop()

	at := feed(d, time.Now(), time.Millisecond, "8901030123456")
	d.Key(KeyEvent{Rune: '\n', At: at})

	codes := sink.got()
	if len(codes) != 1 || codes[0] != "8901030123456" {
		t.Fatalf("expected one dispatch of the full code, got %v", codes)
	}
}

func TestEnterDiscardsShortBuffer(t *testing.T) {
	var sink capture
	d := NewDisambiguator(DefaultIdleGap, DefaultMinLength, sink.dispatch, zap.NewNop())
	defer d.Stop()

	at := feed(d, time.Now(), time.Millisecond, "ab")
	d.Key(KeyEvent{Rune: '\n', At: at})

	if codes := sink.got(); len(codes) != 0 {
		t.Fatalf("expected no dispatch for a two-rune buffer, got %v", codes)
	}
}

func TestIdleGapSeparatesBackToBackScans(t *testing.T) {
	var sink capture
	d := NewDisambiguator(DefaultIdleGap, DefaultMinLength, sink.dispatch, zap.NewNop())
	defer d.Stop()

	// Two terminator-less scans, the second starting after the idle gap.
	at := feed(d, time.Now(), time.Millisecond, "8901030123456")
	at = at.Add(DefaultIdleGap)
	feed(d, at, time.Millisecond, "8901719101010")

	codes := sink.got()
	if len(codes) != 1 || codes[0] != "8901030123456" {
		t.Fatalf("expected the first code flushed on arrival of the second, got %v", codes)
	}
	if buf := d.Buffer(); buf != "8901719101010" {
		t.Errorf("expected second code still buffered, got %q", buf)
	}
}

func TestIdleGapDiscardsShortLeftovers(t *testing.T) {
	var sink capture
	d := NewDisambiguator(DefaultIdleGap, DefaultMinLength, sink.dispatch, zap.NewNop())
	defer d.Stop()

	// A few stray keystrokes, then a real scan after the gap.
	at := feed(d, time.Now(), 80*time.Millisecond, "abc")
	at = at.Add(DefaultIdleGap)
	end := feed(d, at, time.Millisecond, "8901030123456")
	d.Key(KeyEvent{Rune: '\n', At: end})

	codes := sink.got()
	if len(codes) != 1 || codes[0] != "8901030123456" {
		t.Fatalf("expected only the barcode dispatched, got %v", codes)
	}
}

func TestTrailingIdleTimerFlushes(t *testing.T) {
	var sink capture
	d := NewDisambiguator(20*time.Millisecond, DefaultMinLength, sink.dispatch, zap.NewNop())
	defer d.Stop()

	feed(d, time.Now(), 0, "8901030123456")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if codes := sink.got(); len(codes) == 1 && codes[0] == "8901030123456" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timer flush never dispatched, got %v", sink.got())
}

func TestNonPrintableRunesIgnored(t *testing.T) {
	var sink capture
	d := NewDisambiguator(DefaultIdleGap, DefaultMinLength, sink.dispatch, zap.NewNop())
	defer d.Stop()

	at := time.Now()
	d.Key(KeyEvent{Rune: '\t', At: at})
	at = feed(d, at, time.Millisecond, "890103")
	d.Key(KeyEvent{Rune: ' ', At: at})
	d.Key(KeyEvent{Rune: '\x1b', At: at})
	at = feed(d, at, time.Millisecond, "0123456")
	d.Key(KeyEvent{Rune: '\n', At: at})

	codes := sink.got()
	if len(codes) != 1 || codes[0] != "8901030123456" {
		t.Fatalf("expected control runes and spaces skipped, got %v", codes)
	}
}

func TestStopDiscardsBuffer(t *testing.T) {
	var sink capture
	d := NewDisambiguator(DefaultIdleGap, DefaultMinLength, sink.dispatch, zap.NewNop())

	feed(d, time.Now(), time.Millisecond, "8901030123456")
	d.Stop()

	if codes := sink.got(); len(codes) != 0 {
		t.Fatalf("expected no dispatch after Stop, got %v", codes)
	}
	if buf := d.Buffer(); buf != "" {
		t.Errorf("expected empty buffer after Stop, got %q", buf)
	}
}
