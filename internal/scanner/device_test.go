package scanner

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDeviceSourceDispatchesFirstSymbol(t *testing.T) {
	var sink capture
	s := NewDeviceSource("/dev/scanner0", sink.dispatch, zap.NewNop())
	s.open = func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("\n8901030123456\n8901719101010\n")), nil
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	codes := sink.got()
	if len(codes) != 1 || codes[0] != "8901030123456" {
		t.Fatalf("expected the first non-empty symbol only, got %v", codes)
	}
}

func TestDeviceSourceMissingDevice(t *testing.T) {
	var sink capture
	s := NewDeviceSource("/dev/scanner0", sink.dispatch, zap.NewNop())
	s.open = func(string) (io.ReadCloser, error) {
		return nil, errors.New("permission denied")
	}

	if err := s.Run(context.Background()); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestDeviceSourceNoDeviceConfigured(t *testing.T) {
	var sink capture
	s := NewDeviceSource("   ", sink.dispatch, zap.NewNop())

	if err := s.Run(context.Background()); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestDeviceSourceStreamEnd(t *testing.T) {
	var sink capture
	s := NewDeviceSource("/dev/scanner0", sink.dispatch, zap.NewNop())
	s.open = func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("")), nil
	}

	if err := s.Run(context.Background()); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable on stream end, got %v", err)
	}
}

type blockingReader struct {
	unblock chan struct{}
	once    sync.Once
}

func (r *blockingReader) Read(p []byte) (int, error) {
	<-r.unblock
	return 0, io.EOF
}

func (r *blockingReader) Close() error {
	r.once.Do(func() { close(r.unblock) })
	return nil
}

func TestDeviceSourceCancelledContext(t *testing.T) {
	var sink capture
	s := NewDeviceSource("/dev/scanner0", sink.dispatch, zap.NewNop())
	device := &blockingReader{unblock: make(chan struct{})}
	s.open = func(string) (io.ReadCloser, error) { return device, nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
