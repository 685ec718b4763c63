package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ErrDeviceUnavailable wraps open/permission failures on the capture device.
// The register falls back to keyboard input when it sees this.
var ErrDeviceUnavailable = errors.New("scan device unavailable")

// DeviceSource runs a continuous decode loop on an attached capture device
// (a readable device node or FIFO that emits one decoded symbol per line).
// The first successful decode goes through the same dispatch entry point as
// the keyboard path, then the loop stops and the device is closed. The
// device is released on every exit path: success, cancellation, and error.
type DeviceSource struct {
	path     string
	open     func(string) (io.ReadCloser, error)
	dispatch Dispatch
	logger   *zap.Logger
}

func NewDeviceSource(path string, dispatch Dispatch, logger *zap.Logger) *DeviceSource {
	return &DeviceSource{
		path: path,
		open: func(p string) (io.ReadCloser, error) {
			return os.Open(p)
		},
		dispatch: dispatch,
		logger:   logger.Named("scanner.device"),
	}
}

// Run blocks until one symbol is decoded, the context is cancelled, or the
// device fails.
func (s *DeviceSource) Run(ctx context.Context) error {
	if strings.TrimSpace(s.path) == "" {
		return fmt.Errorf("%w: no device configured", ErrDeviceUnavailable)
	}

	device, err := s.open(s.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	defer device.Close()

	// Cancelled on return so the reader goroutine never stays blocked on a
	// line nobody will receive.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		reader := bufio.NewScanner(device)
		for reader.Scan() {
			select {
			case lines <- strings.TrimSpace(reader.Text()):
			case <-ctx.Done():
				return
			}
		}
		readErr <- reader.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			// Closing the device unblocks the reader goroutine.
			device.Close()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
					}
				default:
				}
				return fmt.Errorf("%w: device stream ended", ErrDeviceUnavailable)
			}
			if line == "" {
				continue
			}
			s.logger.Debug("device decode", zap.String("code", line))
			s.dispatch(line)
			return nil
		}
	}
}
