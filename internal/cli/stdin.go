package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"shopterm/internal/scanner"
)

type stdinReader struct {
	reader *bufio.Reader
}

func newStdinReader() *stdinReader {
	return &stdinReader{reader: bufio.NewReader(os.Stdin)}
}

func (s *stdinReader) ReadLine() (string, error) {
	return s.reader.ReadString('\n')
}

// keyEvents streams stdin rune by rune, stamping each key on arrival so the
// disambiguator can segment scanner bursts by timing. The goroutine exits on
// stdin close or context cancellation.
func (s *stdinReader) keyEvents(ctx context.Context) <-chan scanner.KeyEvent {
	events := make(chan scanner.KeyEvent)
	go func() {
		defer close(events)
		for {
			r, _, err := s.reader.ReadRune()
			if err != nil {
				return
			}
			select {
			case events <- scanner.KeyEvent{Rune: r, At: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}
