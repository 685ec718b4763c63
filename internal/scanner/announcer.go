package scanner

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Announcer gives the cashier audible feedback on scan outcomes. All of it is
// best effort: a missing speaker or speech binary never fails a scan.
type Announcer interface {
	Beep()
	Say(text string)
}

// TerminalAnnouncer rings the terminal bell and, when a speech command is
// configured (espeak, say, spd-say), speaks through it.
type TerminalAnnouncer struct {
	out       io.Writer
	speechCmd string
	logger    *zap.Logger
}

func NewTerminalAnnouncer(out io.Writer, speechCmd string, logger *zap.Logger) *TerminalAnnouncer {
	return &TerminalAnnouncer{
		out:       out,
		speechCmd: strings.TrimSpace(speechCmd),
		logger:    logger.Named("announcer"),
	}
}

func (a *TerminalAnnouncer) Beep() {
	if a.out == nil {
		return
	}
	_, _ = fmt.Fprint(a.out, "\a")
}

func (a *TerminalAnnouncer) Say(text string) {
	if a.speechCmd == "" {
		return
	}
	go func() {
		if err := exec.Command(a.speechCmd, text).Run(); err != nil {
			a.logger.Debug("speech command failed", zap.Error(err))
		}
	}()
}

// NopAnnouncer is used in tests and when all feedback is disabled.
type NopAnnouncer struct{}

func (NopAnnouncer) Beep()           {}
func (NopAnnouncer) Say(text string) {}
