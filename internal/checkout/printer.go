package checkout

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Printer issues the print request for a rendered receipt.
type Printer interface {
	Print(r Receipt) error
}

// ConsolePrinter writes the receipt to the terminal. It is the default when
// no print spooler command is configured.
type ConsolePrinter struct {
	Out io.Writer
}

func (p ConsolePrinter) Print(r Receipt) error {
	if p.Out == nil {
		return nil
	}
	_, err := fmt.Fprintln(p.Out, r.Render())
	return err
}

// CommandPrinter pipes the receipt into a spooler command such as lp.
type CommandPrinter struct {
	Command string
}

func (p CommandPrinter) Print(r Receipt) error {
	cmd := exec.Command(p.Command)
	cmd.Stdin = strings.NewReader(r.Render())
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("print command %q: %w", p.Command, err)
	}
	return nil
}
