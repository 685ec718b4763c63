package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"shopterm/internal/assistant"
)

func (r *Runner) runAssist(ctx context.Context, args []string) error {
	var asJSON bool

	fs := flag.NewFlagSet("assist", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: shopterm assist [flags] [question]")
		fs.PrintDefaults()
	}
	fs.BoolVar(&asJSON, "json", false, "Output JSON format")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !r.agent.Enabled() {
		return assistant.ErrNotConfigured
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	if fs.NArg() > 1 {
		return fmt.Errorf("only one question argument is supported")
	}
	if fs.NArg() == 1 {
		answer, err := r.agent.Ask(ctx, strings.TrimSpace(fs.Arg(0)), nil)
		if err != nil {
			return r.apiError(err)
		}
		return writeAnswer(answer, asJSON)
	}

	return r.assistREPL(ctx, asJSON)
}

func (r *Runner) assistREPL(ctx context.Context, asJSON bool) error {
	reader := newStdinReader()
	history := assistant.NewHistory()
	fmt.Fprintln(os.Stdout, "Shop assistant (type 'exit' to quit)")

	for {
		fmt.Fprint(os.Stdout, "> ")
		line, err := reader.ReadLine()
		if err != nil {
			return nil
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "/clear":
			history.Clear()
			fmt.Fprintln(os.Stdout, "History cleared.")
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := r.agent.Ask(ctx, line, history)
		if err != nil {
			if writeErr := writeAnswerError(err); writeErr != nil {
				return writeErr
			}
			continue
		}
		if err := writeAnswer(answer, asJSON); err != nil {
			return err
		}
	}
}

func writeAnswer(answer assistant.Answer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(answer)
	}

	text := strings.TrimSpace(answer.Text)
	if text == "" {
		text = "(empty response)"
	}
	fmt.Fprintln(os.Stdout, text)

	if len(answer.ToolCalls) > 0 {
		fmt.Fprint(os.Stdout, "(sources:")
		for _, call := range answer.ToolCalls {
			fmt.Fprintf(os.Stdout, " %s", call.Name)
		}
		fmt.Fprintln(os.Stdout, ")")
	}
	return nil
}

func writeAnswerError(err error) error {
	fmt.Fprintf(os.Stdout, "Assistant error: %v\n", err)
	return nil
}
