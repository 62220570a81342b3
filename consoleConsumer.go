package analytics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleConsumer writes each record as one line to a writer for local
// debugging, flagging records that fail a JSON well-formedness check. It
// is a local stand-in for the network debug transport, which is outside
// this package.
//
// Like the LoggingConsumer, it is not internally synchronized.
type ConsoleConsumer struct {
	out     io.Writer
	okLine  func(format string, a ...any) string
	badLine func(format string, a ...any) string
}

// NewConsoleConsumer returns a ConsoleConsumer writing to w, or to stderr
// when w is nil. Output is colorized only when w is a terminal.
func NewConsoleConsumer(w io.Writer) *ConsoleConsumer {
	if w == nil {
		w = os.Stderr
	}

	c := &ConsoleConsumer{out: w, okLine: fmt.Sprintf, badLine: fmt.Sprintf}

	if f, ok := w.(*os.File); ok &&
		(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		c.okLine = color.New(color.FgGreen).Sprintf
		c.badLine = color.New(color.FgRed).Sprintf
	}

	return c
}

// Send writes one record line. Malformed records are flagged, not dropped.
func (c *ConsoleConsumer) Send(record []byte) error {
	var line string
	if json.Valid(record) {
		line = c.okLine("%s\n", record)
	} else {
		line = c.badLine("malformed record: %s\n", record)
	}

	if _, err := io.WriteString(c.out, line); err != nil {
		return fmt.Errorf("failed to write record to console: %w", err)
	}
	return nil
}

// Flush is a no-op; records are written through on Send.
func (c *ConsoleConsumer) Flush() error { return nil }

// Close is a no-op; the ConsoleConsumer does not own its writer.
func (c *ConsoleConsumer) Close() error { return nil }
