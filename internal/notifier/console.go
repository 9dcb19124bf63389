package notifier

import (
	"fmt"
	"io"
)

// ConsoleSink writes the run summary to a writer, usually stdout. It stands
// in for the desktop popup on headless machines.
type ConsoleSink struct {
	W io.Writer
}

func (c *ConsoleSink) Name() string { return "console" }

func (c *ConsoleSink) Notify(text string) error {
	_, err := fmt.Fprintln(c.W, text)
	return err
}
