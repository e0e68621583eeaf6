// Package ui writes user-facing status lines. Success and info lines go to
// the output stream, errors go to the error stream, each prefixed with a
// colored tag.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Reporter prints prefixed, optionally colored messages.
type Reporter struct {
	out     io.Writer
	err     io.Writer
	noColor bool
}

// New creates a Reporter writing to out and errOut. Nil writers default to
// os.Stdout and os.Stderr.
func New(out, errOut io.Writer, noColor bool) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Reporter{out: out, err: errOut, noColor: noColor}
}

// OK reports a successful step.
func (r *Reporter) OK(format string, a ...any) {
	r.print(r.out, "OK:", color.FgGreen, format, a...)
}

// Info reports progress.
func (r *Reporter) Info(format string, a ...any) {
	r.print(r.out, "INFO:", color.FgCyan, format, a...)
}

// Error reports a failure.
func (r *Reporter) Error(format string, a ...any) {
	r.print(r.err, "ERROR:", color.FgRed, format, a...)
}

func (r *Reporter) print(w io.Writer, tag string, attr color.Attribute, format string, a ...any) {
	c := color.New(attr, color.Bold)
	if r.noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	fmt.Fprintf(w, "%s %s\n", c.Sprint(tag), fmt.Sprintf(format, a...))
}
