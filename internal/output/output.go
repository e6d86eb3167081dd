// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// Stdout returns the underlying stdout writer for subprocess streaming.
func (w *Writer) Stdout() io.Writer { return w.out }

// Stderr returns the underlying stderr writer for subprocess streaming.
func (w *Writer) Stderr() io.Writer { return w.err }

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	if w.color {
		w.Println(green+format+reset, args...)
	} else {
		w.Println(format, args...)
	}
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...interface{}) {
	if w.color {
		w.Errorln(yellow+"warning: "+format+reset, args...)
	} else {
		w.Errorln("warning: "+format, args...)
	}
}

// ErrorPrefix prints an error message with a highlighted prefix.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	if w.color {
		w.Errorln(red+"error:"+reset+" "+format, args...)
	} else {
		w.Errorln("error: "+format, args...)
	}
}

// TargetStart prints the start banner of a target.
func (w *Writer) TargetStart(name string) {
	if w.quiet {
		return
	}
	label := fmt.Sprintf("─── %s ───", name)
	if w.color {
		w.Println("%s%s%s", bold+cyan, label, reset)
	} else {
		w.Println("%s", label)
	}
}

// Command echoes a command line before it runs.
func (w *Writer) Command(line string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("%s$ %s%s", dim, line, reset)
	} else {
		w.Println("$ %s", line)
	}
}

// TargetFailed prints a target failure.
func (w *Writer) TargetFailed(name string, err error) {
	if w.color {
		w.Errorln(red+"[%s] failed:"+reset+" %v", name, err)
	} else {
		w.Errorln("[%s] failed: %v", name, err)
	}
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	if w.color {
		w.Println(bold+"%s"+reset, title)
	} else {
		w.Println("%s", title)
	}
}

// HelpEntry prints a target name padded to a fixed column with its
// description.
func (w *Writer) HelpEntry(name, desc string) {
	if w.color {
		w.Println("  "+cyan+"%-*s"+reset+" %s", helpColumn, name, desc)
	} else {
		w.Println("  %-*s %s", helpColumn, name, desc)
	}
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// helpColumn is the fixed width of the target-name column in help output.
const helpColumn = 22

// isTerminal reports whether stdout is attached to a terminal.
func isTerminal() bool {
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)
