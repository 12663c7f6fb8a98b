package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IO handles command output.
type IO struct {
	out       io.Writer
	errOut    io.Writer
	warnings  []string
	started   bool
	highlight *color.Color
}

// NewIO creates a new IO instance. Highlighting is only enabled when colorize
// is true.
func NewIO(out, errOut io.Writer, colorize bool) *IO {
	highlight := color.New(color.FgGreen, color.Bold)
	if colorize {
		highlight.EnableColor()
	} else {
		highlight.DisableColor()
	}

	return &IO{out: out, errOut: errOut, highlight: highlight}
}

// Warn records a warning about an operation that still succeeded.
//
// Warnings are printed to stderr at both the START and END of output, so
// they stay visible when output is piped through head or tail. They do not
// change the exit code.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, fmt.Sprintf("%s: %s", issue, action))
}

// Println writes to stdout. On first call, any collected warnings
// are printed to stderr first.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout. On first call, any collected
// warnings are printed to stderr first.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Highlight formats a and colors it when the terminal supports it.
func (o *IO) Highlight(format string, a ...any) string {
	return o.highlight.Sprintf(format, a...)
}

// Finish prints warnings to stderr and returns the exit code.
func (o *IO) Finish() int {
	// Not printed yet: once is enough.
	if !o.started {
		o.flushWarningsStart()

		return 0
	}

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	return 0
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}

		o.started = true
	}
}

// colorEnabled reports whether w is a terminal and NO_COLOR is unset.
func colorEnabled(w io.Writer, env map[string]string) bool {
	if _, ok := env["NO_COLOR"]; ok {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd())
}
