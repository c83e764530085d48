// Package terminal is the user-facing output sink handed to every command.
//
// Regular lines go to the output writer, warnings and errors to the error
// writer. Verbose and debug lines are dropped unless enabled. Styling uses
// lipgloss renderers bound to each writer, so redirected output stays
// plain text.
package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

// Options configures a Terminal
type Options struct {
	// Out receives regular, verbose and debug lines (default: os.Stdout)
	Out io.Writer

	// Err receives warning and error lines (default: os.Stderr)
	Err io.Writer

	Verbose bool
	Debug   bool

	// Color enables lipgloss styling
	Color bool
}

// Terminal writes lines to the user. It is safe for concurrent use.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	verbose bool
	debug   bool
	color   bool

	highlight lipgloss.Style
	muted     lipgloss.Style
	warning   lipgloss.Style
	failure   lipgloss.Style
}

// New creates a Terminal
func New(opts Options) *Terminal {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	outRenderer := lipgloss.NewRenderer(opts.Out)
	errRenderer := lipgloss.NewRenderer(opts.Err)

	return &Terminal{
		out:       opts.Out,
		err:       opts.Err,
		verbose:   opts.Verbose,
		debug:     opts.Debug,
		color:     opts.Color,
		highlight: outRenderer.NewStyle().Bold(true).Foreground(colorPrimary),
		muted:     outRenderer.NewStyle().Foreground(colorMuted),
		warning:   errRenderer.NewStyle().Foreground(colorWarning),
		failure:   errRenderer.NewStyle().Bold(true).Foreground(colorError),
	}
}

// SetVerbose enables or disables verbose lines
func (t *Terminal) SetVerbose(verbose bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.verbose = verbose
}

// SetDebug enables or disables debug lines. Debug implies verbose.
func (t *Terminal) SetDebug(debug bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.debug = debug
	if debug {
		t.verbose = true
	}
}

// IsVerbose reports whether verbose lines are written
func (t *Terminal) IsVerbose() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.verbose
}

// WriteLine writes a regular line
func (t *Terminal) WriteLine(line string) {
	t.write(t.out, line, nil)
}

// WriteVerboseLine writes a line only in verbose mode
func (t *Terminal) WriteVerboseLine(line string) {
	if !t.IsVerbose() {
		return
	}
	t.write(t.out, line, &t.muted)
}

// WriteDebugLine writes a line only in debug mode
func (t *Terminal) WriteDebugLine(line string) {
	t.mu.Lock()
	debug := t.debug
	t.mu.Unlock()
	if !debug {
		return
	}
	t.write(t.out, "[debug] "+line, &t.muted)
}

// WriteWarningLine writes a line to the error writer
func (t *Terminal) WriteWarningLine(line string) {
	t.write(t.err, line, &t.warning)
}

// WriteErrorLine writes a line to the error writer
func (t *Terminal) WriteErrorLine(line string) {
	t.write(t.err, line, &t.failure)
}

// Highlight renders s in the accent style used for names and headings
func (t *Terminal) Highlight(s string) string {
	if !t.color {
		return s
	}
	return t.highlight.Render(s)
}

func (t *Terminal) write(w io.Writer, line string, style *lipgloss.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.color && style != nil {
		line = style.Render(line)
	}
	fmt.Fprintln(w, line)
}
