package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Console prints user-facing status lines. Styling is dropped automatically
// when w is not a color terminal.
type Console struct {
	w      io.Writer
	styles *Styles
}

// NewConsole creates a console writing to w
func NewConsole(w io.Writer) *Console {
	return &Console{
		w:      w,
		styles: NewStyles(lipgloss.NewRenderer(w)),
	}
}

// Step prints a numbered startup step, e.g. "[1/5] Cleaning up..."
func (c *Console) Step(n, total int, format string, a ...interface{}) {
	prefix := c.styles.Step.Render(fmt.Sprintf("[%d/%d]", n, total))
	fmt.Fprintf(c.w, "%s %s\n", prefix, fmt.Sprintf(format, a...))
}

// Info prints a plain line
func (c *Console) Info(format string, a ...interface{}) {
	fmt.Fprintf(c.w, format+"\n", a...)
}

// Success prints a highlighted confirmation
func (c *Console) Success(format string, a ...interface{}) {
	fmt.Fprintln(c.w, c.styles.Success.Render(fmt.Sprintf(format, a...)))
}

// Warn prints "Warning: <msg>"
func (c *Console) Warn(format string, a ...interface{}) {
	fmt.Fprintln(c.w, c.styles.Warning.Render("Warning: "+fmt.Sprintf(format, a...)))
}

// Error prints "ERROR: <msg>"
func (c *Console) Error(format string, a ...interface{}) {
	fmt.Fprintln(c.w, c.styles.Error.Render("ERROR: "+fmt.Sprintf(format, a...)))
}

// NowPlaying announces a newly detected track
func (c *Console) NowPlaying(artist, title string) {
	fmt.Fprintln(c.w, c.styles.NowPlaying.Render(fmt.Sprintf("Now Playing: %s - %s", artist, title)))
}

// Muted prints a de-emphasized line
func (c *Console) Muted(format string, a ...interface{}) {
	fmt.Fprintln(c.w, c.styles.Muted.Render(fmt.Sprintf(format, a...)))
}

// Prompt prints text without a trailing newline
func (c *Console) Prompt(text string) {
	fmt.Fprint(c.w, text)
}
