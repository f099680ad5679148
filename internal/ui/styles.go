package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the console styling
type Styles struct {
	Step       lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	NowPlaying lipgloss.Style
	Muted      lipgloss.Style
}

// NewStyles creates styles bound to renderer r
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Step: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")),

		Success: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575")),

		Warning: r.NewStyle().
			Foreground(lipgloss.Color("#FFB86C")),

		Error: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87")),

		NowPlaying: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")),

		Muted: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}
