package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// Theme defines the colour palette for terminal reports.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success marks valid counts and completed runs.
	Success lipgloss.Color

	// Warning marks truncation and cancellation.
	Warning lipgloss.Color

	// Error marks invalid counts and failed runs.
	Error lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Label style for field names.
	Label lipgloss.Style

	// Muted style for locations and hints.
	Muted lipgloss.Style

	// Success style for valid counts.
	Success lipgloss.Style

	// Warning style for truncation notes.
	Warning lipgloss.Style

	// Error style for invalid counts and reasons.
	Error lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Label: lipgloss.NewStyle().
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		theme:   DefaultTheme(),
		Title:   plain,
		Label:   plain,
		Muted:   plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
	}
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Status renders a run status in its colour.
func (s *Styles) Status(status domain.RunStatus) string {
	switch status {
	case domain.RunCompleted:
		return s.Success.Render(status.String())
	case domain.RunCancelled, domain.RunCancelling:
		return s.Warning.Render(status.String())
	case domain.RunFailed:
		return s.Error.Render(status.String())
	default:
		return status.String()
	}
}
