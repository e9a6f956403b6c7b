// Package ui provides the Bubble Tea terminal interface for Food Explorer.
package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors shared across pages.
var (
	ColorPrimary = lipgloss.Color("#8BC34A") // lime green
	ColorAccent  = lipgloss.Color("#2196F3") // blue
	ColorError   = lipgloss.Color("#e53935") // red
	ColorWarning = lipgloss.Color("#FFC107") // yellow
	ColorMuted   = lipgloss.Color("240")
)

// Nutrition grade colors, a (best) through e (worst).
var gradeColors = map[string]lipgloss.Color{
	"a": lipgloss.Color("#4CAF50"),
	"b": lipgloss.Color("#8BC34A"),
	"c": lipgloss.Color("#FFC107"),
	"d": lipgloss.Color("#FF9800"),
	"e": lipgloss.Color("#e53935"),
}

// Styles holds the style set used by all pages.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Badge    lipgloss.Style
	Footer   lipgloss.Style
	Spinner  lipgloss.Style
}

// DefaultStyles returns the default style set.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Header:   lipgloss.NewStyle().Foreground(ColorAccent),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		Normal:   lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(ColorMuted),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(ColorError),
		Success:  lipgloss.NewStyle().Foreground(ColorPrimary),
		Badge:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(ColorAccent).Padding(0, 1),
		Footer:   lipgloss.NewStyle().Foreground(ColorMuted),
		Spinner:  lipgloss.NewStyle().Foreground(ColorWarning),
	}
}

// GradeBadge renders a colored one-letter nutrition grade, "?" for unknown.
func (s Styles) GradeBadge(grade string) string {
	if grade == "" {
		return s.Muted.Render("?")
	}
	color, ok := gradeColors[grade]
	if !ok {
		return s.Muted.Render(grade)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(grade)
}
