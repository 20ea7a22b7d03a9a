package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorBorder    = lipgloss.Color("33")  // blue
	ColorHighlight = lipgloss.Color("24")  // dark blue background
	ColorText      = lipgloss.Color("15")  // bright white
	ColorAccent    = lipgloss.Color("214") // orange
	ColorTextDim   = lipgloss.Color("241") // gray
	ColorError     = lipgloss.Color("196") // red
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorHighlight).
			Padding(0, 1)

	NormalStyle = lipgloss.NewStyle().Foreground(ColorText)
	DimStyle    = lipgloss.NewStyle().Foreground(ColorTextDim)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorError).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// ApplyTableStyles sets header and selection styles on t
func ApplyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ColorText).
		Background(ColorHighlight).
		Bold(false)
	t.SetStyles(s)
}

// NewAppSpinner returns the spinner shown while the address list loads
func NewAppSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(AccentStyle),
	)
}
