package styles

import "github.com/charmbracelet/lipgloss"

// Monokai Pro color palette
const (
	Background = "#2D2A2E"
	Foreground = "#FCFCFA"

	Red     = "#FF6188" // Errors
	Orange  = "#FC9867" // Skipped pages
	Yellow  = "#FFD866" // Highlights
	Green   = "#A9DC76" // Generated pages
	Cyan    = "#78DCE8" // Paths
	Magenta = "#AB9DF2" // Titles

	Comment = "#727072" // Dim text, help
	Border  = "#5B595C"
)

// Common styles
var (
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
	WarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	DimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	PathStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Cyan))
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Magenta))
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Yellow)).Bold(true)
	SpinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Magenta))
	HelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(Magenta))

	TableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(Border))

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Background)).
			Background(lipgloss.Color(Yellow))
)

// Status marks used when listing pages
const (
	MarkGenerated = "✓"
	MarkSkipped   = "○"
	MarkError     = "✗"
)

// PageMark returns the styled status mark for a page outcome
func PageMark(err error, skipped bool) string {
	switch {
	case err != nil:
		return ErrorStyle.Render(MarkError)
	case skipped:
		return WarningStyle.Render(MarkSkipped)
	default:
		return SuccessStyle.Render(MarkGenerated)
	}
}
