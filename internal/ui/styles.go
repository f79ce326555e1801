// internal/ui/styles.go
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"writon/internal/provider"
	"writon/internal/session"
	"writon/internal/stats"
)

var (
	// Colors
	Cyan     = lipgloss.Color("#00FFFF")
	Green    = lipgloss.Color("#00FF00")
	Yellow   = lipgloss.Color("#FFD700")
	Orange   = lipgloss.Color("#FFA500")
	Red      = lipgloss.Color("#FF6B6B")
	Magenta  = lipgloss.Color("#FF00FF")
	SkyBlue  = lipgloss.Color("#87CEEB")
	Dim      = lipgloss.Color("#555555")
	White    = lipgloss.Color("#FFFFFF")
	DarkGray = lipgloss.Color("#333333")

	// Box styles
	ActiveBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan)

	InactiveBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Dim)

	// Text styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SkyBlue).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(Dim)

	// Status indicators
	StatusOK   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	StatusWarn = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	StatusCrit = lipgloss.NewStyle().Foreground(Red).Bold(true)

	// Inline change styles
	InsertStyle = lipgloss.NewStyle().Foreground(Green).Underline(true)
	DeleteStyle = lipgloss.NewStyle().Foreground(Red).Strikethrough(true)
)

// ProviderColor returns the accent color for a provider ID
func ProviderColor(id string) lipgloss.Color {
	switch id {
	case provider.Anthropic:
		return Orange
	case provider.OpenAI:
		return Green
	case provider.Google:
		return Magenta
	case provider.Groq:
		return Cyan
	default:
		return White
	}
}

// ConnectivityStyle colors the key status indicator
func ConnectivityStyle(c session.Connectivity) lipgloss.Style {
	switch c {
	case session.Connected:
		return StatusOK
	case session.Checking:
		return StatusWarn
	case session.Failed:
		return StatusCrit
	default:
		return DimStyle
	}
}

// LevelStyle colors the character meter
func LevelStyle(l stats.Level) lipgloss.Style {
	switch l {
	case stats.LevelOver:
		return StatusCrit
	case stats.LevelWarning:
		return StatusWarn
	default:
		return DimStyle
	}
}

// overlayBox centers body in a bordered box over the full terminal
func overlayBox(width, height, padX int, body string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, padX).
		MaxWidth(width - 10).
		MaxHeight(height - 4)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(body))
}
