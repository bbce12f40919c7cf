package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// SeverityStyle colors a tremor status: green for Bajo through red for Alto.
func SeverityStyle(status domain.TremorStatus) lipgloss.Style {
	switch status {
	case domain.StatusAlto:
		return StyleRed
	case domain.StatusModerado:
		return StyleYellow
	case domain.StatusBajo:
		return StyleGreen
	default:
		return StyleDim
	}
}

// SeverityPill returns a colored indicator such as "● Moderado".
func SeverityPill(status domain.TremorStatus) string {
	if status == "" {
		return StyleDim.Render("○ --")
	}
	return SeverityStyle(status).Render("● " + string(status))
}

// StatePill renders the tracker state.
func StatePill(state domain.TrackerState) string {
	switch state {
	case domain.StateActive:
		return StyleGreen.Render("● Recording")
	case domain.StatePaused:
		return StyleYellow.Render("○ Paused")
	default:
		return StyleDim.Render("· Idle")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len([]rune(upper)))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
