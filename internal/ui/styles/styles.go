// Package styles provides shared colors and styling for the TUI.
//
// The active set follows the dark-mode flag: Use swaps every style to the
// matching palette.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ihatemodels/wprefs/internal/theme"
)

// Colors is one terminal color scheme.
type Colors struct {
	Foreground lipgloss.Color
	Background lipgloss.Color
	Accent     lipgloss.Color
	Highlight  lipgloss.Color
	On         lipgloss.Color
	Off        lipgloss.Color
	Subtle     lipgloss.Color
	Error      lipgloss.Color
	Warning    lipgloss.Color
}

// Dracula on the palette's surface for dark mode.
var DarkColors = Colors{
	Foreground: lipgloss.Color(theme.Dark.ForegroundHex),
	Background: lipgloss.Color(theme.Dark.BackgroundHex),
	Accent:     lipgloss.Color("#8BE9FD"),
	Highlight:  lipgloss.Color("#FF79C6"),
	On:         lipgloss.Color("#50FA7B"),
	Off:        lipgloss.Color("#6272A4"),
	Subtle:     lipgloss.Color("#BFBFBF"),
	Error:      lipgloss.Color("#FF5555"),
	Warning:    lipgloss.Color("#F1FA8C"),
}

var LightColors = Colors{
	Foreground: lipgloss.Color(theme.Light.ForegroundHex),
	Background: lipgloss.Color(theme.Light.BackgroundHex),
	Accent:     lipgloss.Color("#0369A1"),
	Highlight:  lipgloss.Color("#BE185D"),
	On:         lipgloss.Color("#15803D"),
	Off:        lipgloss.Color("#64748B"),
	Subtle:     lipgloss.Color("#475569"),
	Error:      lipgloss.Color("#B91C1C"),
	Warning:    lipgloss.Color("#A16207"),
}

// Active color scheme.
var Current = LightColors

// Common styles
var (
	Title    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Help     lipgloss.Style
	Label    lipgloss.Style
	On       lipgloss.Style
	Off      lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Banner   lipgloss.Style
	Version  lipgloss.Style
	Dim      lipgloss.Style
	Surface  lipgloss.Style
	Code     lipgloss.Style
)

func init() {
	Use(false)
}

// Use switches every style to the dark or light scheme.
func Use(dark bool) {
	if dark {
		Current = DarkColors
	} else {
		Current = LightColors
	}
	c := Current

	Title = lipgloss.NewStyle().
		Foreground(c.Accent).
		Bold(true)

	Item = lipgloss.NewStyle().
		Foreground(c.Foreground)

	Selected = lipgloss.NewStyle().
		Foreground(c.Highlight).
		Bold(true)

	Cursor = lipgloss.NewStyle().
		Foreground(c.Highlight).
		Bold(true)

	Help = lipgloss.NewStyle().
		Foreground(c.Subtle)

	Label = lipgloss.NewStyle().
		Foreground(c.Accent).
		Bold(true)

	On = lipgloss.NewStyle().
		Foreground(c.On).
		Bold(true)

	Off = lipgloss.NewStyle().
		Foreground(c.Off)

	Error = lipgloss.NewStyle().
		Foreground(c.Error).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(c.Warning)

	Banner = lipgloss.NewStyle().
		Foreground(c.Highlight).
		Bold(true)

	Version = lipgloss.NewStyle().
		Foreground(c.Subtle).
		Italic(true)

	Dim = lipgloss.NewStyle().
		Foreground(c.Subtle)

	Surface = lipgloss.NewStyle().
		Foreground(c.Foreground).
		Background(c.Background)

	Code = lipgloss.NewStyle().
		Foreground(c.Subtle).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c.Off).
		Padding(0, 1)
}

// Toggle renders a boolean flag.
func Toggle(v bool) string {
	if v {
		return On.Render("on")
	}
	return Off.Render("off")
}
