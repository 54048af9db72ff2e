package theme

import (
	"fmt"
	"strings"
)

// Palette is one of the two fixed color schemes.
type Palette struct {
	Name       string
	Dark       bool
	Foreground string // CSS color name
	Background string // CSS color name
	// Hex equivalents for terminal rendering.
	ForegroundHex string
	BackgroundHex string
}

var (
	Dark = Palette{
		Name:          "dark",
		Dark:          true,
		Foreground:    "white",
		Background:    "dimgrey",
		ForegroundHex: "#FFFFFF",
		BackgroundHex: "#696969",
	}

	Light = Palette{
		Name:          "light",
		Dark:          false,
		Foreground:    "black",
		Background:    "white",
		ForegroundHex: "#000000",
		BackgroundHex: "#FFFFFF",
	}
)

// PaletteFor returns Dark when isDark is set and Light otherwise.
func PaletteFor(isDark bool) Palette {
	if isDark {
		return Dark
	}
	return Light
}

var (
	textSelectors = []string{"p", "span", "h1", "h2", "h3", "h4", "h5", "div"}
	surfSelectors = []string{"nav", "div[class^='inner']", "div[class^='container']", ".card"}
)

// CSS renders the rule set for p. Rules are !important so they beat the
// page's own styling.
func CSS(p Palette) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s {color:%s !important;}\n", strings.Join(textSelectors, ", "), p.Foreground)
	fmt.Fprintf(&b, "%s {background-color: %s !important;}\n", strings.Join(surfSelectors, ", "), p.Background)
	return b.String()
}
