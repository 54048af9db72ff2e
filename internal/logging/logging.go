// Package logging builds the charm logger shared by the CLI and the stores.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ihatemodels/wprefs/internal/ui/styles"
)

// Options controls the logger level and decoration.
type Options struct {
	Verbose bool
	Quiet   bool
	NoColor bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}
	if opts.Quiet {
		level = log.WarnLevel
	}

	st := log.DefaultStyles()
	if !opts.NoColor && os.Getenv("NO_COLOR") == "" {
		st.Levels[log.DebugLevel] = lipgloss.NewStyle().
			SetString("DEBUG").
			Foreground(adaptive(styles.LightColors.Subtle, styles.DarkColors.Subtle)).
			Bold(true)
		st.Levels[log.InfoLevel] = lipgloss.NewStyle().
			SetString("INFO").
			Foreground(adaptive(styles.LightColors.Accent, styles.DarkColors.Accent)).
			Bold(true)
		st.Levels[log.WarnLevel] = lipgloss.NewStyle().
			SetString("WARN").
			Foreground(adaptive(styles.LightColors.Warning, styles.DarkColors.Warning)).
			Bold(true)
		st.Levels[log.ErrorLevel] = lipgloss.NewStyle().
			SetString("ERROR").
			Foreground(adaptive(styles.LightColors.Error, styles.DarkColors.Error)).
			Bold(true)
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: opts.Verbose,
		TimeFormat:      time.Kitchen,
		Level:           level,
		Prefix:          "wprefs",
	})
	logger.SetStyles(st)
	return logger
}

// adaptive picks the light or dark scheme color from the terminal background.
func adaptive(light, dark lipgloss.Color) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: string(light), Dark: string(dark)}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
