// Package app provides the settings TUI model.
package app

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ihatemodels/wprefs/internal/config"
	"github.com/ihatemodels/wprefs/internal/theme"
	"github.com/ihatemodels/wprefs/internal/ui/styles"
	"github.com/ihatemodels/wprefs/internal/uiconfig"
)

const banner = `
 ╻ ╻┏━┓┏━┓┏━╸┏━╸┏━┓
 ┃╻┃┣━┛┣┳┛┣╸ ┣╸ ┗━┓
 ┗┻┛╹  ╹┗╸┗━╸╹  ┗━┛`

// Menu rows.
const (
	rowAdvancedIBC = iota
	rowDarkMode
	rowQuit
)

// OptionsStore is the part of uiconfig.Store the screen uses.
type OptionsStore interface {
	Options() uiconfig.Options
	SetShowAdvancedIBCTransfer(bool)
	SetDarkMode(bool)
	Subscribe(uiconfig.Listener) func()
}

// optionsMsg signals that the options changed (a setter ran or the
// background load finished).
type optionsMsg struct{}

// Model is the settings screen.
type Model struct {
	store   OptionsStore
	sheet   *theme.Sheet
	keys    *config.Keybindings
	version string

	options uiconfig.Options
	choices []string
	cursor  int
	width   int
	height  int
	showCSS bool

	updates     chan struct{}
	done        chan struct{}
	closeOnce   *sync.Once
	unsubscribe func()
}

// New creates the settings screen. sheet may be nil, in which case the
// stylesheet preview is unavailable.
func New(s OptionsStore, sheet *theme.Sheet, kb *config.Keybindings, version string) Model {
	if kb == nil {
		kb = config.DefaultKeybindings()
	}

	updates := make(chan struct{}, 1)
	unsubscribe := s.Subscribe(func(uiconfig.Options) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	opts := s.Options()
	styles.Use(opts.ShowDarkMode)

	return Model{
		store:   s,
		sheet:   sheet,
		keys:    kb,
		version: version,
		options: opts,
		choices: []string{
			"Advanced IBC transfer",
			"Dark mode",
			"Quit",
		},
		updates:     updates,
		done:        make(chan struct{}),
		closeOnce:   &sync.Once{},
		unsubscribe: unsubscribe,
	}
}

// Close stops listening for option changes and releases a pending
// subscription command.
func (m Model) Close() {
	if m.closeOnce == nil {
		return
	}
	m.closeOnce.Do(func() {
		m.unsubscribe()
		close(m.done)
	})
}

// Options returns the options the screen last rendered.
func (m Model) Options() uiconfig.Options {
	return m.options
}

func (m Model) waitForOptions() tea.Cmd {
	updates, done := m.updates, m.done
	return func() tea.Msg {
		select {
		case <-updates:
			return optionsMsg{}
		case <-done:
			return nil
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForOptions()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case optionsMsg:
		m.refresh()
		return m, m.waitForOptions()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		key := msg.String()
		kb := m.keys

		switch {
		case key == "ctrl+c" || config.MatchesAny(key, kb.Global.Quit, kb.Global.QuitAlt):
			return m, tea.Quit
		case config.MatchesAny(key, kb.Global.MoveUp, kb.Global.MoveUpAlt):
			if m.cursor > 0 {
				m.cursor--
			}
		case config.MatchesAny(key, kb.Global.MoveDown, kb.Global.MoveDownAlt):
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case config.Matches(key, kb.Settings.DarkMode):
			m.toggle(rowDarkMode)
		case config.Matches(key, kb.Settings.AdvancedIBC):
			m.toggle(rowAdvancedIBC)
		case config.Matches(key, kb.Settings.ShowCSS):
			m.showCSS = !m.showCSS
		case config.MatchesAny(key, kb.Settings.Toggle, kb.Settings.ToggleAlt):
			if m.cursor == rowQuit {
				return m, tea.Quit
			}
			m.toggle(m.cursor)
		}
	}
	return m, nil
}

func (m *Model) toggle(row int) {
	switch row {
	case rowAdvancedIBC:
		m.store.SetShowAdvancedIBCTransfer(!m.options.ShowAdvancedIBCTransfer)
	case rowDarkMode:
		m.store.SetDarkMode(!m.options.ShowDarkMode)
	default:
		return
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.options = m.store.Options()
	styles.Use(m.options.ShowDarkMode)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content strings.Builder

	content.WriteString(styles.Banner.Render(banner))
	content.WriteString("\n")
	content.WriteString(styles.Version.Render(fmt.Sprintf("v%s", m.version)))
	content.WriteString("\n\n")

	content.WriteString(styles.Title.Render("Wallet UI settings"))
	content.WriteString("\n\n")

	for i, choice := range m.choices {
		line := choice
		switch i {
		case rowAdvancedIBC:
			line = fmt.Sprintf("%-24s %s", choice, styles.Toggle(m.options.ShowAdvancedIBCTransfer))
		case rowDarkMode:
			line = fmt.Sprintf("%-24s %s", choice, styles.Toggle(m.options.ShowDarkMode))
		}

		if m.cursor == i {
			cursor := styles.Cursor.Render("▸ ")
			content.WriteString(styles.Selected.Render(cursor + line))
		} else {
			content.WriteString(styles.Item.Render("  " + line))
		}
		content.WriteString("\n")
	}

	if m.options.ShowAdvancedIBCTransfer {
		content.WriteString("\n")
		content.WriteString(styles.Warning.Render("  Advanced IBC transfer needs the counterparty channel set by hand."))
		content.WriteString("\n")
	}

	if m.showCSS && m.sheet != nil {
		css := strings.TrimSpace(m.sheet.String())
		if css == "" {
			css = "(no theme applied yet)"
		}
		content.WriteString("\n")
		content.WriteString(styles.Code.Render(css))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	kb := m.keys
	content.WriteString(styles.Help.Render(fmt.Sprintf("↑/%s up • ↓/%s down • %s toggle • %s dark • %s advanced • %s css • %s quit",
		kb.Global.MoveUp, kb.Global.MoveDown, kb.Settings.Toggle, kb.Settings.DarkMode,
		kb.Settings.AdvancedIBC, kb.Settings.ShowCSS, kb.Global.QuitAlt)))

	return styles.Surface.
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content.String())
}
