package config

import (
	"context"
	"errors"
	"strings"

	"github.com/ihatemodels/wprefs/internal/store"
)

// KeybindingsKey is the storage key of the keybindings document.
const KeybindingsKey = "keybindings"

// KV is the storage capability keybindings are persisted through.
type KV interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
}

// Keybindings holds all configurable keyboard shortcuts.
// Keys use Bubble Tea key string format (e.g., "ctrl+s", "enter", "esc").
type Keybindings struct {
	// Global keybindings (work in every view)
	Global GlobalKeys `json:"global"`

	// Settings screen keybindings
	Settings SettingsKeys `json:"settings"`
}

// GlobalKeys are keybindings that work across views.
type GlobalKeys struct {
	Quit        string `json:"quit"`          // Quit
	QuitAlt     string `json:"quit_alt"`      // Alternative quit key
	MoveUp      string `json:"move_up"`       // Move cursor up
	MoveDown    string `json:"move_down"`     // Move cursor down
	MoveUpAlt   string `json:"move_up_alt"`   // Alternative move up (arrow key)
	MoveDownAlt string `json:"move_down_alt"` // Alternative move down (arrow key)
}

// SettingsKeys are keybindings for the settings screen.
type SettingsKeys struct {
	Toggle      string `json:"toggle"`       // Toggle the selected flag
	ToggleAlt   string `json:"toggle_alt"`   // Alternative toggle key
	DarkMode    string `json:"dark_mode"`    // Toggle dark mode directly
	AdvancedIBC string `json:"advanced_ibc"` // Toggle advanced IBC transfer directly
	ShowCSS     string `json:"show_css"`     // Show/hide the applied stylesheet
}

// DefaultKeybindings returns the default keybinding configuration.
func DefaultKeybindings() *Keybindings {
	return &Keybindings{
		Global: GlobalKeys{
			Quit:        "esc",
			QuitAlt:     "q",
			MoveUp:      "k",
			MoveDown:    "j",
			MoveUpAlt:   "up",
			MoveDownAlt: "down",
		},
		Settings: SettingsKeys{
			Toggle:      "enter",
			ToggleAlt:   " ",
			DarkMode:    "d",
			AdvancedIBC: "a",
			ShowCSS:     "c",
		},
	}
}

// LoadKeybindings loads keybindings from kv.
// If none are stored yet, it stores and returns the defaults.
func LoadKeybindings(ctx context.Context, kv KV) (*Keybindings, error) {
	var kb Keybindings

	err := kv.Get(ctx, KeybindingsKey, &kb)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Nothing stored yet, create with defaults
			kb = *DefaultKeybindings()
			if err := SaveKeybindings(ctx, kv, &kb); err != nil {
				return nil, err
			}
			return &kb, nil
		}
		return nil, err
	}

	// Merge with defaults to ensure new fields are populated
	kb = mergeWithDefaults(&kb)

	return &kb, nil
}

// SaveKeybindings saves keybindings to kv.
func SaveKeybindings(ctx context.Context, kv KV, kb *Keybindings) error {
	return kv.Set(ctx, KeybindingsKey, kb)
}

// mergeWithDefaults fills in any missing keybindings with defaults.
// This handles cases where new keybindings are added in updates.
func mergeWithDefaults(kb *Keybindings) Keybindings {
	defaults := DefaultKeybindings()
	result := *kb

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}

	// Global
	fill(&result.Global.Quit, defaults.Global.Quit)
	fill(&result.Global.QuitAlt, defaults.Global.QuitAlt)
	fill(&result.Global.MoveUp, defaults.Global.MoveUp)
	fill(&result.Global.MoveDown, defaults.Global.MoveDown)
	fill(&result.Global.MoveUpAlt, defaults.Global.MoveUpAlt)
	fill(&result.Global.MoveDownAlt, defaults.Global.MoveDownAlt)

	// Settings
	fill(&result.Settings.Toggle, defaults.Settings.Toggle)
	fill(&result.Settings.ToggleAlt, defaults.Settings.ToggleAlt)
	fill(&result.Settings.DarkMode, defaults.Settings.DarkMode)
	fill(&result.Settings.AdvancedIBC, defaults.Settings.AdvancedIBC)
	fill(&result.Settings.ShowCSS, defaults.Settings.ShowCSS)

	return result
}

// Matches checks if a key string matches a keybinding.
// It handles shift+letter bindings by converting them to uppercase.
// For example, "shift+a" in config matches "A" from Bubble Tea.
func Matches(key string, binding string) bool {
	return key == normalizeBinding(binding)
}

// MatchesAny checks if a key matches any of the provided bindings.
func MatchesAny(key string, bindings ...string) bool {
	for _, b := range bindings {
		if key == normalizeBinding(b) {
			return true
		}
	}
	return false
}

// normalizeBinding converts a binding string to match Bubble Tea's key format.
// Specifically, "shift+x" becomes "X" for letter keys.
func normalizeBinding(binding string) string {
	// Handle shift+letter -> uppercase letter
	if strings.HasPrefix(binding, "shift+") {
		letter := strings.TrimPrefix(binding, "shift+")
		if len(letter) == 1 && letter[0] >= 'a' && letter[0] <= 'z' {
			return strings.ToUpper(letter)
		}
	}
	return binding
}
