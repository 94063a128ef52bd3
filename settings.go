package polycanyon

import (
	"context"
	"fmt"
)

// Theme selects the app color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Mode selects how the guide behaves: adventure mode tracks live location,
// virtual mode browses the canyon remotely without marking visits to disk.
type Mode string

const (
	ModeAdventure Mode = "adventure"
	ModeVirtual   Mode = "virtual"
)

// Preference keys in the PrefStore.
const (
	prefThemeKey = "theme"
	prefModeKey  = "mode"
)

// Settings are the persisted user preferences.
type Settings struct {
	Theme Theme
	Mode  Mode
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeSystem, Mode: ModeAdventure}
}

// ParseTheme validates a theme string.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark, ThemeSystem:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q (want light, dark or system)", s)
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAdventure, ModeVirtual:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want adventure or virtual)", s)
}

// LoadSettings reads preferences from the store, falling back to defaults for
// missing or invalid values. Invalid stored values are not an error: a stale
// preference from an older build should not brick startup.
func LoadSettings(ctx context.Context, store PrefStore) (Settings, error) {
	s := DefaultSettings()

	if v, ok, err := store.GetPref(ctx, prefThemeKey); err != nil {
		return s, fmt.Errorf("reading theme: %w", err)
	} else if ok {
		if t, perr := ParseTheme(v); perr == nil {
			s.Theme = t
		}
	}

	if v, ok, err := store.GetPref(ctx, prefModeKey); err != nil {
		return s, fmt.Errorf("reading mode: %w", err)
	} else if ok {
		if m, perr := ParseMode(v); perr == nil {
			s.Mode = m
		}
	}
	return s, nil
}

// Save writes the preferences to the store.
func (s Settings) Save(ctx context.Context, store PrefStore) error {
	if _, err := ParseTheme(string(s.Theme)); err != nil {
		return err
	}
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if err := store.SetPref(ctx, prefThemeKey, string(s.Theme)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	if err := store.SetPref(ctx, prefModeKey, string(s.Mode)); err != nil {
		return fmt.Errorf("saving mode: %w", err)
	}
	return nil
}
