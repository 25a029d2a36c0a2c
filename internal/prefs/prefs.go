// Package prefs persists the user's theme choice.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) Dark() bool { return t == ThemeDark }

// Toggle flips between dark and light.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

type file struct {
	Theme Theme `toml:"theme"`
}

// Load returns the saved theme. ok is false when nothing valid was saved.
func Load(path string) (theme Theme, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return "", false, fmt.Errorf("parse %s: %w", path, err)
	}
	switch f.Theme {
	case ThemeDark, ThemeLight:
		return f.Theme, true, nil
	}
	return "", false, nil
}

// Resolve returns the saved theme, or asks ambient whether the terminal
// background is dark.
func Resolve(path string, ambient func() bool) (Theme, error) {
	theme, ok, err := Load(path)
	if ok {
		return theme, nil
	}
	if ambient != nil && ambient() {
		return ThemeDark, err
	}
	return ThemeLight, err
}

// Save records the theme choice.
func Save(path string, theme Theme) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(file{Theme: theme})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
