package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/incept5/eve-showcase/pkg/errors"
)

// Theme is a display mode controlling both page chrome and diagram palette.
type Theme string

// Supported themes.
const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is used when no preference, environment value or terminal hint
// is available.
const Default = Dark

// All lists every valid theme in display order.
var All = []Theme{Light, Dark}

// Parse converts a user-supplied string into a Theme.
// Matching is case-insensitive and ignores surrounding whitespace.
func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", errors.New(errors.ErrCodeInvalidTheme, "invalid theme: %q (must be 'light' or 'dark')", s)
}

// Valid reports whether t is one of the supported themes.
func (t Theme) Valid() bool {
	return t == Light || t == Dark
}

// Toggle returns the opposite theme. Invalid values toggle to Light so
// that a toggle always lands on a valid theme.
func (t Theme) Toggle() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// String returns the literal token ("light" or "dark").
func (t Theme) String() string {
	return string(t)
}

// Detect guesses the theme from the terminal background, the CLI analogue
// of a browser's prefers-color-scheme.
func Detect() Theme {
	if lipgloss.HasDarkBackground() {
		return Dark
	}
	return Light
}
