package content

import "github.com/incept5/eve-showcase/pkg/theme"

// DefaultColor is used for capabilities with an unknown color name.
const DefaultColor = "blue"

type accentPair struct{ light, dark string }

var accents = map[string]accentPair{
	"blue":    {"#3b82f6", "#60a5fa"},
	"green":   {"#22c55e", "#4ade80"},
	"purple":  {"#a855f7", "#c084fc"},
	"orange":  {"#f97316", "#fb923c"},
	"cyan":    {"#06b6d4", "#22d3ee"},
	"amber":   {"#f59e0b", "#fbbf24"},
	"red":     {"#ef4444", "#f87171"},
	"teal":    {"#14b8a6", "#2dd4bf"},
	"indigo":  {"#6366f1", "#818cf8"},
	"slate":   {"#94a3b8", "#cbd5e1"},
	"violet":  {"#8b5cf6", "#a78bfa"},
	"pink":    {"#ec4899", "#f472b6"},
	"emerald": {"#10b981", "#34d399"},
	"lime":    {"#84cc16", "#a3e635"},
	"sky":     {"#0ea5e9", "#38bdf8"},
	"rose":    {"#f43f5e", "#fb7185"},
	"fuchsia": {"#d946ef", "#e879f9"},
	"yellow":  {"#eab308", "#facc15"},
	"stone":   {"#a8a29e", "#d6d3d1"},
	"zinc":    {"#a1a1aa", "#d4d4d8"},
}

// Accent returns the hex accent for a card color name in theme t. Unknown
// names fall back to DefaultColor.
func Accent(color string, t theme.Theme) string {
	a, ok := accents[color]
	if !ok {
		a = accents[DefaultColor]
	}
	if t == theme.Dark {
		return a.dark
	}
	return a.light
}

// KnownColor reports whether color has its own accent.
func KnownColor(color string) bool {
	_, ok := accents[color]
	return ok
}
