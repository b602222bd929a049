package theme

// Palette is the fixed color configuration handed to the diagram renderer.
// All values are #rrggbb hex strings.
type Palette struct {
	Background string `json:"bg"`
	Foreground string `json:"fg"`
	Line       string `json:"line"`
	Accent     string `json:"accent"`
	Muted      string `json:"muted"`
	Surface    string `json:"surface"`
	Border     string `json:"border"`

	// Transparent renders without a filled background so the diagram
	// blends into its container.
	Transparent bool `json:"transparent"`
}

var lightPalette = Palette{
	Background:  "#f8fafc",
	Foreground:  "#1e293b",
	Line:        "#3b82f6",
	Accent:      "#2563eb",
	Muted:       "#64748b",
	Surface:     "#ffffff",
	Border:      "#cbd5e1",
	Transparent: true,
}

var darkPalette = Palette{
	Background:  "#0d1117",
	Foreground:  "#c9d1d9",
	Line:        "#388bfd",
	Accent:      "#58a6ff",
	Muted:       "#8b949e",
	Surface:     "#161b22",
	Border:      "#30363d",
	Transparent: true,
}

// PaletteFor returns the palette for t. Palettes are returned by value, so
// callers cannot mutate the shared constants. Anything other than Dark maps
// to the light palette.
func PaletteFor(t Theme) Palette {
	if t == Dark {
		return darkPalette
	}
	return lightPalette
}

// Colors returns the palette's colors in a fixed order
// (bg, fg, line, accent, muted, surface, border).
func (p Palette) Colors() []string {
	return []string{p.Background, p.Foreground, p.Line, p.Accent, p.Muted, p.Surface, p.Border}
}
