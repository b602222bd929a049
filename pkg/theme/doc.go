// Package theme defines the light/dark display modes, their fixed diagram
// palettes, and the persisted theme preference.
//
// # Palettes
//
// [PaletteFor] is a pure, total mapping from a [Theme] to one of two
// constant [Palette] values. The light and dark palettes share no colors.
//
//	p := theme.PaletteFor(theme.Dark)
//	fmt.Println(p.Background) // #0d1117
//
// # Preference
//
// A [Preference] is initialised once at startup and written through to a
// [Store] on every change:
//
//	store, _ := theme.NewFileStore("")
//	pref, err := theme.Init(ctx, store, theme.Detect())
//	next, err := pref.Toggle(ctx)
//
// Components never read the preference implicitly; the current value is
// passed to them as an argument.
package theme
