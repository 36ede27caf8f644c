package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// sawfitTheme is the default theme with denser sizing, so a long piece list
// and the board fit on one screen.
type sawfitTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	follow  bool // use the variant the system asks for
}

// newTheme maps the config's theme name (system, light or dark) to a theme.
func newTheme(name string) *sawfitTheme {
	t := &sawfitTheme{base: theme.DefaultTheme(), follow: true}
	switch name {
	case "light":
		t.variant, t.follow = theme.VariantLight, false
	case "dark":
		t.variant, t.follow = theme.VariantDark, false
	}
	return t
}

func (t *sawfitTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if !t.follow {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

func (t *sawfitTheme) Font(style fyne.TextStyle) fyne.Resource { return t.base.Font(style) }
func (t *sawfitTheme) Icon(name fyne.ThemeIconName) fyne.Resource { return t.base.Icon(name) }

func (t *sawfitTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	default:
		return t.base.Size(name)
	}
}
