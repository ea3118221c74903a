package app

import (
	"image/color"

	"image-compositor/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// CompositorTheme tints the default theme with the overlay colour.
type CompositorTheme struct{}

var _ fyne.Theme = (*CompositorTheme)(nil)

func (t *CompositorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return colorutil.HandleStroke
	case theme.ColorNameInputBorder:
		return color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF} // Dashed drop-zone border
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *CompositorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *CompositorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *CompositorTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameInputRadius {
		return 8
	}
	return theme.DefaultTheme().Size(name)
}
