package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Layout sizes the theme is tuned around. The preview grid puts
// TilePreviewCols thumbnails in a row with a hairline gap, and the inputs
// column and the result card share the window side by side.
const (
	previewGap        = 2
	cardPadding       = 5
	cardHeadingText   = 15
	pickerIconSize    = 16
	previewFrameWidth = 1
)

// TileGridWidth is the width of one full row of tile previews
func TileGridWidth() float32 {
	return TilePreviewCols*TilePreviewSize + (TilePreviewCols-1)*previewGap
}

var mosaicSizes = map[fyne.ThemeSizeName]float32{
	theme.SizeNamePadding:            previewGap,
	theme.SizeNameInnerPadding:       cardPadding,
	theme.SizeNameLineSpacing:        3,
	theme.SizeNameText:               13,
	theme.SizeNameHeadingText:        cardHeadingText,
	theme.SizeNameSubHeadingText:     12,
	theme.SizeNameCaptionText:        11,
	theme.SizeNameInlineIcon:         pickerIconSize,
	theme.SizeNameSeparatorThickness: previewFrameWidth,
	theme.SizeNameScrollBar:          10,
	theme.SizeNameScrollBarSmall:     4,
	theme.SizeNameInputRadius:        6,
	theme.SizeNameSelectionRadius:    4,
}

type palette map[fyne.ThemeColorName]color.Color

// Shadows are kept faint: two cards sit next to each other and a full
// shadow between them reads as a gutter.
var mosaicPalettes = map[fyne.ThemeVariant]palette{
	theme.VariantLight: {
		theme.ColorNamePrimary:         color.NRGBA{R: 0, G: 121, B: 107, A: 255},
		theme.ColorNameSuccess:         color.NRGBA{R: 46, G: 125, B: 50, A: 255},
		theme.ColorNameError:           color.NRGBA{R: 198, G: 40, B: 40, A: 255},
		theme.ColorNameBackground:      color.NRGBA{R: 244, G: 243, B: 239, A: 255},
		theme.ColorNameInputBackground: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		theme.ColorNameSeparator:       color.NRGBA{R: 214, G: 211, B: 204, A: 255},
		theme.ColorNameSelection:       color.NRGBA{R: 0, G: 121, B: 107, A: 64},
		theme.ColorNameShadow:          color.NRGBA{R: 0, G: 0, B: 0, A: 24},
	},
	theme.VariantDark: {
		theme.ColorNamePrimary:         color.NRGBA{R: 38, G: 166, B: 154, A: 255},
		theme.ColorNameSuccess:         color.NRGBA{R: 102, G: 187, B: 106, A: 255},
		theme.ColorNameError:           color.NRGBA{R: 239, G: 83, B: 80, A: 255},
		theme.ColorNameBackground:      color.NRGBA{R: 24, G: 25, B: 27, A: 255},
		theme.ColorNameInputBackground: color.NRGBA{R: 34, G: 36, B: 38, A: 255},
		theme.ColorNameSeparator:       color.NRGBA{R: 52, G: 55, B: 58, A: 255},
		theme.ColorNameSelection:       color.NRGBA{R: 38, G: 166, B: 154, A: 72},
		theme.ColorNameShadow:          color.NRGBA{R: 0, G: 0, B: 0, A: 64},
	},
}

// MosaicTheme is the default theme with sizes and colors tuned for the
// preview grid and the side-by-side cards
type MosaicTheme struct{}

// NewMosaicTheme creates the application theme
func NewMosaicTheme() fyne.Theme {
	return &MosaicTheme{}
}

// Color returns the palette color for variant, falling back to the default theme
func (t *MosaicTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if c, ok := mosaicPalettes[variant][name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *MosaicTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *MosaicTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns the tuned size, falling back to the default theme
func (t *MosaicTheme) Size(name fyne.ThemeSizeName) float32 {
	if s, ok := mosaicSizes[name]; ok {
		return s
	}
	return theme.DefaultTheme().Size(name)
}
