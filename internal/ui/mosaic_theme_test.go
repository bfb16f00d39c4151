package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
)

func TestMosaicTheme_Sizes(t *testing.T) {
	th := NewMosaicTheme()

	tests := []struct {
		name     fyne.ThemeSizeName
		expected float32
	}{
		{theme.SizeNamePadding, previewGap},
		{theme.SizeNameInnerPadding, cardPadding},
		{theme.SizeNameHeadingText, cardHeadingText},
		{theme.SizeNameInlineIcon, pickerIconSize},
		{theme.SizeNameSeparatorThickness, previewFrameWidth},
		{theme.SizeNameWindowTitleBarHeight, theme.DefaultTheme().Size(theme.SizeNameWindowTitleBarHeight)},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			assert.Equal(t, tt.expected, th.Size(tt.name))
		})
	}
}

func TestMosaicTheme_Colors(t *testing.T) {
	th := NewMosaicTheme()

	for _, variant := range []fyne.ThemeVariant{theme.VariantLight, theme.VariantDark} {
		assert.Equal(t, mosaicPalettes[variant][theme.ColorNamePrimary], th.Color(theme.ColorNamePrimary, variant))
		assert.Equal(t, theme.DefaultTheme().Color(theme.ColorNameHyperlink, variant), th.Color(theme.ColorNameHyperlink, variant))
	}
	assert.NotEqual(t,
		th.Color(theme.ColorNameBackground, theme.VariantLight),
		th.Color(theme.ColorNameBackground, theme.VariantDark))
}

func TestTileGridWidth(t *testing.T) {
	assert.Equal(t, float32(4*64+3*2), TileGridWidth())
	assert.Less(t, TileGridWidth(), WindowWidth*RootSplitOffset, "a full preview row fits the inputs column")
}

func TestTilesPanel_KeepsRowWidth(t *testing.T) {
	test.NewTempApp(t)
	tp := NewTilesPanel(NewLocalization(), nil, nil)

	assert.GreaterOrEqual(t, tp.Container().MinSize().Width, TileGridWidth())
}
