package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mosaic-client/internal/model"
)

// ParametersPanel binds the submission parameters to sliders and a check
type ParametersPanel struct {
	localization *Localization
	onChange     func(model.SubmissionParameters)

	params model.SubmissionParameters

	tileSizeLabel *widget.Label
	tileSize      *widget.Slider
	blendLabel    *widget.Label
	blend         *widget.Slider
	maxWidthLabel *widget.Label
	maxWidth      *widget.Slider
	noRepeat      *widget.Check

	container *fyne.Container
}

// NewParametersPanel creates the panel with initial values; onChange
// receives every edit
func NewParametersPanel(localization *Localization, initial model.SubmissionParameters, onChange func(model.SubmissionParameters)) *ParametersPanel {
	pp := &ParametersPanel{
		localization: localization,
		params:       initial.Clamped(),
	}

	pp.tileSizeLabel = widget.NewLabel("")
	pp.tileSize = widget.NewSlider(model.MinTileSize, model.MaxTileSize)
	pp.tileSize.Step = model.TileSizeStep

	pp.blendLabel = widget.NewLabel("")
	pp.blend = widget.NewSlider(model.MinBlend, model.MaxBlend)
	pp.blend.Step = model.BlendStep

	pp.maxWidthLabel = widget.NewLabel("")
	pp.maxWidth = widget.NewSlider(model.MinMaxWidth, model.MaxMaxWidth)
	pp.maxWidth.Step = model.MaxWidthStep

	pp.noRepeat = widget.NewCheck(localization.GetText(KeyNoImmediateRepeat), nil)

	// Set values before wiring callbacks so the initial values are not echoed back
	pp.setWidgets(pp.params)

	pp.tileSize.OnChanged = func(v float64) {
		pp.params.TileSize = int(v)
		pp.changed()
	}
	pp.blend.OnChanged = func(v float64) {
		pp.params.Blend = v
		pp.changed()
	}
	pp.maxWidth.OnChanged = func(v float64) {
		pp.params.MaxWidth = int(v)
		pp.changed()
	}
	pp.noRepeat.OnChanged = func(checked bool) {
		pp.params.NoImmediateRepeat = checked
		pp.changed()
	}
	pp.onChange = onChange

	pp.container = container.NewVBox(
		pp.tileSizeLabel, pp.tileSize,
		pp.blendLabel, pp.blend,
		pp.maxWidthLabel, pp.maxWidth,
		pp.noRepeat,
	)
	return pp
}

// Container returns the panel object
func (pp *ParametersPanel) Container() fyne.CanvasObject {
	return pp.container
}

// Parameters returns the values currently shown
func (pp *ParametersPanel) Parameters() model.SubmissionParameters {
	return pp.params
}

// RefreshTexts re-reads localized labels
func (pp *ParametersPanel) RefreshTexts() {
	pp.noRepeat.Text = pp.localization.GetText(KeyNoImmediateRepeat)
	pp.noRepeat.Refresh()
	pp.updateLabels()
}

func (pp *ParametersPanel) setWidgets(p model.SubmissionParameters) {
	pp.tileSize.SetValue(float64(p.TileSize))
	pp.blend.SetValue(p.Blend)
	pp.maxWidth.SetValue(float64(p.MaxWidth))
	pp.noRepeat.SetChecked(p.NoImmediateRepeat)
	pp.updateLabels()
}

func (pp *ParametersPanel) changed() {
	pp.params = pp.params.Clamped()
	pp.updateLabels()
	if pp.onChange != nil {
		pp.onChange(pp.params)
	}
}

func (pp *ParametersPanel) updateLabels() {
	l := pp.localization
	pp.tileSizeLabel.SetText(fmt.Sprintf(l.GetText(KeyTileSize), pp.params.TileSize))
	pp.blendLabel.SetText(fmt.Sprintf(l.GetText(KeyBlend), pp.params.Blend))
	pp.maxWidthLabel.SetText(fmt.Sprintf(l.GetText(KeyMaxWidth), pp.params.MaxWidth))
}
