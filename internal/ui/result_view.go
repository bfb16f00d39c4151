package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mosaic-client/internal/result"
)

// ResultView renders the current artifact and its actions. Actions are
// enabled only while an artifact is alive.
type ResultView struct {
	localization *Localization

	card             *widget.Card
	image            *canvas.Image
	placeholder      *widget.Label
	placeholderFrame *canvas.Rectangle
	infoLabel        *widget.Label
	downloadBtn      *widget.Button
	saveAsBtn        *widget.Button
	openBtn          *widget.Button

	currentArtifact *result.Artifact
}

// NewResultView creates the result view with its action callbacks
func NewResultView(localization *Localization, onDownload, onSaveAs, onOpen func()) *ResultView {
	rv := &ResultView{localization: localization}

	rv.image = canvas.NewImageFromResource(nil)
	rv.image.FillMode = canvas.ImageFillContain
	rv.image.SetMinSize(fyne.NewSize(ResultMinSize, ResultMinSize))
	rv.image.Hide()

	rv.placeholder = widget.NewLabel(localization.GetText(KeyNoResult))
	rv.placeholder.Alignment = fyne.TextAlignCenter
	rv.placeholderFrame = canvas.NewRectangle(color.Transparent)
	rv.placeholderFrame.StrokeColor = color.Gray{Y: 160}
	rv.placeholderFrame.StrokeWidth = 1
	rv.placeholderFrame.SetMinSize(fyne.NewSize(ResultMinSize, ResultMinSize))

	rv.infoLabel = widget.NewLabel("")
	rv.infoLabel.Truncation = fyne.TextTruncateEllipsis

	rv.downloadBtn = widget.NewButton(localization.GetText(KeyDownload), onDownload)
	rv.downloadBtn.Importance = widget.HighImportance
	rv.saveAsBtn = widget.NewButton(localization.GetText(KeySaveAs), onSaveAs)
	rv.openBtn = widget.NewButton(localization.GetText(KeyOpen), onOpen)

	actions := container.NewHBox(rv.downloadBtn, rv.saveAsBtn, rv.openBtn)
	view := container.NewStack(rv.placeholderFrame, container.NewCenter(rv.placeholder), rv.image)

	rv.card = widget.NewCard(IconMosaic+" "+localization.GetText(KeyResult), "",
		container.NewBorder(nil, container.NewVBox(rv.infoLabel, actions), nil, nil, view))

	rv.SetArtifact(nil)
	return rv
}

// Container returns the view object
func (rv *ResultView) Container() fyne.CanvasObject {
	return rv.card
}

// Artifact returns the artifact currently displayed
func (rv *ResultView) Artifact() *result.Artifact {
	return rv.currentArtifact
}

// SetArtifact shows a, or clears the view when a is nil. The image is read
// from the artifact file, so it must still be alive.
func (rv *ResultView) SetArtifact(a *result.Artifact) {
	if a != nil && rv.currentArtifact != nil && a.ID == rv.currentArtifact.ID {
		return
	}
	rv.currentArtifact = a

	if a == nil {
		rv.image.File = ""
		rv.image.Hide()
		rv.placeholder.Show()
		rv.placeholderFrame.Show()
		rv.infoLabel.SetText("")
		rv.downloadBtn.Disable()
		rv.saveAsBtn.Disable()
		rv.openBtn.Disable()
		return
	}

	rv.image.File = a.Path
	rv.image.Show()
	rv.image.Refresh()
	rv.placeholder.Hide()
	rv.placeholderFrame.Hide()
	rv.infoLabel.SetText(result.DownloadFileName + MiddleDotSeparator + formatFileSize(a.Size))
	rv.downloadBtn.Enable()
	rv.saveAsBtn.Enable()
	rv.openBtn.Enable()
}

// RefreshTexts re-reads localized labels
func (rv *ResultView) RefreshTexts() {
	rv.card.SetTitle(IconMosaic + " " + rv.localization.GetText(KeyResult))
	rv.placeholder.SetText(rv.localization.GetText(KeyNoResult))
	rv.downloadBtn.SetText(rv.localization.GetText(KeyDownload))
	rv.saveAsBtn.SetText(rv.localization.GetText(KeySaveAs))
	rv.openBtn.SetText(rv.localization.GetText(KeyOpen))
}
