package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mosaic-client/internal/model"
	"github.com/ytget/mosaic-client/internal/preview"
	"github.com/ytget/mosaic-client/internal/selection"
)

// TargetPanel shows the target image picker and its preview. The whole
// card is the target drop zone.
type TargetPanel struct {
	localization *Localization

	card      *widget.Card
	hintLabel *widget.Label
	nameLabel *widget.Label
	chooseBtn *widget.Button
	image     *canvas.Image
	emptyBox  *canvas.Rectangle
}

// NewTargetPanel creates the target panel; onChoose opens the picker
func NewTargetPanel(localization *Localization, onChoose func()) *TargetPanel {
	tp := &TargetPanel{localization: localization}

	tp.hintLabel = widget.NewLabel(localization.GetText(KeyTargetHint))
	tp.hintLabel.Wrapping = fyne.TextWrapWord
	tp.nameLabel = widget.NewLabel("")
	tp.nameLabel.Truncation = fyne.TextTruncateEllipsis
	tp.chooseBtn = widget.NewButton(localization.GetText(KeyChooseTarget), onChoose)

	tp.image = canvas.NewImageFromResource(nil)
	tp.image.FillMode = canvas.ImageFillContain
	tp.image.SetMinSize(fyne.NewSize(TargetPreviewSize, TargetPreviewSize))
	tp.image.Hide()

	tp.emptyBox = canvas.NewRectangle(color.Transparent)
	tp.emptyBox.StrokeColor = color.Gray{Y: 160}
	tp.emptyBox.StrokeWidth = 1
	tp.emptyBox.SetMinSize(fyne.NewSize(TargetPreviewSize, TargetPreviewSize))

	content := container.NewVBox(
		tp.hintLabel,
		container.NewBorder(nil, nil, tp.chooseBtn, nil, tp.nameLabel),
		container.NewStack(tp.emptyBox, tp.image),
	)
	tp.card = widget.NewCard(IconImage+" "+localization.GetText(KeyTarget), "", content)
	return tp
}

// Container returns the drop zone object
func (tp *TargetPanel) Container() fyne.CanvasObject {
	return tp.card
}

// Update renders the target part of a selection snapshot
func (tp *TargetPanel) Update(snap selection.Snapshot) {
	if snap.Target == nil {
		tp.nameLabel.SetText("")
		tp.image.Resource = nil
		tp.image.Hide()
		tp.emptyBox.Show()
		return
	}

	tp.nameLabel.SetText(describeFile(snap.Target))
	if res := snap.TargetPreview.Resource(); res != nil {
		tp.image.Resource = res
		tp.image.Show()
		tp.emptyBox.Hide()
		tp.image.Refresh()
	} else {
		tp.image.Hide()
		tp.emptyBox.Show()
	}
}

// RefreshTexts re-reads localized labels
func (tp *TargetPanel) RefreshTexts() {
	tp.card.SetTitle(IconImage + " " + tp.localization.GetText(KeyTarget))
	tp.hintLabel.SetText(tp.localization.GetText(KeyTargetHint))
	tp.chooseBtn.SetText(tp.localization.GetText(KeyChooseTarget))
}

// TilesPanel shows the two tile pickers, the selection summary and the
// preview grid of the first tiles. The whole card is the tiles drop zone.
type TilesPanel struct {
	localization *Localization

	card         *widget.Card
	hintLabel    *widget.Label
	summaryLabel *widget.Label
	previewLabel *widget.Label
	archiveBtn   *widget.Button
	folderBtn    *widget.Button
	grid         *fyne.Container

	lastSnapshot selection.Snapshot
}

// NewTilesPanel creates the tiles panel
func NewTilesPanel(localization *Localization, onChooseArchive, onChooseFolder func()) *TilesPanel {
	tp := &TilesPanel{localization: localization}

	tp.hintLabel = widget.NewLabel(localization.GetText(KeyTilesHint))
	tp.hintLabel.Wrapping = fyne.TextWrapWord
	tp.summaryLabel = widget.NewLabel("")
	tp.summaryLabel.Truncation = fyne.TextTruncateEllipsis
	tp.previewLabel = widget.NewLabel("")
	tp.previewLabel.Hide()

	tp.archiveBtn = widget.NewButton(IconArchive+" "+localization.GetText(KeyChooseArchive), onChooseArchive)
	tp.folderBtn = widget.NewButton(IconFolder+" "+localization.GetText(KeyChooseFolder), onChooseFolder)

	tp.grid = container.NewGridWrap(fyne.NewSize(TilePreviewSize, TilePreviewSize))
	// keep room for a full row of previews
	gridFloor := canvas.NewRectangle(color.Transparent)
	gridFloor.SetMinSize(fyne.NewSize(TileGridWidth(), 0))

	content := container.NewVBox(
		tp.hintLabel,
		container.NewGridWithColumns(2, tp.archiveBtn, tp.folderBtn),
		tp.summaryLabel,
		tp.previewLabel,
		container.NewStack(gridFloor, tp.grid),
	)
	tp.card = widget.NewCard(IconMosaic+" "+localization.GetText(KeyTiles), "", content)
	return tp
}

// Container returns the drop zone object
func (tp *TilesPanel) Container() fyne.CanvasObject {
	return tp.card
}

// Update renders the tiles part of a selection snapshot
func (tp *TilesPanel) Update(snap selection.Snapshot) {
	tp.lastSnapshot = snap
	tiles := snap.Tiles

	switch tiles.Kind() {
	case model.TileSourceArchive:
		tp.summaryLabel.SetText(fmt.Sprintf(tp.localization.GetText(KeyArchiveSelected), describeFile(tiles.Archive())))
	case model.TileSourceFileSet:
		tp.summaryLabel.SetText(fmt.Sprintf(tp.localization.GetText(KeyImagesSelected), tiles.Len()))
	default:
		tp.summaryLabel.SetText("")
	}

	tp.grid.Objects = tp.grid.Objects[:0]
	for _, p := range snap.TilePreviews {
		tp.grid.Add(tilePreviewObject(p))
	}
	if len(snap.TilePreviews) > 0 {
		tp.previewLabel.SetText(fmt.Sprintf(tp.localization.GetText(KeyPreviewFirst), preview.MaxBatchPreviews))
		tp.previewLabel.Show()
	} else {
		tp.previewLabel.Hide()
	}
	tp.grid.Refresh()
}

// RefreshTexts re-reads localized labels
func (tp *TilesPanel) RefreshTexts() {
	tp.card.SetTitle(IconMosaic + " " + tp.localization.GetText(KeyTiles))
	tp.hintLabel.SetText(tp.localization.GetText(KeyTilesHint))
	tp.archiveBtn.SetText(IconArchive + " " + tp.localization.GetText(KeyChooseArchive))
	tp.folderBtn.SetText(IconFolder + " " + tp.localization.GetText(KeyChooseFolder))
	tp.Update(tp.lastSnapshot)
}

// tilePreviewObject renders one preview slot. A slot whose file could not
// be read stays as an empty frame.
func tilePreviewObject(p preview.Preview) fyne.CanvasObject {
	if res := p.Resource(); res != nil {
		img := canvas.NewImageFromResource(res)
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(TilePreviewSize, TilePreviewSize))
		return img
	}
	frame := canvas.NewRectangle(color.Transparent)
	frame.StrokeColor = color.Gray{Y: 160}
	frame.StrokeWidth = 1
	frame.SetMinSize(fyne.NewSize(TilePreviewSize, TilePreviewSize))
	return frame
}

// describeFile formats "name · size" for a selected file
func describeFile(f *model.File) string {
	if f == nil {
		return ""
	}
	if f.Size <= 0 {
		return f.Name
	}
	return f.Name + MiddleDotSeparator + formatFileSize(f.Size)
}

// containsPosition reports whether pos, in canvas coordinates, falls
// inside obj
func containsPosition(obj fyne.CanvasObject, pos fyne.Position) bool {
	if obj == nil || !obj.Visible() {
		return false
	}
	origin := fyne.CurrentApp().Driver().AbsolutePositionForObject(obj)
	size := obj.Size()
	return pos.X >= origin.X && pos.X < origin.X+size.Width &&
		pos.Y >= origin.Y && pos.Y < origin.Y+size.Height
}
