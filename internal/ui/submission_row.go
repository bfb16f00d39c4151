package ui

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mosaic-client/internal/model"
	"github.com/ytget/mosaic-client/internal/submit"
)

// File size formatting constants
const (
	FileSizeUnit  = 1024
	FileSizeUnits = "KMGTPE"
)

// Progress bounds
const (
	MaxProgressPercent = 100
	MinProgressPercent = 0
)

// formatFileSize formats file size in bytes to human readable format
func formatFileSize(bytes int64) string {
	if bytes < FileSizeUnit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(FileSizeUnit), 0
	for n := bytes / FileSizeUnit; n >= FileSizeUnit; n /= FileSizeUnit {
		div *= FileSizeUnit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), FileSizeUnits[exp])
}

// clampPercent keeps a percent value inside [0, 100]
func clampPercent(p int) int {
	if p < MinProgressPercent {
		return MinProgressPercent
	}
	if p > MaxProgressPercent {
		return MaxProgressPercent
	}
	return p
}

// SubmissionRow shows the state of the current submission: status, progress,
// elapsed time, the last error and the submit/cancel/reset actions
type SubmissionRow struct {
	widget.BaseWidget

	state        submit.State
	localization *Localization

	// UI components
	statusLabel   *widget.Label
	progressBar   *widget.ProgressBar
	progressLabel *widget.Label
	elapsedLabel  *widget.Label
	errorText     *canvas.Text

	// Action buttons
	submitBtn *widget.Button
	cancelBtn *widget.Button
	resetBtn  *widget.Button

	// Callbacks
	onSubmit func()
	onCancel func()
	onReset  func()
}

// NewSubmissionRow creates a new submission row widget
func NewSubmissionRow(localization *Localization) *SubmissionRow {
	sr := &SubmissionRow{
		state:        submit.State{Status: model.SubmissionStatusIdle},
		localization: localization,
	}
	sr.ExtendBaseWidget(sr)
	sr.createUI()
	sr.updateFromState()
	return sr
}

// SetCallbacks sets the action callbacks
func (sr *SubmissionRow) SetCallbacks(onSubmit, onCancel, onReset func()) {
	sr.onSubmit = onSubmit
	sr.onCancel = onCancel
	sr.onReset = onReset
}

// UpdateState updates the row with a new controller state
func (sr *SubmissionRow) UpdateState(state submit.State) {
	sr.state = state
	sr.updateFromState()
	sr.Refresh()
}

// RefreshTexts re-reads localized labels
func (sr *SubmissionRow) RefreshTexts() {
	sr.submitBtn.SetText(sr.localization.GetText(KeySubmit))
	sr.cancelBtn.SetText(sr.localization.GetText(KeyCancel))
	sr.resetBtn.SetText(sr.localization.GetText(KeyReset))
	sr.updateFromState()
	sr.Refresh()
}

// createUI creates the UI components
func (sr *SubmissionRow) createUI() {
	sr.statusLabel = widget.NewLabel("")
	sr.statusLabel.TextStyle = fyne.TextStyle{Bold: true}

	sr.progressBar = widget.NewProgressBar()
	sr.progressBar.Max = MaxProgressPercent
	sr.progressBar.TextFormatter = func() string { return "" }

	sr.progressLabel = widget.NewLabel(fmt.Sprintf(ProgressLabelFormat, 0))
	sr.progressLabel.Alignment = fyne.TextAlignTrailing

	sr.elapsedLabel = widget.NewLabel(DashPlaceholder)
	sr.elapsedLabel.Alignment = fyne.TextAlignTrailing

	sr.errorText = canvas.NewText("", theme.Color(theme.ColorNameError))
	sr.errorText.TextStyle = fyne.TextStyle{Bold: true}

	sr.submitBtn = widget.NewButton(sr.localization.GetText(KeySubmit), func() {
		if sr.onSubmit != nil {
			sr.onSubmit()
		}
	})
	sr.submitBtn.Importance = widget.HighImportance

	sr.cancelBtn = widget.NewButton(sr.localization.GetText(KeyCancel), func() {
		if sr.onCancel != nil {
			sr.onCancel()
		}
	})

	sr.resetBtn = widget.NewButton(sr.localization.GetText(KeyReset), func() {
		if sr.onReset != nil {
			sr.onReset()
		}
	})
	sr.resetBtn.Importance = widget.LowImportance
}

// updateFromState pushes the state into the widgets
func (sr *SubmissionRow) updateFromState() {
	st := sr.state

	sr.statusLabel.SetText(sr.localization.StatusText(st.Status))

	percent := clampPercent(st.Progress)
	sr.progressBar.SetValue(float64(percent))
	sr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, percent))

	task := model.Submission{StartedAt: st.StartedAt, FinishedAt: st.FinishedAt}
	sr.elapsedLabel.SetText(task.GetElapsedString(time.Now()))

	sr.errorText.Text = sr.localization.ErrorText(st.ErrorKind, st.LastError)
	sr.errorText.Color = theme.Color(theme.ColorNameError)
	sr.errorText.Refresh()

	sr.updateButtons()
}

// updateButtons enables actions according to the controller state
func (sr *SubmissionRow) updateButtons() {
	if sr.state.CanSubmit {
		sr.submitBtn.Enable()
	} else {
		sr.submitBtn.Disable()
	}

	if sr.state.Status.IsActive() {
		sr.cancelBtn.Show()
		sr.cancelBtn.Enable()
	} else {
		sr.cancelBtn.Disable()
	}
}

// CreateRenderer creates the widget renderer
func (sr *SubmissionRow) CreateRenderer() fyne.WidgetRenderer {
	return &submissionRowRenderer{row: sr}
}

// submissionRowRenderer renders the submission row widget
type submissionRowRenderer struct {
	row    *SubmissionRow
	layout *fyne.Container
}

// Layout arranges the components
func (r *submissionRowRenderer) Layout(size fyne.Size) {
	if r.layout == nil {
		r.createLayout()
	}
	if size.Width < RowMinWidth {
		size.Width = RowMinWidth
	}
	if size.Height < RowMinHeight {
		size.Height = RowMinHeight
	}
	r.layout.Resize(size)
}

// MinSize returns the minimum size
func (r *submissionRowRenderer) MinSize() fyne.Size {
	if r.layout == nil {
		r.createLayout()
	}
	return r.layout.MinSize().Max(fyne.NewSize(RowMinWidth, RowMinHeight))
}

// Refresh refreshes the renderer
func (r *submissionRowRenderer) Refresh() {
	if r.layout == nil {
		r.createLayout()
	}
	r.layout.Refresh()
}

// Objects returns the container objects
func (r *submissionRowRenderer) Objects() []fyne.CanvasObject {
	if r.layout == nil {
		r.createLayout()
	}
	return []fyne.CanvasObject{r.layout}
}

// Destroy cleans up the renderer
func (r *submissionRowRenderer) Destroy() {}

// createLayout creates the main layout
func (r *submissionRowRenderer) createLayout() {
	sr := r.row

	// Helper to fix width using a transparent rectangle underneath
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.RGBA{0, 0, 0, 0})
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	actionRow := container.NewHBox(sr.submitBtn, sr.cancelBtn, sr.resetBtn)

	info := container.NewHBox(
		fixedWidth(PercentLabelWidth, sr.progressLabel),
		fixedWidth(ElapsedLabelWidth, sr.elapsedLabel),
	)
	progressLine := container.NewBorder(nil, nil, fixedWidth(StatusLabelWidth, sr.statusLabel), info, sr.progressBar)

	r.layout = container.NewVBox(
		actionRow,
		progressLine,
		sr.errorText,
		widget.NewSeparator(),
	)
}
