package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/time/rate"

	"github.com/ytget/mosaic-client/internal/config"
	"github.com/ytget/mosaic-client/internal/logger"
	"github.com/ytget/mosaic-client/internal/model"
	"github.com/ytget/mosaic-client/internal/platform"
	"github.com/ytget/mosaic-client/internal/result"
	"github.com/ytget/mosaic-client/internal/selection"
	"github.com/ytget/mosaic-client/internal/submit"
)

const componentName = "RootUI"

// Toast notification constants
const (
	RootToastWidth    = 320
	RootToastHeight   = 120
	RootToastMargin   = 20
	RootToastAutoHide = 5 * time.Second
	RootLogoSize      = 32
	RootSplitOffset   = 0.45
)

// ServiceEndpoint is the part of the mosaic client the UI reconfigures
type ServiceEndpoint interface {
	BaseURL() string
	SetBaseURL(baseURL string)
}

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	ctrl         *submit.Controller
	service      ServiceEndpoint
	settings     *config.Settings
	localization *Localization
	logger       logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	picks  *pickQueue

	// Header
	apiLabel     *widget.Label
	guideBtn     *widget.Button
	guide        *widget.RichText
	guideVisible bool

	// Panels
	targetPanel   *TargetPanel
	tilesPanel    *TilesPanel
	paramsPanel   *ParametersPanel
	submissionRow *SubmissionRow
	resultView    *ResultView

	// UI update throttling: progress-only updates are rate limited,
	// everything else is applied immediately
	stateMu       sync.Mutex
	limiter       *rate.Limiter
	lastState     submit.State
	lastSelection string
	hasState      bool

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, ctrl *submit.Controller, service ServiceEndpoint, settings *config.Settings, log logger.Logger) *RootUI {
	if log == nil {
		log = logger.Nop()
	}

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ctx, cancel := context.WithCancel(context.Background())
	ui := &RootUI{
		window:       window,
		app:          app,
		ctrl:         ctrl,
		service:      service,
		settings:     settings,
		localization: localization,
		logger:       log,
		ctx:          ctx,
		cancel:       cancel,
		picks:        newPickQueue(ctx),
		limiter:      rate.NewLimiter(rate.Every(UIUpdateDebounce), UIUpdateBurst),
	}

	window.SetTitle(localization.GetText(KeyAppTitle))

	ui.setupUI()

	// Initial render happens on the calling goroutine; later updates go through fyne.Do
	state, snap := ctrl.State(), ctrl.Store().Snapshot()
	ui.lastState, ui.lastSelection, ui.hasState = state, selectionKey(snap), true
	ui.render(state, snap)
	ctrl.SetUpdateCallback(ui.onStateUpdate)

	ui.logger.Info(componentName, "UI setup completed", map[string]interface{}{
		"api_url":  ui.serviceURL(),
		"language": localization.GetCurrentLanguage(),
	})
	return ui
}

// Close stops background work started by the UI
func (ui *RootUI) Close() {
	ui.cancel()
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	header := ui.createHeader()

	// Notification panel under the header (hidden by default)
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Wrapping = fyne.TextWrapWord
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewBorder(nil, nil, ui.notificationSpinner, nil, ui.notificationLabel)
	ui.notificationContainer.Hide()

	ui.guide = widget.NewRichTextFromMarkdown(ui.localization.GetText(KeyGuide))
	ui.guide.Wrapping = fyne.TextWrapWord
	ui.guide.Hide()

	top := container.NewVBox(header, ui.guide, ui.notificationContainer, widget.NewSeparator())

	ui.targetPanel = NewTargetPanel(ui.localization, ui.onChooseTarget)
	ui.tilesPanel = NewTilesPanel(ui.localization, ui.onChooseArchive, ui.onChooseFolder)
	ui.paramsPanel = NewParametersPanel(ui.localization, ui.ctrl.Parameters(), ui.ctrl.SetParameters)

	ui.submissionRow = NewSubmissionRow(ui.localization)
	ui.submissionRow.SetCallbacks(ui.onSubmit, ui.onCancel, ui.onReset)

	ui.resultView = NewResultView(ui.localization, ui.onDownload, ui.onSaveAs, ui.onOpen)

	inputs := container.NewVScroll(container.NewVBox(
		ui.targetPanel.Container(),
		ui.tilesPanel.Container(),
		ui.paramsPanel.Container(),
		ui.submissionRow,
	))

	split := container.NewHSplit(inputs, ui.resultView.Container())
	split.Offset = RootSplitOffset

	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, split))
	ui.window.SetOnDropped(ui.onDropped)
}

// createHeader builds the logo, service URL, guide toggle and settings row
func (ui *RootUI) createHeader() fyne.CanvasObject {
	ui.apiLabel = widget.NewLabel("")
	ui.apiLabel.Truncation = fyne.TextTruncateEllipsis
	ui.updateAPILabel()

	ui.guideBtn = widget.NewButton(ui.localization.GetText(KeyShowGuide), ui.onToggleGuide)
	ui.guideBtn.Importance = widget.LowImportance

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	left := container.NewHBox()
	if logo, err := LoadLogoResource(); err == nil {
		logoImage := canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(RootLogoSize, RootLogoSize))
		logoImage.FillMode = canvas.ImageFillContain
		left.Add(logoImage)
	}
	left.Add(settingsBtn)

	return container.NewBorder(nil, nil, left, ui.guideBtn, ui.apiLabel)
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		if ui.localization.GetCurrentLanguage() == code {
			langItem.Checked = true
		}
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	)
	ui.window.SetMainMenu(mainMenu)
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)

	ui.refreshUITexts()
	// Recreate menu to update checkmarks
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	ui.updateAPILabel()
	ui.updateGuideButton()
	ui.guide.ParseMarkdown(ui.localization.GetText(KeyGuide))

	ui.targetPanel.RefreshTexts()
	ui.tilesPanel.RefreshTexts()
	ui.paramsPanel.RefreshTexts()
	ui.submissionRow.RefreshTexts()
	ui.resultView.RefreshTexts()
}

func (ui *RootUI) serviceURL() string {
	if ui.service != nil {
		return ui.service.BaseURL()
	}
	return ui.settings.GetAPIBaseURL()
}

func (ui *RootUI) updateAPILabel() {
	url := ui.serviceURL()
	if url == "" {
		url = ui.localization.GetText(KeyAPINotSet)
	}
	ui.apiLabel.SetText(ui.localization.GetText(KeyAPILabel) + " " + url)
}

func (ui *RootUI) updateGuideButton() {
	if ui.guideVisible {
		ui.guideBtn.SetText(ui.localization.GetText(KeyHideGuide))
	} else {
		ui.guideBtn.SetText(ui.localization.GetText(KeyShowGuide))
	}
}

// onToggleGuide shows or hides the usage guide
func (ui *RootUI) onToggleGuide() {
	ui.guideVisible = !ui.guideVisible
	if ui.guideVisible {
		ui.guide.Show()
	} else {
		ui.guide.Hide()
	}
	ui.updateGuideButton()
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, ui.onSettingsSaved).Show()
}

// onSettingsSaved applies settings that take effect immediately
func (ui *RootUI) onSettingsSaved() {
	if ui.service != nil {
		ui.service.SetBaseURL(ui.settings.GetAPIBaseURL())
	}
	ui.localization.SetLanguage(ui.settings.GetLanguage())
	ui.refreshUITexts()
	ui.createMenu()

	ui.logger.Info(componentName, "settings applied", map[string]interface{}{
		"api_url":      ui.serviceURL(),
		"download_dir": ui.settings.GetDownloadDirectory(),
		"language":     ui.localization.GetCurrentLanguage(),
	})
}

// Pickers

// onChooseTarget opens the target image picker
func (ui *RootUI) onChooseTarget() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		file := ui.pickedFile(reader, err)
		if file == nil {
			return
		}
		ui.picks.Enqueue(func() { ui.ctrl.Store().SetTarget(ui.ctx, file) })
	}, ui.window)
	fd.Show()
}

// onChooseArchive opens the tile archive picker
func (ui *RootUI) onChooseArchive() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		file := ui.pickedFile(reader, err)
		if file == nil {
			return
		}
		ui.picks.Enqueue(func() { ui.ctrl.Store().SetTileArchive(file) })
	}, ui.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{model.ArchiveExtension}))
	fd.Show()
}

// onChooseFolder takes the files of a folder, in listing order, as the
// tile file set. Subfolders are skipped.
func (ui *RootUI) onChooseFolder() {
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			ui.logger.Error(componentName, fmt.Errorf("folder picker: %w", err), nil)
			return
		}
		if dir == nil {
			return
		}

		ui.picks.Enqueue(func() {
			entries, err := dir.List()
			if err != nil {
				ui.logger.Error(componentName, fmt.Errorf("list %s: %w", dir.Path(), err), nil)
				ui.showNotification(IconError+" "+err.Error(), false)
				return
			}

			files := make([]*model.File, 0, len(entries))
			for _, entry := range entries {
				if isDir, _ := storage.CanList(entry); isDir {
					continue
				}
				files = append(files, model.NewFileFromURI(entry))
			}
			ui.ctrl.Store().SetTileFileSet(ui.ctx, files, false)
		})
	}, ui.window)
}

// pickedFile converts a file picker result into a file reference
func (ui *RootUI) pickedFile(reader fyne.URIReadCloser, err error) *model.File {
	if err != nil {
		ui.logger.Error(componentName, fmt.Errorf("file picker: %w", err), nil)
		return nil
	}
	if reader == nil {
		return nil
	}
	uri := reader.URI()
	if cerr := reader.Close(); cerr != nil {
		ui.logger.Debug(componentName, "close picked file", map[string]interface{}{"error": cerr.Error()})
	}
	return model.NewFileFromURI(uri)
}

// onDropped routes a window drop to the drop zone under the pointer
func (ui *RootUI) onDropped(pos fyne.Position, uris []fyne.URI) {
	files := make([]*model.File, 0, len(uris))
	for _, uri := range uris {
		files = append(files, model.NewFileFromURI(uri))
	}

	store := ui.ctrl.Store()
	switch {
	case containsPosition(ui.targetPanel.Container(), pos):
		ui.picks.Enqueue(func() {
			if !store.DropTarget(ui.ctx, files) {
				ui.logger.Debug(componentName, "target drop ignored", map[string]interface{}{"files": len(files)})
			}
		})
	case containsPosition(ui.tilesPanel.Container(), pos):
		ui.picks.Enqueue(func() { store.DropTiles(ui.ctx, files) })
	default:
		ui.logger.Debug(componentName, "drop outside drop zones", map[string]interface{}{"files": len(files)})
	}
}

// Submission actions

func (ui *RootUI) onSubmit() {
	if _, err := ui.ctrl.Submit(ui.ctx); err != nil {
		// Validation errors are already part of the controller state
		if !errors.Is(err, submit.ErrSubmissionPending) {
			ui.logger.Debug(componentName, "submit rejected", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (ui *RootUI) onCancel() {
	ui.ctrl.Cancel()
}

func (ui *RootUI) onReset() {
	ui.hideNotification()
	// queued picks made before the reset must not resurface after it
	ui.picks.Enqueue(ui.ctrl.Reset)
}

// Result actions

// onDownload saves the result into the download directory
func (ui *RootUI) onDownload() {
	dir := ui.settings.GetDownloadDirectory()
	go func() {
		path, err := ui.ctrl.Holder().SaveTo(dir)
		if err != nil {
			ui.logger.Error(componentName, err, map[string]interface{}{"dir": dir})
			ui.showNotification(ui.localization.GetText(KeyErrorSaving)+": "+err.Error(), false)
			return
		}
		fyne.Do(func() {
			ui.sendSavedNotification(path)
		})
	}()
}

// onSaveAs exports the result to a user chosen location
func (ui *RootUI) onSaveAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			ui.logger.Error(componentName, fmt.Errorf("save dialog: %w", err), nil)
			return
		}
		if writer == nil {
			return
		}

		go func() {
			_, err := ui.ctrl.Holder().WriteTo(writer)
			if cerr := writer.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				ui.logger.Error(componentName, err, map[string]interface{}{"uri": writer.URI().String()})
				ui.showNotification(ui.localization.GetText(KeyErrorSaving)+": "+err.Error(), false)
				return
			}
			ui.showNotification(fmt.Sprintf(ui.localization.GetText(KeySavedTo), writer.URI().Path()), false)
		}()
	}, ui.window)
	fd.SetFileName(result.DownloadFileName)
	fd.Show()
}

// onOpen opens the result with the default image viewer
func (ui *RootUI) onOpen() {
	go func() {
		if err := ui.ctrl.Holder().Open(); err != nil {
			ui.logger.Error(componentName, err, nil)
			ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
		}
	}()
}

// onRevealFile handles revealing a file in the system file manager
func (ui *RootUI) onRevealFile(filePath string) {
	if err := platform.OpenFileInManager(filePath); err != nil {
		ui.logger.Error(componentName, err, map[string]interface{}{"path": filePath})
		widget.ShowPopUp(widget.NewLabel(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error()), ui.window.Canvas())
	}
}

// onOpenFile handles opening a saved file with the default application
func (ui *RootUI) onOpenFile(filePath string) {
	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		ui.logger.Error(componentName, err, map[string]interface{}{"path": filePath})
		widget.ShowPopUp(widget.NewLabel(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error()), ui.window.Canvas())
	}
}

// State updates

// onStateUpdate receives controller updates from any goroutine
func (ui *RootUI) onStateUpdate(state submit.State) {
	snap := ui.ctrl.Store().Snapshot()
	key := selectionKey(snap)

	ui.stateMu.Lock()
	if ui.hasState && key == ui.lastSelection && isProgressOnly(ui.lastState, state) && !ui.limiter.Allow() {
		ui.stateMu.Unlock()
		return
	}
	ui.lastState = state
	ui.lastSelection = key
	ui.hasState = true
	ui.stateMu.Unlock()

	fyne.Do(func() {
		ui.render(state, snap)
	})
}

// render applies a state and selection snapshot to the widgets
func (ui *RootUI) render(state submit.State, snap selection.Snapshot) {
	ui.targetPanel.Update(snap)
	ui.tilesPanel.Update(snap)
	ui.submissionRow.UpdateState(state)
	ui.resultView.SetArtifact(state.Artifact)
}

// isProgressOnly reports whether next differs from prev only in progress
func isProgressOnly(prev, next submit.State) bool {
	return prev.SubmissionID == next.SubmissionID &&
		prev.Status == next.Status &&
		prev.LastError == next.LastError &&
		prev.ErrorKind == next.ErrorKind &&
		prev.Artifact == next.Artifact &&
		prev.CanSubmit == next.CanSubmit &&
		prev.Parameters == next.Parameters
}

// selectionKey identifies what the input panels currently display
func selectionKey(snap selection.Snapshot) string {
	targetID := ""
	if snap.Target != nil {
		targetID = snap.Target.ID
	}
	ready := 0
	for _, p := range snap.TilePreviews {
		if !p.IsEmpty() {
			ready++
		}
	}
	return fmt.Sprintf("%s/%t/%s/%d/%d/%d", targetID, snap.TargetPreview.IsEmpty(),
		snap.Tiles.Kind(), snap.Tiles.Len(), len(snap.TilePreviews), ready)
}

// Notifications

// showNotification displays a message in the notification panel under the header.
// When spinning is true, a spinner is shown to indicate background activity.
func (ui *RootUI) showNotification(message string, spinning bool) {
	if ui.notificationLabel == nil || ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	fyne.Do(func() {
		ui.notificationLabel.SetText(message)
		if spinning {
			ui.notificationSpinner.Show()
		} else {
			ui.notificationSpinner.Hide()
		}
		ui.notificationContainer.Show()
		ui.notificationContainer.Refresh()
	})
}

// hideNotification hides the notification panel.
func (ui *RootUI) hideNotification() {
	if ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	fyne.Do(func() {
		ui.notificationSpinner.Hide()
		ui.notificationContainer.Hide()
	})
}

// sendSavedNotification sends a system notification and an in-app toast
// for a downloaded mosaic
func (ui *RootUI) sendSavedNotification(path string) {
	message := fmt.Sprintf(ui.localization.GetText(KeySavedTo), path)
	ui.app.SendNotification(&fyne.Notification{
		Title:   ui.localization.GetText(KeyAppTitle),
		Content: message,
	})
	ui.showToastNotification(message, path)
}

// showToastNotification shows an in-app toast with reveal and open actions
func (ui *RootUI) showToastNotification(message, path string) {
	titleLabel := widget.NewLabel(ui.localization.GetText(KeyDownload))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(message)
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	revealBtn := widget.NewButton(ui.localization.GetText(KeyReveal), func() {
		ui.onRevealFile(path)
	})
	revealBtn.Importance = widget.HighImportance

	openBtn := widget.NewButton(ui.localization.GetText(KeyOpen), func() {
		ui.onOpenFile(path)
	})

	var toastPopup *widget.PopUp
	closeBtn := widget.NewButton("✕", func() {
		toastPopup.Hide()
	})
	closeBtn.Importance = widget.LowImportance

	content := container.NewVBox(
		container.NewBorder(nil, nil, titleLabel, closeBtn),
		messageLabel,
		container.NewHBox(revealBtn, openBtn),
	)
	toastPopup = widget.NewPopUp(content, ui.window.Canvas())

	// Position in top-right corner
	canvasSize := ui.window.Canvas().Size()
	toastSize := fyne.NewSize(RootToastWidth, RootToastHeight)
	toastPopup.Resize(toastSize)
	toastPopup.Move(fyne.NewPos(canvasSize.Width-toastSize.Width-RootToastMargin, RootToastMargin))
	toastPopup.Show()

	time.AfterFunc(RootToastAutoHide, func() {
		fyne.Do(toastPopup.Hide)
	})
}
