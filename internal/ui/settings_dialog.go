package ui

import (
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mosaic-client/internal/config"
)

// SettingsDialogSize is the initial size of the settings dialog
var SettingsDialogSize = fyne.NewSize(520, 320)

// SettingsDialog edits the session settings: service URL, download
// directory and language
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog

	// UI components
	serviceURLEntry  *widget.Entry
	downloadDirEntry *widget.Entry
	languageSelect   *widget.Select

	languageCodes  map[string]string // display name -> code
	languageLabels map[string]string // code -> display name

	onSaved func()
}

// NewSettingsDialog creates a new settings dialog. onSaved runs after the
// settings were applied.
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func()) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.serviceURLEntry = widget.NewEntry()
	sd.serviceURLEntry.SetPlaceHolder("http://localhost:8000")

	// Download directory selection
	sd.downloadDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	// Language selection, shown by display name
	sd.languageLabels = sd.settings.GetLanguageOptions()
	sd.languageCodes = make(map[string]string, len(sd.languageLabels))
	names := make([]string, 0, len(sd.languageLabels))
	for code, name := range sd.languageLabels {
		sd.languageCodes[name] = code
		names = append(names, name)
	}
	sort.Strings(names)
	sd.languageSelect = widget.NewSelect(names, nil)

	form := container.NewVBox(
		widget.NewLabel(l.GetText(KeyServiceURL)+":"),
		sd.serviceURLEntry,

		widget.NewLabel(l.GetText(KeyDownloadDirectory)+":"),
		downloadDirRow,

		widget.NewSeparator(),

		widget.NewLabel(l.GetText(KeyLanguage)+":"),
		sd.languageSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(SettingsDialogSize)
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.serviceURLEntry.SetText(sd.settings.GetAPIBaseURL())
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.languageSelect.SetSelected(sd.languageLabels[sd.settings.GetLanguage()])
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave applies the edited values
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	sd.apply()

	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
	if sd.onSaved != nil {
		sd.onSaved()
	}
}

// apply copies the entries into settings. An empty service URL is allowed
// and leaves the client unconfigured.
func (sd *SettingsDialog) apply() {
	sd.settings.SetAPIBaseURL(strings.TrimSpace(sd.serviceURLEntry.Text))

	if dir := strings.TrimSpace(sd.downloadDirEntry.Text); dir != "" {
		sd.settings.SetDownloadDirectory(dir)
	}

	if code, ok := sd.languageCodes[sd.languageSelect.Selected]; ok {
		sd.settings.SetLanguage(code)
	}
}
