package ui

import "github.com/ytget/mosaic-client/internal/model"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyAPILabel          = "api_label"
	KeyAPINotSet         = "api_not_set"
	KeyShowGuide         = "show_guide"
	KeyHideGuide         = "hide_guide"
	KeyGuide             = "guide"
	KeyTarget            = "target"
	KeyTargetHint        = "target_hint"
	KeyChooseTarget      = "choose_target"
	KeyTiles             = "tiles"
	KeyTilesHint         = "tiles_hint"
	KeyChooseArchive     = "choose_archive"
	KeyChooseFolder      = "choose_folder"
	KeyArchiveSelected   = "archive_selected"
	KeyImagesSelected    = "images_selected"
	KeyPreviewFirst      = "preview_first"
	KeyTileSize          = "tile_size"
	KeyBlend             = "blend"
	KeyMaxWidth          = "max_width"
	KeyNoImmediateRepeat = "no_immediate_repeat"
	KeySubmit            = "submit"
	KeyCancel            = "cancel"
	KeyReset             = "reset"
	KeyDownload          = "download"
	KeySaveAs            = "save_as"
	KeyOpen              = "open"
	KeyReveal            = "reveal"
	KeyResult            = "result"
	KeyNoResult          = "no_result"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyServiceURL        = "service_url"
	KeyDownloadDirectory = "download_directory"
	KeySave              = "save"
	KeyBrowse            = "browse"
	KeySettingsSaved     = "settings_saved"
	KeySavedTo           = "saved_to"
	KeyErrorSaving       = "error_saving"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyErrMissingTarget  = "err_missing_target"
	KeyErrMissingTiles   = "err_missing_tiles"
	KeyStatusIdle        = "status_idle"
	KeyStatusPending     = "status_pending"
	KeyStatusSucceeded   = "status_succeeded"
	KeyStatusFailed      = "status_failed"
	KeyStatusCancelled   = "status_cancelled"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"mk": "Македонски",
	}
}

// StatusText returns the label for a submission status
func (l *Localization) StatusText(status model.SubmissionStatus) string {
	switch status {
	case model.SubmissionStatusPending:
		return l.GetText(KeyStatusPending)
	case model.SubmissionStatusSucceeded:
		return l.GetText(KeyStatusSucceeded)
	case model.SubmissionStatusFailed:
		return l.GetText(KeyStatusFailed)
	case model.SubmissionStatusCancelled:
		return l.GetText(KeyStatusCancelled)
	default:
		return l.GetText(KeyStatusIdle)
	}
}

// ErrorText returns the message to show for an error. Validation errors are
// translated; transport errors keep the service's own message.
func (l *Localization) ErrorText(kind model.ErrorKind, message string) string {
	switch kind {
	case model.ErrorKindMissingTarget:
		return l.GetText(KeyErrMissingTarget)
	case model.ErrorKindMissingTiles:
		return l.GetText(KeyErrMissingTiles)
	case model.ErrorKindNone:
		return ""
	default:
		return message
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "Photo Mosaic",
		KeyAPILabel:          "API:",
		KeyAPINotSet:         "not set",
		KeyShowGuide:         "Show guide",
		KeyHideGuide:         "Hide guide",
		KeyGuide:             guideEN,
		KeyTarget:            "Target image",
		KeyTargetHint:        "Drag & drop allowed (one image only).",
		KeyChooseTarget:      "Choose image…",
		KeyTiles:             "Tiles",
		KeyTilesHint:         "Drop one .zip or several images here.",
		KeyChooseArchive:     "Option 1: ZIP…",
		KeyChooseFolder:      "Option 2: Folder of images…",
		KeyArchiveSelected:   "Selected: %s",
		KeyImagesSelected:    "%d image(s) selected",
		KeyPreviewFirst:      "Preview (first %d):",
		KeyTileSize:          "Tile size: %d px",
		KeyBlend:             "Blend: %.2f",
		KeyMaxWidth:          "Max width: %d px",
		KeyNoImmediateRepeat: "No immediate repeat",
		KeySubmit:            "Build mosaic",
		KeyCancel:            "Cancel",
		KeyReset:             "Reset",
		KeyDownload:          "Download",
		KeySaveAs:            "Save as…",
		KeyOpen:              "Open",
		KeyReveal:            "Show in folder",
		KeyResult:            "Result",
		KeyNoResult:          "The mosaic will appear here.",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyServiceURL:        "Service URL",
		KeyDownloadDirectory: "Download Directory",
		KeySave:              "Save",
		KeyBrowse:            "Browse",
		KeySettingsSaved:     "Settings saved for this session.",
		KeySavedTo:           "Saved to %s",
		KeyErrorSaving:       "Error saving mosaic",
		KeyErrorOpeningFile:  "Error opening file",
		KeyErrMissingTarget:  "Set a target image!",
		KeyErrMissingTiles:   "Add a ZIP or several tile images.",
		KeyStatusIdle:        "Ready",
		KeyStatusPending:     "Building…",
		KeyStatusSucceeded:   "Done",
		KeyStatusFailed:      "Failed",
		KeyStatusCancelled:   "Cancelled",
	}

	// Macedonian texts
	l.texts["mk"] = map[string]string{
		KeyAppTitle:          "Фото мозаик",
		KeyAPILabel:          "API:",
		KeyAPINotSet:         "не е поставено",
		KeyShowGuide:         "Покажи упатство",
		KeyHideGuide:         "Скриј упатство",
		KeyGuide:             guideMK,
		KeyTarget:            "Target слика",
		KeyTargetHint:        "Drag & drop дозволено (само една слика).",
		KeyChooseTarget:      "Избери слика…",
		KeyTiles:             "Плочки",
		KeyTilesHint:         "Пушти еден .zip или повеќе слики тука.",
		KeyChooseArchive:     "Опција 1: ZIP…",
		KeyChooseFolder:      "Опција 2: Папка со слики…",
		KeyArchiveSelected:   "Избрано: %s",
		KeyImagesSelected:    "Избрани слики: %d",
		KeyPreviewFirst:      "Преглед (први %d):",
		KeyTileSize:          "Големина на плочка: %d px",
		KeyBlend:             "Мешање: %.2f",
		KeyMaxWidth:          "Макс. ширина: %d px",
		KeyNoImmediateRepeat: "Без непосредно повторување",
		KeySubmit:            "Направи мозаик",
		KeyCancel:            "Откажи",
		KeyReset:             "Ресетирај",
		KeyDownload:          "Преземи",
		KeySaveAs:            "Зачувај како…",
		KeyOpen:              "Отвори",
		KeyReveal:            "Покажи во папка",
		KeyResult:            "Резултат",
		KeyNoResult:          "Мозаикот ќе се појави тука.",
		KeySettings:          "Поставки",
		KeyFile:              "Датотека",
		KeyLanguage:          "Јазик",
		KeyServiceURL:        "URL на сервисот",
		KeyDownloadDirectory: "Папка за преземање",
		KeySave:              "Зачувај",
		KeyBrowse:            "Прелистај",
		KeySettingsSaved:     "Поставките се зачувани за оваа сесија.",
		KeySavedTo:           "Зачувано во %s",
		KeyErrorSaving:       "Грешка при зачувување",
		KeyErrorOpeningFile:  "Грешка при отворање",
		KeyErrMissingTarget:  "Постави target слика!",
		KeyErrMissingTiles:   "Додај ZIP или повеќе слики за плочки.",
		KeyStatusIdle:        "Подготвено",
		KeyStatusPending:     "Се обработува…",
		KeyStatusSucceeded:   "Готово",
		KeyStatusFailed:      "Неуспешно",
		KeyStatusCancelled:   "Откажано",
	}
}

const guideEN = `**How to use**

1. **Target image**: the photo to turn into a mosaic. Drag & drop it or use the button; a preview appears after choosing.
2. **Tiles**: the small images the mosaic is built from.
   - *Option 1: ZIP* with many images inside (recommended for large tile sets).
   - *Option 2: Multiple images*; the first 8 are previewed.
   Choosing a ZIP clears the image selection and vice versa. Only one option is active.
3. **Tile size**: pixel size of each tile. Smaller means more detail and slower processing.
4. **Blend**: how much of the target is mixed over the tiles (0 = none, 1 = target only). 0.10 to 0.25 is usually a good balance.
5. **Max width**: width of the final image.
6. **No immediate repeat**: the same tile never appears next to itself.
7. **Build mosaic** sends everything to the service (` + "`/api/mosaic`" + `). **Reset** clears all fields and previews.

If the target or the tiles are missing you get a message instead of a request.`

const guideMK = `**Упатство: како се користи**

1. **Target слика**: главната слика што сакаш да се претвори во мозаик. Може drag & drop или преку копчето. По избор ќе видиш преглед.
2. **Плочки**: малите слики што ќе го сочинуваат мозаикот.
   - *Опција 1: ZIP* со многу слики внатре (препорачано за голем број плочки).
   - *Опција 2: Повеќе слики*; првите 8 се прикажуваат како преглед.
   Ако избереш ZIP, изборот на слики се чисти, и обратно. Секогаш важи само едната опција.
3. **Големина на плочка**: помала вредност = повеќе детали, но подолга обработка.
4. **Мешање**: колку target сликата се „вмешува“ над плочките (0 = без мешање, 1 = само таргет). Типично 0.10 до 0.25.
5. **Макс. ширина**: ширина на конечната слика.
6. **Без непосредно повторување**: иста плочка нема да се појави една до друга.
7. **Направи мозаик** ја праќа обработката кон API (` + "`/api/mosaic`" + `). **Ресетирај** ги чисти сите полиња и прегледи.

Ако недостасува таргет или плочки, ќе добиеш порака наместо барање.`
