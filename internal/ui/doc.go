package ui

// Package ui contains the Fyne-based desktop user interface for the application.
// It wires pickers, drop zones and parameter widgets to the submission controller
// and renders previews, progress and the resulting mosaic. All UI strings are
// localized via Localization.
