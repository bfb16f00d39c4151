package ui

import (
	"fyne.io/fyne/v2"
)

const (
	AppIcon = "mosaic-client.png"
)

// LoadLogoResource loads the logo from file path. The header falls back to
// no logo when the file is missing.
func LoadLogoResource() (fyne.Resource, error) {
	return fyne.LoadResourceFromPath(AppIcon)
}
