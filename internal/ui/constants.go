package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconArchive  = "🗜"
	IconImage    = "🖼"
	IconMosaic   = "🧩"
	IconError    = "❌"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
)

// Layout sizing
const (
	StatusLabelWidth  float32 = 96
	ElapsedLabelWidth float32 = 64
	PercentLabelWidth float32 = 48

	RowMinWidth  float32 = 400
	RowMinHeight float32 = 64

	TargetPreviewSize float32 = 220
	TilePreviewSize   float32 = 64
	ResultMinSize     float32 = 320
	TilePreviewCols           = 4

	WindowWidth  float32 = 1100
	WindowHeight float32 = 760
)

// Debounce durations
const (
	UIUpdateDebounce = 100 * time.Millisecond
	UIUpdateBurst    = 2
)
