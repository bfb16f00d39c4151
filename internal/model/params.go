package model

import "strconv"

// Parameter ranges and defaults
const (
	MinTileSize     = 8
	MaxTileSize     = 64
	DefaultTileSize = 16
	TileSizeStep    = 1

	MinBlend     = 0.0
	MaxBlend     = 1.0
	DefaultBlend = 0.12
	BlendStep    = 0.01

	MinMaxWidth     = 400
	MaxMaxWidth     = 2000
	DefaultMaxWidth = 800
	MaxWidthStep    = 20

	DefaultNoImmediateRepeat = true
)

// SubmissionParameters configures how the service builds the mosaic
type SubmissionParameters struct {
	TileSize          int
	Blend             float64
	MaxWidth          int
	NoImmediateRepeat bool
}

// DefaultParameters returns the initial widget values
func DefaultParameters() SubmissionParameters {
	return SubmissionParameters{
		TileSize:          DefaultTileSize,
		Blend:             DefaultBlend,
		MaxWidth:          DefaultMaxWidth,
		NoImmediateRepeat: DefaultNoImmediateRepeat,
	}
}

// Clamped returns a copy with every value forced into its range
func (p SubmissionParameters) Clamped() SubmissionParameters {
	if p.TileSize < MinTileSize {
		p.TileSize = MinTileSize
	}
	if p.TileSize > MaxTileSize {
		p.TileSize = MaxTileSize
	}
	if p.Blend < MinBlend || p.Blend != p.Blend {
		p.Blend = MinBlend
	}
	if p.Blend > MaxBlend {
		p.Blend = MaxBlend
	}
	if p.MaxWidth < MinMaxWidth {
		p.MaxWidth = MinMaxWidth
	}
	if p.MaxWidth > MaxMaxWidth {
		p.MaxWidth = MaxMaxWidth
	}
	return p
}

// FormFields returns the scalar multipart fields in wire order
func (p SubmissionParameters) FormFields() [][2]string {
	return [][2]string{
		{"tile_size", strconv.Itoa(p.TileSize)},
		{"blend", strconv.FormatFloat(p.Blend, 'f', -1, 64)},
		{"max_width", strconv.Itoa(p.MaxWidth)},
		{"no_immediate_repeat", strconv.FormatBool(p.NoImmediateRepeat)},
	}
}
