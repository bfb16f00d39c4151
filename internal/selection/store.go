package selection

import (
	"context"
	"sync"

	"github.com/ytget/mosaic-client/internal/logger"
	"github.com/ytget/mosaic-client/internal/model"
	"github.com/ytget/mosaic-client/internal/preview"
)

const componentName = "SelectionStore"

// PreviewSource produces previews for selected files
type PreviewSource interface {
	Generate(ctx context.Context, file *model.File) preview.Preview
	GenerateBatch(ctx context.Context, files []*model.File) []preview.Preview
}

// Snapshot is an immutable copy of the current selection
type Snapshot struct {
	Target        *model.File
	TargetPreview preview.Preview
	Tiles         model.TileSource
	TilePreviews  []preview.Preview
}

// HasTarget reports whether a target image is selected
func (s Snapshot) HasTarget() bool {
	return s.Target != nil
}

// Ready reports whether both a target and a usable tile source are selected
func (s Snapshot) Ready() bool {
	return s.Target != nil && s.Tiles.IsReady()
}

// Store holds the target image and the tile source. Previews are generated
// outside the lock; a preview is applied only if the selection it was made
// for is still current.
type Store struct {
	mu            sync.RWMutex
	target        *model.File
	targetPreview preview.Preview
	tiles         model.TileSource
	tilePreviews  []preview.Preview

	targetGen uint64
	tilesGen  uint64

	previews PreviewSource
	logger   logger.Logger
	onChange func()
}

// NewStore creates an empty selection store
func NewStore(previews PreviewSource, log logger.Logger) *Store {
	if previews == nil {
		previews = preview.NewGenerator(log)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{previews: previews, logger: log}
}

// SetChangeCallback sets the function called after every selection change
func (s *Store) SetChangeCallback(callback func()) {
	s.mu.Lock()
	s.onChange = callback
	s.mu.Unlock()
}

// SetTarget replaces the target image. nil clears it and its preview.
func (s *Store) SetTarget(ctx context.Context, file *model.File) {
	s.mu.Lock()
	s.targetGen++
	gen := s.targetGen
	s.target = file
	s.targetPreview = preview.Preview{}
	s.mu.Unlock()
	s.notifyChange()

	if file == nil {
		s.logger.Debug(componentName, "target cleared", nil)
		return
	}
	s.logger.Debug(componentName, "target selected", map[string]interface{}{
		"file": file.Name,
		"mime": file.MimeType,
	})

	p := s.previews.Generate(ctx, file)

	s.mu.Lock()
	if s.targetGen != gen {
		s.mu.Unlock()
		return
	}
	s.targetPreview = p
	s.mu.Unlock()
	s.notifyChange()
}

// SetTileArchive switches to archive mode. The file set and its previews
// are always cleared, even when archive is nil.
func (s *Store) SetTileArchive(archive *model.File) {
	s.mu.Lock()
	s.tilesGen++
	s.tiles = model.NewArchiveSource(archive)
	s.tilePreviews = nil
	s.mu.Unlock()

	fields := map[string]interface{}{"mode": model.TileSourceArchive.String()}
	if archive != nil {
		fields["file"] = archive.Name
	}
	s.logger.Debug(componentName, "tile archive selected", fields)
	s.notifyChange()
}

// SetTileFileSet switches to file-set mode. Drop payloads are filtered to
// image files; picker input is taken as-is. The archive is always cleared.
func (s *Store) SetTileFileSet(ctx context.Context, files []*model.File, fromDrop bool) {
	if fromDrop {
		files = FilterImages(files)
	}

	s.mu.Lock()
	s.tilesGen++
	gen := s.tilesGen
	s.tiles = model.NewFileSetSource(files)
	s.tilePreviews = nil
	kept := s.tiles.Files()
	s.mu.Unlock()

	s.logger.Debug(componentName, "tile files selected", map[string]interface{}{
		"mode":      model.TileSourceFileSet.String(),
		"count":     len(kept),
		"from_drop": fromDrop,
	})
	s.notifyChange()

	previews := s.previews.GenerateBatch(ctx, kept)

	s.mu.Lock()
	if s.tilesGen != gen {
		s.mu.Unlock()
		return
	}
	s.tilePreviews = previews
	s.mu.Unlock()
	s.notifyChange()
}

// DropTarget applies the target drop-zone rule: the first dropped file is
// taken only when it is an image. It reports whether the drop was accepted.
func (s *Store) DropTarget(ctx context.Context, files []*model.File) bool {
	if len(files) == 0 || files[0] == nil || !files[0].IsImage() {
		s.logger.Debug(componentName, "target drop ignored", map[string]interface{}{"count": len(files)})
		return false
	}
	s.SetTarget(ctx, files[0])
	return true
}

// DropTiles applies the tile drop-zone rule: a single archive selects
// archive mode, anything else becomes a filtered file set (possibly empty).
// An empty drop is ignored.
func (s *Store) DropTiles(ctx context.Context, files []*model.File) {
	if len(files) == 0 {
		return
	}
	if IsSingleArchive(files) {
		s.SetTileArchive(files[0])
		return
	}
	s.SetTileFileSet(ctx, files, true)
}

// Reset clears the target, the tile source and all previews
func (s *Store) Reset() {
	s.mu.Lock()
	s.targetGen++
	s.tilesGen++
	s.target = nil
	s.targetPreview = preview.Preview{}
	s.tiles = model.TileSource{}
	s.tilePreviews = nil
	s.mu.Unlock()

	s.logger.Debug(componentName, "selection reset", nil)
	s.notifyChange()
}

// Snapshot returns a copy of the current selection
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var previews []preview.Preview
	if len(s.tilePreviews) > 0 {
		previews = make([]preview.Preview, len(s.tilePreviews))
		copy(previews, s.tilePreviews)
	}
	return Snapshot{
		Target:        s.target,
		TargetPreview: s.targetPreview,
		Tiles:         s.tiles,
		TilePreviews:  previews,
	}
}

// Ready reports whether the selection is complete enough to submit
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target != nil && s.tiles.IsReady()
}

func (s *Store) notifyChange() {
	s.mu.RLock()
	callback := s.onChange
	s.mu.RUnlock()
	if callback != nil {
		callback()
	}
}

// IsSingleArchive reports whether files is exactly one archive file
func IsSingleArchive(files []*model.File) bool {
	return len(files) == 1 && files[0] != nil && files[0].IsArchive()
}

// FilterImages keeps the image files, preserving order
func FilterImages(files []*model.File) []*model.File {
	images := make([]*model.File, 0, len(files))
	for _, f := range files {
		if f != nil && f.IsImage() {
			images = append(images, f)
		}
	}
	return images
}
