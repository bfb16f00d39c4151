package model

// TileSourceKind tags the active variant of a TileSource
type TileSourceKind int

const (
	TileSourceNone TileSourceKind = iota
	TileSourceArchive
	TileSourceFileSet
)

// String returns the variant name
func (k TileSourceKind) String() string {
	switch k {
	case TileSourceArchive:
		return "archive"
	case TileSourceFileSet:
		return "fileset"
	default:
		return "none"
	}
}

// TileSource holds either a single archive or an ordered set of image files,
// never both. The zero value is the empty source.
type TileSource struct {
	kind    TileSourceKind
	archive *File
	files   []*File
}

// NewArchiveSource returns an archive-mode source. A nil archive yields the
// empty source.
func NewArchiveSource(archive *File) TileSource {
	if archive == nil {
		return TileSource{}
	}
	return TileSource{kind: TileSourceArchive, archive: archive}
}

// NewFileSetSource returns a file-set source preserving selection order
func NewFileSetSource(files []*File) TileSource {
	kept := make([]*File, 0, len(files))
	for _, f := range files {
		if f != nil {
			kept = append(kept, f)
		}
	}
	return TileSource{kind: TileSourceFileSet, files: kept}
}

// Kind returns the active variant
func (ts TileSource) Kind() TileSourceKind {
	return ts.kind
}

// Archive returns the archive, or nil outside archive mode
func (ts TileSource) Archive() *File {
	return ts.archive
}

// Files returns a copy of the file set, or nil outside file-set mode
func (ts TileSource) Files() []*File {
	if ts.kind != TileSourceFileSet {
		return nil
	}
	out := make([]*File, len(ts.files))
	copy(out, ts.files)
	return out
}

// Len returns the number of files in file-set mode
func (ts TileSource) Len() int {
	return len(ts.files)
}

// IsReady reports whether the source can be submitted: an archive, or a
// non-empty file set
func (ts TileSource) IsReady() bool {
	switch ts.kind {
	case TileSourceArchive:
		return ts.archive != nil
	case TileSourceFileSet:
		return len(ts.files) > 0
	default:
		return false
	}
}
