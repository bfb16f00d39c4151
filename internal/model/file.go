package model

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"github.com/google/uuid"
)

// File type rules
const (
	ImageMimePrefix  = "image/"
	ArchiveExtension = ".zip"
	FileURIScheme    = "file"
	MemoryKeyPrefix  = "mem:"
)

// File is a reference to a user-selected file. It is either backed by a
// fyne URI (picker or drop) or held in memory.
type File struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
	URI      fyne.URI // nil for in-memory files

	content []byte
}

// NewFileFromURI creates a file reference from a picked or dropped URI
func NewFileFromURI(uri fyne.URI) *File {
	f := &File{
		ID:       newFileID(),
		Name:     uri.Name(),
		MimeType: uri.MimeType(),
		URI:      uri,
	}
	if uri.Scheme() == FileURIScheme {
		if info, err := os.Stat(uri.Path()); err == nil {
			f.Size = info.Size()
		}
	}
	return f
}

// NewFileFromPath creates a file reference for a local path
func NewFileFromPath(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return NewFileFromURI(storage.NewFileURI(path)), nil
}

// NewMemoryFile creates a file reference over an in-memory payload
func NewMemoryFile(name, mimeType string, content []byte) *File {
	return &File{
		ID:       newFileID(),
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(content)),
		content:  content,
	}
}

// Open returns a reader over the file contents
func (f *File) Open() (io.ReadCloser, error) {
	if f.URI == nil {
		return io.NopCloser(bytes.NewReader(f.content)), nil
	}
	if f.URI.Scheme() == FileURIScheme {
		return os.Open(f.URI.Path())
	}
	return storage.Reader(f.URI)
}

// IsImage reports whether the file's MIME type is an image type
func (f *File) IsImage() bool {
	return strings.HasPrefix(f.MimeType, ImageMimePrefix)
}

// IsArchive reports whether the file name ends in the archive extension
func (f *File) IsArchive() bool {
	return strings.HasSuffix(strings.ToLower(f.Name), ArchiveExtension)
}

// Key identifies the file contents for caching. URI-backed files share a key
// when the same path is picked again.
func (f *File) Key() string {
	if f.URI != nil {
		return fmt.Sprintf("%s#%d", f.URI.String(), f.Size)
	}
	return MemoryKeyPrefix + f.ID
}

func newFileID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
