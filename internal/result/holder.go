package result

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"github.com/google/uuid"

	"github.com/ytget/mosaic-client/internal/logger"
	"github.com/ytget/mosaic-client/internal/platform"
)

// Artifact naming
const (
	DownloadFileName = "mosaic.jpg"
	TempFilePattern  = "mosaic-*"
	DefaultExtension = ".jpg"
	componentName    = "ResultHolder"
	contentTypePNG   = "image/png"
	contentTypeWebP  = "image/webp"
	extensionPNG     = ".png"
	extensionWebP    = ".webp"
)

// ErrNoArtifact is returned when no result is currently held
var ErrNoArtifact = errors.New("no mosaic result available")

// Artifact is a reference to a received mosaic. It stays readable only
// while it is the holder's current artifact; a released artifact's file
// no longer exists.
type Artifact struct {
	ID          string
	Path        string
	URI         fyne.URI
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

// Holder owns at most one live artifact. Setting a new artifact or
// clearing releases the previous one.
type Holder struct {
	mu      sync.Mutex
	dir     string
	current *Artifact
	logger  logger.Logger
}

// NewHolder creates a holder that stages artifacts in dir
func NewHolder(dir string, log logger.Logger) *Holder {
	if dir == "" {
		dir = os.TempDir()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Holder{dir: dir, logger: log}
}

// Set stores data as the new artifact and releases the previous one
func (h *Holder) Set(data []byte, contentType string) (*Artifact, error) {
	if err := platform.CreateDirectoryIfNotExists(h.dir); err != nil {
		return nil, fmt.Errorf("create result directory: %w", err)
	}

	f, err := os.CreateTemp(h.dir, TempFilePattern+extensionFor(contentType))
	if err != nil {
		return nil, fmt.Errorf("create result file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write result file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close result file: %w", err)
	}

	artifact := &Artifact{
		ID:          newArtifactID(),
		Path:        f.Name(),
		URI:         storage.NewFileURI(f.Name()),
		Size:        int64(len(data)),
		ContentType: contentType,
		CreatedAt:   time.Now(),
	}

	h.mu.Lock()
	previous := h.current
	h.current = artifact
	h.mu.Unlock()

	h.release(previous)
	h.logger.Info(componentName, "artifact stored", map[string]interface{}{
		"artifact_id": artifact.ID,
		"bytes":       artifact.Size,
	})
	return artifact, nil
}

// Clear releases the current artifact, if any
func (h *Holder) Clear() {
	h.mu.Lock()
	previous := h.current
	h.current = nil
	h.mu.Unlock()

	h.release(previous)
}

// Current returns the live artifact, or nil
func (h *Holder) Current() *Artifact {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// IsAlive reports whether a is still the live artifact
func (h *Holder) IsAlive(a *Artifact) bool {
	if a == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current != nil && h.current.ID == a.ID
}

// Bytes returns the contents of the live artifact
func (h *Holder) Bytes() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return nil, ErrNoArtifact
	}
	return os.ReadFile(h.current.Path)
}

// WriteTo copies the live artifact to w
func (h *Holder) WriteTo(w io.Writer) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return 0, ErrNoArtifact
	}

	f, err := os.Open(h.current.Path)
	if err != nil {
		return 0, fmt.Errorf("open result: %w", err)
	}
	defer f.Close()

	return io.Copy(w, f)
}

// SaveTo writes the live artifact into dir under the suggested download
// name, adding a numeric suffix if that name is taken. It returns the
// written path.
func (h *Holder) SaveTo(dir string) (string, error) {
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return "", ErrNoArtifact
	}

	target, err := platform.UniqueFilePath(dir, DownloadFileName)
	if err != nil {
		return "", err
	}

	src, err := os.Open(h.current.Path)
	if err != nil {
		return "", fmt.Errorf("open result: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, platform.DefaultFilePermissions)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("copy result: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", target, err)
	}

	h.logger.Info(componentName, "artifact saved", map[string]interface{}{
		"artifact_id": h.current.ID,
		"path":        target,
	})
	return target, nil
}

// Open shows the live artifact in the system image viewer
func (h *Holder) Open() error {
	h.mu.Lock()
	current := h.current
	h.mu.Unlock()
	if current == nil {
		return ErrNoArtifact
	}
	return platform.OpenFileWithDefaultApp(current.Path)
}

func (h *Holder) release(a *Artifact) {
	if a == nil {
		return
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		h.logger.Error(componentName, fmt.Errorf("release artifact: %w", err), map[string]interface{}{
			"artifact_id": a.ID,
		})
		return
	}
	h.logger.Debug(componentName, "artifact released", map[string]interface{}{
		"artifact_id": a.ID,
	})
}

func extensionFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, contentTypePNG):
		return extensionPNG
	case strings.HasPrefix(contentType, contentTypeWebP):
		return extensionWebP
	default:
		return DefaultExtension
	}
}

func newArtifactID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
