package preview

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"fyne.io/fyne/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/mosaic-client/internal/logger"
	"github.com/ytget/mosaic-client/internal/model"
)

// Generator limits and cache settings
const (
	MaxBatchPreviews     = 8
	DefaultCacheTTL      = 30 * time.Minute
	CacheCleanupInterval = 1 * time.Hour
	DataURIPrefix        = "data:"
	DefaultMimeType      = "application/octet-stream"
	componentName        = "Preview"
)

// Preview is display data for a selected file. The zero value is the
// empty preview produced when a file cannot be read.
type Preview struct {
	Name     string
	MimeType string
	DataURI  string
	Content  []byte
}

// IsEmpty reports whether the preview carries no data
func (p Preview) IsEmpty() bool {
	return len(p.Content) == 0
}

// Resource returns the preview as a fyne resource, or nil when empty
func (p Preview) Resource() fyne.Resource {
	if p.IsEmpty() {
		return nil
	}
	return fyne.NewStaticResource(p.Name, p.Content)
}

// Generator turns selected files into previews. Results are cached by file
// identity, so picking the same file again does not read it twice.
type Generator struct {
	cache  *cache.Cache
	logger logger.Logger
}

// NewGenerator creates a preview generator
func NewGenerator(log logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		cache:  cache.New(DefaultCacheTTL, CacheCleanupInterval),
		logger: log,
	}
}

// Generate reads the file and returns its preview. Read failures are logged
// and yield the empty preview; Generate never fails.
func (g *Generator) Generate(ctx context.Context, file *model.File) Preview {
	if file == nil {
		return Preview{}
	}
	key := file.Key()
	if cached, found := g.cache.Get(key); found {
		return cached.(Preview)
	}

	p, err := g.read(ctx, file)
	if err != nil {
		g.logger.Warning(componentName, "preview unavailable", map[string]interface{}{
			"file":  file.Name,
			"error": err.Error(),
		})
		return Preview{}
	}

	g.cache.Set(key, p, cache.DefaultExpiration)
	return p
}

// GenerateBatch returns previews for at most the first MaxBatchPreviews
// files, in input order. Files are read in parallel.
func (g *Generator) GenerateBatch(ctx context.Context, files []*model.File) []Preview {
	limited := files
	if len(limited) > MaxBatchPreviews {
		limited = limited[:MaxBatchPreviews]
	}

	previews := make([]Preview, len(limited))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, file := range limited {
		i, file := i, file
		eg.Go(func() error {
			previews[i] = g.Generate(egCtx, file)
			return nil
		})
	}
	_ = eg.Wait()

	return previews
}

// Forget drops any cached preview for the file
func (g *Generator) Forget(file *model.File) {
	if file != nil {
		g.cache.Delete(file.Key())
	}
}

func (g *Generator) read(ctx context.Context, file *model.File) (Preview, error) {
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}

	rc, err := file.Open()
	if err != nil {
		return Preview{}, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return Preview{}, fmt.Errorf("read %s: %w", file.Name, err)
	}
	if len(content) == 0 {
		return Preview{}, fmt.Errorf("%s is empty", file.Name)
	}

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	return Preview{
		Name:     file.Name,
		MimeType: mimeType,
		DataURI:  DataURIPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content),
		Content:  content,
	}, nil
}
