package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/ytget/mosaic-client/internal/logger"
	"github.com/ytget/mosaic-client/internal/model"
)

// Service route and multipart field names
const (
	MosaicPath        = "/api/mosaic"
	FieldTarget       = "target"
	FieldTilesArchive = "tiles_zip"
	FieldTilesFiles   = "tiles_files"
	MaxErrorBodyBytes = 64 << 10
	componentName     = "MosaicClient"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// ErrNotConfigured is returned when no service base URL is set
var ErrNotConfigured = errors.New("mosaic service URL is not configured")

// ServiceError is a non-success response from the mosaic service
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Result is a successful service response
type Result struct {
	Data        []byte
	ContentType string
}

// MosaicBuilder sends a mosaic request and returns the composite image
type MosaicBuilder interface {
	BuildMosaic(ctx context.Context, target *model.File, tiles model.TileSource, params model.SubmissionParameters) (*Result, error)
}

// Client talks to the mosaic service over HTTP
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the service at baseURL. An empty baseURL is
// allowed; every request then fails with ErrNotConfigured.
func New(baseURL string, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.Nop()
	}
	c := &Client{
		baseURL:    normalizeBaseURL(baseURL),
		httpClient: &http.Client{},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized service base URL
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL points the client at another service. Requests already in
// flight keep the URL they started with.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = normalizeBaseURL(baseURL)
	c.mu.Unlock()
}

func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// BuildMosaic posts the target, tiles and parameters as one multipart
// request. The request body is streamed, so large tile sets are not
// buffered in memory. No timeout is applied beyond ctx.
func (c *Client) BuildMosaic(ctx context.Context, target *model.File, tiles model.TileSource, params model.SubmissionParameters) (*Result, error) {
	baseURL := c.BaseURL()
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	if target == nil {
		return nil, fmt.Errorf("target image is required")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, target, tiles, params))
	}()

	url := baseURL + MosaicPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	defer pr.Close()
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	c.logger.Debug(componentName, "posting mosaic request", map[string]interface{}{
		"url":       url,
		"tile_mode": tiles.Kind().String(),
		"tiles":     tiles.Len(),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeServiceError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug(componentName, "mosaic received", map[string]interface{}{
		"status":   resp.StatusCode,
		"bytes":    len(data),
		"duration": time.Since(start).Round(time.Millisecond).String(),
	})

	return &Result{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

func writeForm(mw *multipart.Writer, target *model.File, tiles model.TileSource, params model.SubmissionParameters) error {
	if err := writeFile(mw, FieldTarget, target); err != nil {
		return err
	}

	switch tiles.Kind() {
	case model.TileSourceArchive:
		if err := writeFile(mw, FieldTilesArchive, tiles.Archive()); err != nil {
			return err
		}
	case model.TileSourceFileSet:
		for _, f := range tiles.Files() {
			if err := writeFile(mw, FieldTilesFiles, f); err != nil {
				return err
			}
		}
	}

	for _, field := range params.FormFields() {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return fmt.Errorf("write field %s: %w", field[0], err)
		}
	}

	return mw.Close()
}

func writeFile(mw *multipart.Writer, field string, file *model.File) error {
	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field, err)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("copy %s: %w", file.Name, err)
	}
	return nil
}

// decodeServiceError prefers the body's "error" field and falls back to
// the HTTP status
func decodeServiceError(resp *http.Response) *ServiceError {
	svcErr := &ServiceError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
	}

	var payload struct {
		Error string `json:"error"`
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodyBytes))
	if err != nil {
		return svcErr
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		svcErr.Message = payload.Error
	}
	return svcErr
}
