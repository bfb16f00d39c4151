package result

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/mosaic-client/internal/logger"
)

func TestSet_CreatesArtifact(t *testing.T) {
	h := NewHolder(t.TempDir(), logger.Nop())

	a, err := h.Set([]byte("JPEG"), "image/jpeg")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if a.ID == "" || a.Size != 4 {
		t.Errorf("Unexpected artifact: %+v", a)
	}
	if !strings.HasSuffix(a.Path, ".jpg") {
		t.Errorf("Expected .jpg staging file, got %s", a.Path)
	}
	if a.URI == nil || a.URI.Path() != a.Path {
		t.Error("Expected file URI pointing at the staged file")
	}
	if !h.IsAlive(a) || h.Current() != a {
		t.Error("New artifact should be current")
	}
}

func TestSet_ReleasesPrevious(t *testing.T) {
	h := NewHolder(t.TempDir(), nil)

	first, err := h.Set([]byte("one"), "image/jpeg")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	second, err := h.Set([]byte("two"), "image/png")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	if h.IsAlive(first) {
		t.Error("Previous artifact should be released")
	}
	if _, err := os.Stat(first.Path); !os.IsNotExist(err) {
		t.Error("Previous artifact file should be removed")
	}
	if !h.IsAlive(second) {
		t.Error("Second artifact should be live")
	}
	if filepath.Ext(second.Path) != ".png" {
		t.Errorf("Expected .png for image/png, got %s", second.Path)
	}
}

func TestClear(t *testing.T) {
	h := NewHolder(t.TempDir(), nil)
	a, err := h.Set([]byte("data"), "image/jpeg")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	h.Clear()

	if h.Current() != nil || h.IsAlive(a) {
		t.Error("Clear should release the artifact")
	}
	if _, err := os.Stat(a.Path); !os.IsNotExist(err) {
		t.Error("Artifact file should be removed")
	}

	// clearing twice is fine
	h.Clear()
}

func TestWriteToAndBytes(t *testing.T) {
	h := NewHolder(t.TempDir(), nil)

	var buf bytes.Buffer
	if _, err := h.WriteTo(&buf); err != ErrNoArtifact {
		t.Errorf("Expected ErrNoArtifact, got %v", err)
	}

	if _, err := h.Set([]byte("MOSAIC"), "image/jpeg"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	n, err := h.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != 6 || buf.String() != "MOSAIC" {
		t.Errorf("Unexpected content %q (%d bytes)", buf.String(), n)
	}

	data, err := h.Bytes()
	if err != nil || string(data) != "MOSAIC" {
		t.Errorf("Bytes() = %q, %v", data, err)
	}
}

func TestSaveTo(t *testing.T) {
	h := NewHolder(t.TempDir(), nil)
	downloads := filepath.Join(t.TempDir(), "Downloads")

	if _, err := h.SaveTo(downloads); err != ErrNoArtifact {
		t.Errorf("Expected ErrNoArtifact, got %v", err)
	}

	if _, err := h.Set([]byte("MOSAIC"), "image/jpeg"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	first, err := h.SaveTo(downloads)
	if err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if filepath.Base(first) != DownloadFileName {
		t.Errorf("Expected %s, got %s", DownloadFileName, filepath.Base(first))
	}
	content, err := os.ReadFile(first)
	if err != nil || string(content) != "MOSAIC" {
		t.Errorf("Saved content = %q, %v", content, err)
	}

	second, err := h.SaveTo(downloads)
	if err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if filepath.Base(second) != "mosaic (1).jpg" {
		t.Errorf("Expected suffixed name, got %s", filepath.Base(second))
	}
}

func TestOpen_NoArtifact(t *testing.T) {
	if err := NewHolder(t.TempDir(), nil).Open(); err != ErrNoArtifact {
		t.Errorf("Expected ErrNoArtifact, got %v", err)
	}
}
