package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetHomeDownloadsDir(t *testing.T) {
	downloadsDir, err := GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads directory: %v", err)
	}

	if downloadsDir == "" {
		t.Fatal("Downloads directory is empty")
	}

	if !strings.HasSuffix(downloadsDir, "Download") && filepath.Base(downloadsDir) != "Downloads" {
		t.Errorf("Expected a downloads directory, got: %s", downloadsDir)
	}
}

func TestOpenFileInManager_NonExistentFile(t *testing.T) {
	nonExistentFile := filepath.Join(t.TempDir(), "nonexistent.jpg")

	err := OpenFileInManager(nonExistentFile)
	if err == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestOpenFileWithDefaultApp_UsesSystemCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mosaic.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), DefaultFilePermissions); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var calls [][]string
	original := runCommand
	runCommand = func(name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		return nil
	}
	defer func() { runCommand = original }()

	if err := OpenFileWithDefaultApp(path); err != nil {
		t.Skipf("platform not supported here: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("Expected one command, got %d", len(calls))
	}
	last := calls[0]
	found := false
	for _, arg := range last {
		if strings.HasSuffix(arg, "mosaic.jpg") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected command to reference the file, got %v", last)
	}
}

func TestOpenFileWithDefaultApp_EmptyPath(t *testing.T) {
	if err := OpenFileWithDefaultApp(""); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestUniqueFilePath(t *testing.T) {
	dir := t.TempDir()

	first, err := UniqueFilePath(dir, "mosaic.jpg")
	if err != nil {
		t.Fatalf("UniqueFilePath: %v", err)
	}
	if filepath.Base(first) != "mosaic.jpg" {
		t.Errorf("Expected mosaic.jpg, got %s", filepath.Base(first))
	}
	if err := os.WriteFile(first, nil, DefaultFilePermissions); err != nil {
		t.Fatalf("write: %v", err)
	}

	second, err := UniqueFilePath(dir, "mosaic.jpg")
	if err != nil {
		t.Fatalf("UniqueFilePath: %v", err)
	}
	if filepath.Base(second) != "mosaic (1).jpg" {
		t.Errorf("Expected 'mosaic (1).jpg', got %s", filepath.Base(second))
	}
}
