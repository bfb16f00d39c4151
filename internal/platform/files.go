package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
	OSAndroid = "android"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
	CmdCommand      = "cmd"
	StartCommand    = "start"
	AndroidAM       = "am"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
	WindowsCmdFlag     = "/c"
)

// MaxUniqueAttempts bounds the " (n)" suffix search in UniqueFilePath
const MaxUniqueAttempts = 1000

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// runCommand is replaced in tests
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// OpenFileInManager opens the system file manager at the file's location
func OpenFileInManager(filePath string) error {
	absPath, err := existingAbsPath(filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case OSDarwin:
		return runCommand(OpenCommand, MacOSSelectFlag, absPath)
	case OSWindows:
		return runCommand(ExplorerCommand, WindowsSelectParam, absPath)
	case OSLinux:
		return openFileInManagerLinux(absPath)
	case OSAndroid:
		return runCommand(AndroidAM, "start", "-a", "android.intent.action.VIEW", "-d", "file://"+filepath.Dir(absPath))
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// openFileInManagerLinux opens directory containing file on Linux
// Note: File selection is not standardized on Linux, so we open the parent directory
func openFileInManagerLinux(filePath string) error {
	dir := filepath.Dir(filePath)

	if err := runCommand(XDGOpenCommand, dir); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return runCommand(fm, dir)
		}
	}

	return fmt.Errorf("no suitable file manager found")
}

// OpenFileWithDefaultApp opens the file with the default system viewer
func OpenFileWithDefaultApp(filePath string) error {
	absPath, err := existingAbsPath(filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case OSDarwin:
		return runCommand(OpenCommand, absPath)
	case OSWindows:
		return runCommand(CmdCommand, WindowsCmdFlag, StartCommand, "", absPath)
	case OSLinux:
		return runCommand(XDGOpenCommand, absPath)
	case OSAndroid:
		return runCommand(AndroidAM, "start", "-a", "android.intent.action.VIEW", "-d", "file://"+absPath, "-t", "image/*")
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	isAndroid := runtime.GOOS == OSAndroid ||
		os.Getenv("ANDROID_DATA") != "" ||
		os.Getenv("ANDROID_ROOT") != ""

	if isAndroid {
		return "/sdcard/Download", nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, "Downloads"), nil
}

// UniqueFilePath returns dir/name, or dir/"base (n).ext" when that name is taken
func UniqueFilePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i <= MaxUniqueAttempts; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}

func existingAbsPath(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path is empty")
	}
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("file does not exist: %w", err)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absPath, nil
}
