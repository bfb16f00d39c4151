package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ytget/mosaic-client/internal/platform"
)

// Settings keys
const (
	KeyAPIURL           = "api_url"
	KeyLogLevel         = "log_level"
	KeyProgressInterval = "progress_interval"
	KeyDownloadDir      = "download_directory"
	KeyTempDir          = "temp_directory"
	KeyLanguage         = "language"
)

// Environment
const (
	EnvPrefix       = "MOSAIC"
	EnvConfigFile   = "MOSAIC_CONFIG"
	EnvAPIURL       = "MOSAIC_API_URL"
	EnvLegacyAPIURL = "NEXT_PUBLIC_API_URL"
	ConfigType      = "toml"
)

// Default values
const (
	DefaultLogLevel         = "info"
	DefaultProgressInterval = 350 * time.Millisecond
	MinProgressInterval     = 50 * time.Millisecond
	DefaultLanguage         = "system"
	FallbackDownloadDir     = "mosaic-downloads"
	TempDirName             = "mosaic-client"
)

// Settings holds the client configuration for the current session. Setters
// only change the in-memory values; nothing is written back to disk.
type Settings struct {
	v *viper.Viper
}

// Load reads configuration from an optional TOML file and the environment.
// Env var overrides use prefix MOSAIC_. A missing service URL is not an error.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigType(ConfigType)

	if path := os.Getenv(EnvConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if home, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "mosaic-client"))
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return NewSettings(v), nil
}

// NewSettings wraps a viper instance and registers defaults and env bindings
func NewSettings(v *viper.Viper) *Settings {
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyProgressInterval, DefaultProgressInterval)
	v.SetDefault(KeyLanguage, DefaultLanguage)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the web client's variable still works as a fallback
	_ = v.BindEnv(KeyAPIURL, EnvAPIURL, EnvLegacyAPIURL)

	return &Settings{v: v}
}

// GetAPIBaseURL returns the mosaic service base URL without trailing slashes
func (s *Settings) GetAPIBaseURL() string {
	return strings.TrimRight(strings.TrimSpace(s.v.GetString(KeyAPIURL)), "/")
}

// HasAPIBaseURL reports whether a service URL is configured
func (s *Settings) HasAPIBaseURL() bool {
	return s.GetAPIBaseURL() != ""
}

// SetAPIBaseURL overrides the service URL for this session
func (s *Settings) SetAPIBaseURL(url string) {
	s.v.Set(KeyAPIURL, url)
}

// GetLogLevel returns the configured log level name
func (s *Settings) GetLogLevel() string {
	return s.v.GetString(KeyLogLevel)
}

// GetProgressInterval returns the progress simulation tick interval
func (s *Settings) GetProgressInterval() time.Duration {
	interval := s.v.GetDuration(KeyProgressInterval)
	if interval <= 0 {
		return DefaultProgressInterval
	}
	if interval < MinProgressInterval {
		return MinProgressInterval
	}
	return interval
}

// GetDownloadDirectory returns where downloaded mosaics are saved
func (s *Settings) GetDownloadDirectory() string {
	if dir := s.v.GetString(KeyDownloadDir); dir != "" {
		return dir
	}
	dir, err := platform.GetHomeDownloadsDir()
	if err != nil {
		return filepath.Join(os.TempDir(), FallbackDownloadDir)
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.v.Set(KeyDownloadDir, dir)
}

// GetTempDirectory returns where result artifacts are staged while displayed
func (s *Settings) GetTempDirectory() string {
	if dir := s.v.GetString(KeyTempDir); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), TempDirName)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.v.GetString(KeyLanguage)
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.v.Set(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"mk":     "Македонски",
	}
}
