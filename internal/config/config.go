package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restui/internal/executor"
	"github.com/studiowebux/restui/internal/logging"
	"github.com/studiowebux/restui/internal/types"
)

// LocalSettingsFile overrides the global settings when present in the
// working directory
const LocalSettingsFile = ".restui.yaml"

var (
	// ConfigDir is the global configuration directory (~/.restui)
	ConfigDir string

	// SettingsFile is the global settings file
	SettingsFile string

	// HistoryFile is the request history database
	HistoryFile string

	// LogFile receives logs of the terminal UI
	LogFile string
)

// Initialize sets up the configuration directory and files.
// It creates ~/.restui/ if it doesn't exist.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".restui"))
}

// InitializeAt sets up the configuration under dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	SettingsFile = filepath.Join(ConfigDir, "settings.yaml")
	HistoryFile = filepath.Join(ConfigDir, "history.db")
	LogFile = filepath.Join(ConfigDir, "restui.log")

	if err := os.MkdirAll(ConfigDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create default settings file if it doesn't exist
	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := SaveSettings(SettingsFile, DefaultSettings()); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}
	return nil
}

// Settings are the runtime options shared by every command
type Settings struct {
	BaseURL       string              `yaml:"baseUrl"`
	Timeout       time.Duration       `yaml:"timeout"`
	Insecure      bool                `yaml:"insecure,omitempty"`
	TLS           *executor.TLSConfig `yaml:"tls,omitempty"`
	History       bool                `yaml:"history"`
	LogLevel      string              `yaml:"logLevel"`
	MockInference bool                `yaml:"mockInference"`

	// Store seeds the store of every mounted app
	Store map[string]any `yaml:"store,omitempty"`
}

// DefaultSettings returns the settings used when no file sets a value
func DefaultSettings() Settings {
	return Settings{
		BaseURL:       "http://localhost:8080",
		Timeout:       executor.DefaultTimeout,
		LogLevel:      logging.DefaultLevel,
		MockInference: true,
	}
}

// GetSettingsFilePath returns the settings file path (local or global)
func GetSettingsFilePath() string {
	if _, err := os.Stat(LocalSettingsFile); err == nil {
		return LocalSettingsFile
	}
	return SettingsFile
}

// LoadSettings reads settings from path. Missing keys keep their defaults
// and a missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if settings.Store != nil {
		settings.Store, _ = types.NormalizeValue(settings.Store).(map[string]any)
	}
	return settings, nil
}

// SaveSettings writes settings to path
func SaveSettings(path string, settings Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}

// TLSConfig returns the TLS settings for transports, nil when none apply
func (s Settings) TLSConfig() *executor.TLSConfig {
	if s.TLS == nil && !s.Insecure {
		return nil
	}
	cfg := executor.TLSConfig{}
	if s.TLS != nil {
		cfg = *s.TLS
	}
	if s.Insecure {
		cfg.InsecureSkipVerify = true
	}
	return &cfg
}

// LoadApp reads and validates an app file (.yaml, .yml or .json)
func LoadApp(path string) (types.App, error) {
	var app types.App
	data, err := os.ReadFile(path)
	if err != nil {
		return app, fmt.Errorf("failed to read app file %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &app)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &app)
	default:
		return app, fmt.Errorf("unsupported app file extension %q", ext)
	}
	if err != nil {
		return app, fmt.Errorf("failed to parse app file %s: %w", path, err)
	}

	if err := types.Validate(app); err != nil {
		return app, fmt.Errorf("invalid app file %s: %w", path, err)
	}
	return app, nil
}
