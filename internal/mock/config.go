package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restui/internal/types"
)

// LoadConfig loads a mock configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
		// YAML decodes ints; JSON bodies should look the same either way
		for i := range config.Routes {
			config.Routes[i].JSON = types.NormalizeValue(config.Routes[i].JSON)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	// Validate config
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// validateConfig validates the mock configuration
func validateConfig(config *Config) error {
	if len(config.Routes) == 0 && config.Socket == nil {
		return fmt.Errorf("no routes defined")
	}

	for i, route := range config.Routes {
		if route.Method == "" {
			return fmt.Errorf("route %d: method is required", i)
		}
		if route.Path == "" {
			return fmt.Errorf("route %d: path is required", i)
		}
		switch route.PathType {
		case "", "exact", "prefix":
		case "regex":
			if _, err := regexp.Compile(route.Path); err != nil {
				return fmt.Errorf("route %d: invalid regex: %w", i, err)
			}
		default:
			return fmt.Errorf("route %d: pathType must be 'exact', 'prefix', or 'regex'", i)
		}
		if route.JSON != nil && (route.Body != "" || route.BodyFile != "") {
			return fmt.Errorf("route %d: json cannot be combined with body or bodyFile", i)
		}
	}

	if config.RateLimit < 0 {
		return fmt.Errorf("rateLimit must not be negative")
	}

	return nil
}

// SaveConfig saves a mock configuration to a file
func SaveConfig(config *Config, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SampleConfig returns a starter configuration for `restui serve --init`
func SampleConfig() *Config {
	return &Config{
		Port:    8080,
		Host:    "localhost",
		Logging: true,
		Routes: []Route{
			{
				Name:   "List items",
				Method: "GET",
				Path:   "/items",
				JSON: map[string]any{"data": []any{
					map[string]any{"id": float64(1), "name": "First"},
					map[string]any{"id": float64(2), "name": "Second"},
				}},
			},
			{
				Name:   "Create item",
				Method: "POST",
				Path:   "/items",
				Status: 201,
				JSON:   map[string]any{"data": map[string]any{"id": float64(3)}},
			},
		},
		Socket: &Socket{Path: DefaultSocketPath, History: "/messages", Prefix: "echo "},
	}
}
