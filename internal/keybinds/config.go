package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the keybinding file name looked up in the config directory
const ConfigFile = "keybinds.yaml"

// Config represents the user's keybinding configuration. Each context
// maps an action to a comma separated list of keys; an action listed in a
// context loses its default keys there.
type Config struct {
	Version string            `yaml:"version,omitempty" json:"version,omitempty"`
	Global  map[string]string `yaml:"global,omitempty" json:"global,omitempty"`
	Normal  map[string]string `yaml:"normal,omitempty" json:"normal,omitempty"`
	Edit    map[string]string `yaml:"edit,omitempty" json:"edit,omitempty"`
	Confirm map[string]string `yaml:"confirm,omitempty" json:"confirm,omitempty"`
	Help    map[string]string `yaml:"help,omitempty" json:"help,omitempty"`
}

// sections pairs each context with its part of the config
func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal:  c.Global,
		ContextNormal:  c.Normal,
		ContextEdit:    c.Edit,
		ContextConfirm: c.Confirm,
		ContextHelp:    c.Help,
	}
}

// LoadConfig loads keybinding configuration from a YAML or JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("invalid %s format: %w", filepath.Base(path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("invalid %s format: %w", filepath.Base(path), err)
		}
	default:
		return nil, fmt.Errorf("unsupported keybinds file extension %q", ext)
	}
	return &config, nil
}

// SaveConfig saves keybinding configuration as YAML
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// splitKeys splits "up, k" into its keys
func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ApplyConfig applies user configuration to a registry. User bindings
// replace the default keys of the actions they name.
func ApplyConfig(registry *Registry, config *Config) error {
	if result := NewValidator().ValidateConfig(config); result.HasErrors() {
		return fmt.Errorf("invalid keybinds:\n%s", result.String())
	}
	for context, bindings := range config.sections() {
		for actionStr, keys := range bindings {
			action := Action(actionStr)
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, splitKeys(keys), action)
		}
	}
	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err != nil {
		return registry, nil
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load keybinds: %w", err)
	}
	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}
	return registry, nil
}

// ExportConfig describes the bindings of registry as a config file
func ExportConfig(registry *Registry) *Config {
	config := &Config{Version: "1"}
	export := func(context Context) map[string]string {
		byAction := map[Action][]string{}
		for _, b := range registry.ListBindings(context) {
			if b.Context == context {
				byAction[b.Action] = append(byAction[b.Action], b.Key)
			}
		}
		if len(byAction) == 0 {
			return nil
		}
		out := make(map[string]string, len(byAction))
		for action, keys := range byAction {
			sort.Strings(keys)
			out[string(action)] = strings.Join(keys, ",")
		}
		return out
	}
	config.Global = export(ContextGlobal)
	config.Normal = export(ContextNormal)
	config.Edit = export(ContextEdit)
	config.Confirm = export(ContextConfirm)
	config.Help = export(ContextHelp)
	return config
}

// GetDefaultConfigPath returns the keybinds file inside dir
func GetDefaultConfigPath(dir string) string {
	return filepath.Join(dir, ConfigFile)
}
