package types

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Envelope is the normalized result of every request attempt.
// Display and store consumers only ever see this shape.
type Envelope struct {
	OK      bool              `json:"ok"`
	Status  int               `json:"status"`
	Data    any               `json:"data,omitempty"`
	HasData bool              `json:"-"`
	Error   *ErrorBody        `json:"error,omitempty"`
	Raw     string            `json:"raw"`
	JSON    any               `json:"json"`
	Headers map[string]string `json:"headers"`

	// Duration of the round trip in milliseconds
	Duration int64 `json:"duration,omitempty"`
}

// ErrorBody is the error member of a response body
type ErrorBody struct {
	Message string `json:"message"`
}

// ErrorMessage returns the error message or "" when there is none
func (e *Envelope) ErrorMessage() string {
	if e == nil || e.Error == nil {
		return ""
	}
	return e.Error.Message
}

// Header returns a response header by case-insensitive name
func (e *Envelope) Header(name string) string {
	if e == nil || e.Headers == nil {
		return ""
	}
	return e.Headers[strings.ToLower(name)]
}

// FileHandle references a file picked for a file input
type FileHandle struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
}

// UnmarshalYAML lets a read rule be a bare path
func (r *ReadRule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Method = MethodGet
		r.Path = node.Value
		return nil
	}
	type plain ReadRule
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = ReadRule(p)
	return nil
}

// UnmarshalJSON lets a read rule be a bare path
func (r *ReadRule) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		r.Method = MethodGet
		r.Path = path
		return nil
	}
	type plain ReadRule
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ReadRule(p)
	return nil
}

// UnmarshalYAML treats the whole node as the static mock payload
func (m *Mock) UnmarshalYAML(node *yaml.Node) error {
	var value any
	if err := node.Decode(&value); err != nil {
		return err
	}
	m.Value = normalizeYAML(value)
	return nil
}

// UnmarshalJSON treats the whole value as the static mock payload
func (m *Mock) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &m.Value)
}

// normalizeYAML converts decoded YAML values to the JSON-like shapes
// (map[string]any, []any, float64) the resolver expects
func normalizeYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if s, ok := key.(string); ok {
				out[s] = normalizeYAML(item)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeYAML(item)
		}
		return out
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}

// NormalizeValue exposes the YAML normalization to loaders
func NormalizeValue(value any) any {
	return normalizeYAML(value)
}
