package types

import (
	"fmt"
	"strings"
)

// DisplayKind selects how a section materializes its data
type DisplayKind int

const (
	// DisplayUnset lets the engine infer a display at first refresh
	DisplayUnset DisplayKind = iota
	DisplayNone
	DisplayList
	DisplayTable
	DisplayKPI
	DisplayJSON
	DisplayText
	DisplayMarkdown
	DisplayCustom
	DisplayAuto
	DisplayStoreValue
)

var displayNames = map[DisplayKind]string{
	DisplayUnset:      "",
	DisplayNone:       "none",
	DisplayList:       "list",
	DisplayTable:      "table",
	DisplayKPI:        "kpi",
	DisplayJSON:       "json",
	DisplayText:       "text",
	DisplayMarkdown:   "markdown",
	DisplayCustom:     "custom",
	DisplayAuto:       "auto",
	DisplayStoreValue: "store",
}

// String returns the config name of the kind
func (k DisplayKind) String() string {
	return displayNames[k]
}

// ParseDisplayKind maps a config name back to a kind
func ParseDisplayKind(name string) (DisplayKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range displayNames {
		if n == name {
			return kind, nil
		}
	}
	return DisplayUnset, fmt.Errorf("unknown display kind %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (k DisplayKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *DisplayKind) UnmarshalText(text []byte) error {
	kind, err := ParseDisplayKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Display is the single display rule of a section.
// Only the fields relevant to Kind are read.
type Display struct {
	Kind DisplayKind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Template is the per-row template (list) or value template (store)
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// From sources list/table rows from a store path instead of the response
	From string `json:"from,omitempty" yaml:"from,omitempty"`

	// Path resolves the payload for kpi/json/text/markdown/auto views
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Text is the literal (possibly templated) text/markdown body
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	KPIs []KPI `json:"kpis,omitempty" yaml:"kpis,omitempty"`

	// Key is the store key shown by a store-value view
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	Render CustomRenderer `json:"-" yaml:"-"`
}

// IsSet reports whether the display rule was declared explicitly
func (d Display) IsSet() bool {
	return d.Kind != DisplayUnset
}

// KPI is one labelled figure of a KPI view
type KPI struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`

	Compute func(data any, store map[string]any) any `json:"-" yaml:"-"`
}

// CustomRenderer produces the text of a custom view
type CustomRenderer func(data any, store map[string]any) string
