package types

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// HTTP-like methods accepted by actions and read rules
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodDelete = "DELETE"
	MethodUpload = "UPLOAD"
)

// Field display types
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldSelect   = "select"
	FieldTextarea = "textarea"
	FieldFile     = "file"
)

// Authentication modes
const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// App is the root of a declarative application tree
type App struct {
	Title    string    `json:"title" yaml:"title"`
	Blurb    string    `json:"blurb,omitempty" yaml:"blurb,omitempty"`
	Groups   []Group   `json:"groups,omitempty" yaml:"groups,omitempty"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Group is a titled container of sections
type Group struct {
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Blurb    string    `json:"blurb,omitempty" yaml:"blurb,omitempty"`
	Layout   *Layout   `json:"layout,omitempty" yaml:"layout,omitempty"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Layout carries presentation hints (grid columns, sticky positioning)
type Layout struct {
	Grid      int    `json:"grid,omitempty" yaml:"grid,omitempty"`
	Gap       int    `json:"gap,omitempty" yaml:"gap,omitempty"`
	Sticky    bool   `json:"sticky,omitempty" yaml:"sticky,omitempty"`
	Top       string `json:"top,omitempty" yaml:"top,omitempty"`
	MaxHeight string `json:"maxHeight,omitempty" yaml:"maxHeight,omitempty"`
	Height    string `json:"height,omitempty" yaml:"height,omitempty"`
	Width     string `json:"width,omitempty" yaml:"width,omitempty"`
}

// Section describes one display region of an app
type Section struct {
	ID         string            `json:"id,omitempty" yaml:"id,omitempty"`
	Title      string            `json:"title" yaml:"title"`
	Read       *ReadRule         `json:"read,omitempty" yaml:"read,omitempty"`
	Query      map[string]any    `json:"query,omitempty" yaml:"query,omitempty"`
	Mock       *Mock             `json:"mock,omitempty" yaml:"mock,omitempty"`
	Display    Display           `json:"display,omitempty" yaml:"display,omitempty"`
	Meta       *Meta             `json:"meta,omitempty" yaml:"meta,omitempty"`
	Fields     FieldList         `json:"fields,omitempty" yaml:"fields,omitempty"`
	Actions    []Action          `json:"actions,omitempty" yaml:"actions,omitempty"`
	RowFields  FieldList         `json:"rowFields,omitempty" yaml:"rowFields,omitempty"`
	RowActions []Action          `json:"rowActions,omitempty" yaml:"rowActions,omitempty"`
	StoreMap   map[string]string `json:"store,omitempty" yaml:"store,omitempty"`
	Links      []Link            `json:"links,omitempty" yaml:"links,omitempty"`
	HTML       string            `json:"html,omitempty" yaml:"html,omitempty"`
	Hidden     bool              `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	NoOutput   bool              `json:"noOutput,omitempty" yaml:"noOutput,omitempty"`
	NoRefresh  bool              `json:"noRefresh,omitempty" yaml:"noRefresh,omitempty"`
	Live       *LiveConfig       `json:"live,omitempty" yaml:"live,omitempty"`
	Layout     *Layout           `json:"layout,omitempty" yaml:"layout,omitempty"`

	// OnRender runs after every refresh pass (charts, maps, custom widgets)
	OnRender RenderHook `json:"-" yaml:"-"`
}

// Key returns the stable section identifier
func (s *Section) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return Slugify(s.Title)
}

// ReadsData reports whether a refresh of this section produces data,
// which is what makes it a target of the default post-action refresh
func (s *Section) ReadsData() bool {
	if s.Read != nil {
		return true
	}
	if s.Display.From != "" {
		return true
	}
	return s.Display.Kind == DisplayStoreValue
}

// ReadRule is the method + path pair a section reads from
type ReadRule struct {
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	Path   string `json:"path" yaml:"path"`
}

// MockGenerator builds placeholder data from the current store
type MockGenerator func(store map[string]any) (any, error)

// Mock is the fallback payload used when a section read fails
type Mock struct {
	Value    any           `json:"value,omitempty" yaml:"value,omitempty"`
	Generate MockGenerator `json:"-" yaml:"-"`
}

// Meta renders a summary line above the section list
type Meta struct {
	Template string `json:"template" yaml:"template"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Link is a static navigation link shown in a section
type Link struct {
	Label  string `json:"label" yaml:"label"`
	Href   string `json:"href" yaml:"href"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// RenderHook is invoked after a section is re-rendered
type RenderHook func(data any, store map[string]any)

// Action is one user-triggerable operation
type Action struct {
	Label          string            `json:"label" yaml:"label"`
	Method         string            `json:"method,omitempty" yaml:"method,omitempty"`
	Path           string            `json:"path,omitempty" yaml:"path,omitempty"`
	Confirm        string            `json:"confirm,omitempty" yaml:"confirm,omitempty"`
	Fields         FieldList         `json:"fields,omitempty" yaml:"fields,omitempty"`
	Body           map[string]any    `json:"body,omitempty" yaml:"body,omitempty"`
	Auth           *Auth             `json:"auth,omitempty" yaml:"auth,omitempty"`
	StoreMap       map[string]string `json:"store,omitempty" yaml:"store,omitempty"`
	HeaderStoreMap map[string]string `json:"headersFrom,omitempty" yaml:"headersFrom,omitempty"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Set            map[string]any    `json:"set,omitempty" yaml:"set,omitempty"`
	Adjust         []Adjustment      `json:"adjust,omitempty" yaml:"adjust,omitempty"`
	Credentials    bool              `json:"creds,omitempty" yaml:"creds,omitempty"`
	Local          bool              `json:"local,omitempty" yaml:"local,omitempty"`
	RefreshAll     bool              `json:"refreshAll,omitempty" yaml:"refreshAll,omitempty"`

	// Custom replaces request building and execution entirely
	Custom CustomHandler `json:"-" yaml:"-"`
}

// HTTPMethod returns the upper-cased method, POST when unset
func (a *Action) HTTPMethod() string {
	if a.Method == "" {
		return MethodPost
	}
	return strings.ToUpper(a.Method)
}

// Auth injects an Authorization header from body or store values
type Auth struct {
	Mode     string `json:"mode" yaml:"mode"`
	UserKey  string `json:"user,omitempty" yaml:"user,omitempty"`
	PassKey  string `json:"pass,omitempty" yaml:"pass,omitempty"`
	TokenKey string `json:"token,omitempty" yaml:"token,omitempty"`
}

// Adjustment is an optimistic numeric store update.
// Delta is a number or a template string rendered against the store.
type Adjustment struct {
	Key   string   `json:"key" yaml:"key"`
	Delta any      `json:"delta" yaml:"delta"`
	Min   *float64 `json:"min,omitempty" yaml:"min,omitempty"`
}

// Field is the canonical input descriptor
type Field struct {
	Key         string       `json:"key" yaml:"key"`
	Label       string       `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Type        string       `json:"type,omitempty" yaml:"type,omitempty"`
	Value       any          `json:"value,omitempty" yaml:"value,omitempty"`
	Rows        int          `json:"rows,omitempty" yaml:"rows,omitempty"`
	Options     []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	OptionsFrom *OptionsFrom `json:"optionsFrom,omitempty" yaml:"optionsFrom,omitempty"`
}

// Option is one entry of a select field
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// OptionsFrom sources select options from a list in the store
type OptionsFrom struct {
	Store string `json:"store" yaml:"store"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// LiveConfig declares persistent bidirectional channels for a section
type LiveConfig struct {
	URL         string        `json:"url,omitempty" yaml:"url,omitempty"`
	Message     string        `json:"message,omitempty" yaml:"message,omitempty"`
	AutoConnect bool          `json:"autoConnect,omitempty" yaml:"autoConnect,omitempty"`
	Clients     []LiveClient  `json:"clients,omitempty" yaml:"clients,omitempty"`
	History     string        `json:"history,omitempty" yaml:"history,omitempty"`
	PollHistory time.Duration `json:"pollHistory,omitempty" yaml:"pollHistory,omitempty"`
}

// LiveClient is one named channel opened eagerly at mount
type LiveClient struct {
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// CustomHandler replaces the request pipeline for an action
type CustomHandler func(ctx context.Context, c CustomContext) error

// CustomContext is what a custom handler may touch
type CustomContext struct {
	Body      map[string]any
	Store     StoreAccess
	Request   func(ctx context.Context, path string, opts RequestOptions) *Envelope
	SetOutput func(text string)
	SetStatus func(env *Envelope)
}

// RequestOptions configures the minimal request helper given to custom handlers
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    map[string]any
}

// StoreAccess is the subset of the store handed to caller code
type StoreAccess interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Snapshot() map[string]any
}

var (
	slugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify derives a section id from a title
func Slugify(value string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(value), "-")
	return strings.Trim(slug, "-")
}
