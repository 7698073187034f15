// Package view holds immutable snapshots of a mounted app. Presentation
// layers (terminal UI, CLI) read snapshots and never touch the engine.
package view

import "github.com/studiowebux/restui/internal/types"

// App is a full snapshot of a mounted app
type App struct {
	Title  string
	Blurb  string
	Status Status
	Groups []Group
}

// Status is the shared message + hint line
type Status struct {
	Message string
	Hint    string
}

// Group is a titled run of sections. Ungrouped apps have one untitled group.
type Group struct {
	Title    string
	Blurb    string
	Layout   *types.Layout
	Sections []Section
}

// Section is the rendered state of one section
type Section struct {
	ID     string
	Title  string
	Layout *types.Layout
	Links  []types.Link
	HTML   string

	// Mocked is set while the section shows synthesized data
	Mocked bool

	// Meta is the rendered summary line, empty when not configured
	Meta string

	Inputs  []Input
	Actions []Action
	Blocks  []Block

	// Output is the raw text of the last action, "-" before any
	Output     string
	ShowOutput bool

	Live *Live

	// Err is the reason of the last failed refresh
	Err string
}

// Input is one bound input as shown to the user
type Input struct {
	Key         string
	Type        string
	Label       string
	Placeholder string
	Value       string
	Rows        int
	Options     []types.Option
	FileName    string
}

// Action is one button and its own inputs
type Action struct {
	Label   string
	Method  string
	Confirm string
	Inputs  []Input
}

// Block is one data view of a section
type Block interface {
	blockKind() string
}

// List shows one card per record. Empty is set instead of Rows when there
// is nothing to show.
type List struct {
	Rows  []Row
	Empty string
}

// Row is one list record
type Row struct {
	Index   int
	Text    string
	HTML    bool
	Inputs  []Input
	Actions []Action
}

// Table shows records as columns
type Table struct {
	Columns []string
	Rows    [][]string
}

// KPIs is a row of labelled figures
type KPIs struct {
	Items []KPI
}

// KPI is one labelled figure
type KPI struct {
	Label string
	Value string
}

// JSON is an indented JSON dump
type JSON struct {
	Text string
}

// Text is plain text
type Text struct {
	Text string
}

// Markdown is markdown source, rendered for the terminal it is shown on
type Markdown struct {
	Text string
}

// Custom is the output of a caller-supplied renderer
type Custom struct {
	Text string
}

// AutoKind is the shape an auto view inferred
type AutoKind int

const (
	AutoEmpty AutoKind = iota
	AutoItems
	AutoGrid
	AutoValue
)

// Auto is a view whose shape follows the payload
type Auto struct {
	Kind  AutoKind
	Items []string
	Cells []KPI
	Value string
}

func (List) blockKind() string     { return "list" }
func (Table) blockKind() string    { return "table" }
func (KPIs) blockKind() string     { return "kpi" }
func (JSON) blockKind() string     { return "json" }
func (Text) blockKind() string     { return "text" }
func (Markdown) blockKind() string { return "markdown" }
func (Custom) blockKind() string   { return "custom" }
func (Auto) blockKind() string     { return "auto" }

// Kind returns the display name of a block
func Kind(b Block) string {
	if b == nil {
		return ""
	}
	return b.blockKind()
}

// Live is the state of a live channel section
type Live struct {
	// Single channel mode
	Connected  bool
	Message    string
	Last       string
	Transcript []string

	// Multi client mode
	Clients []LiveClient

	HasHistory bool
	History    []string
}

// LiveClient is one named channel
type LiveClient struct {
	Label     string
	Name      string
	Message   string
	Connected bool
	Last      string
}

// Section returns the section with id, if present
func (a App) Section(id string) (Section, bool) {
	for _, g := range a.Groups {
		for _, s := range g.Sections {
			if s.ID == id {
				return s, true
			}
		}
	}
	return Section{}, false
}

// Sections returns every section in display order
func (a App) Sections() []Section {
	var out []Section
	for _, g := range a.Groups {
		out = append(out, g.Sections...)
	}
	return out
}
