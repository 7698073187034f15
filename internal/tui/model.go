package tui

import (
	"context"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/studiowebux/restui/internal/app"
	"github.com/studiowebux/restui/internal/keybinds"
	"github.com/studiowebux/restui/internal/logging"
	"github.com/studiowebux/restui/internal/pipeline"
	"github.com/studiowebux/restui/internal/view"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeEdit
	ModeConfirm
	ModeHelp
)

// context returns the keybinding context of a mode
func (m Mode) context() keybinds.Context {
	switch m {
	case ModeEdit:
		return keybinds.ContextEdit
	case ModeConfirm:
		return keybinds.ContextConfirm
	case ModeHelp:
		return keybinds.ContextHelp
	}
	return keybinds.ContextNormal
}

// Messages

type tickMsg time.Time

type mountedMsg struct{ err error }

type refreshedMsg struct {
	section string
	err     error
}

type actionDoneMsg struct {
	label  string
	result *pipeline.Result
	err    error
}

type liveDoneMsg struct {
	what string
	err  error
}

type confirmRequestMsg struct {
	message string
	reply   chan bool
}

// Confirmer asks the running program to confirm actions. It is handed to
// the Runtime before the program exists and attached once it does.
type Confirmer struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewConfirmer creates a confirmer that declines until attached
func NewConfirmer() *Confirmer {
	return &Confirmer{}
}

// Attach routes confirmation requests to p
func (c *Confirmer) Attach(p *tea.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send = p.Send
}

// Confirm shows message in the UI and blocks until it is answered
func (c *Confirmer) Confirm(ctx context.Context, message string) bool {
	c.mu.Lock()
	send := c.send
	c.mu.Unlock()
	if send == nil {
		return false
	}

	reply := make(chan bool, 1)
	send(confirmRequestMsg{message: message, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

// Options configure the TUI
type Options struct {
	Keys *keybinds.Registry
	Log  logrus.FieldLogger
}

// Model represents the TUI state
type Model struct {
	ctx  context.Context
	rt   *app.Runtime
	keys *keybinds.Registry
	log  logrus.FieldLogger
	mode Mode

	// Latest snapshot and focus
	snap         view.App
	sections     []view.Section
	sectionIndex int
	items        []focusItem
	itemIndex    int

	// Editor state
	editor  textinput.Model
	editing focusItem

	// Pending confirmation
	confirmMessage string
	confirmReply   chan bool

	// Views
	mainView viewport.Model
	helpView viewport.Model

	// UI state
	width     int
	height    int
	statusMsg string
	errorMsg  string
	loading   bool

	// followFocus scrolls the focused target into view on the next render
	followFocus bool

	copy func(string) error
}

// New creates a TUI model for a runtime. The runtime is mounted by Init
// when it is not mounted yet.
func New(ctx context.Context, rt *app.Runtime, opts Options) *Model {
	keys := opts.Keys
	if keys == nil {
		keys = keybinds.NewDefaultRegistry()
	}
	editor := textinput.New()
	editor.Prompt = "> "

	m := &Model{
		ctx:      ctx,
		rt:       rt,
		keys:     keys,
		log:      logging.OrDiscard(opts.Log),
		mode:     ModeNormal,
		editor:   editor,
		mainView: viewport.New(80, 20),
		helpView: viewport.New(80, 20),
		copy:     clipboard.WriteAll,
	}
	m.syncSnapshot()
	return m
}

// Init mounts the runtime and starts pulling snapshots
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.mount(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(SnapshotInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) mount() tea.Cmd {
	if m.rt.Mounted() {
		return nil
	}
	m.loading = true
	return func() tea.Msg {
		return mountedMsg{err: m.rt.Mount(m.ctx)}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.followFocus = true
		m.updateViewport()

	case tickMsg:
		m.syncSnapshot()
		cmd = tick()

	case mountedMsg:
		m.loading = false
		m.setError(msg.err)
		m.syncSnapshot()

	case refreshedMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("Reloaded " + msg.section)
		}
		m.syncSnapshot()

	case actionDoneMsg:
		m.loading = false
		m.errorMsg = ""
		switch {
		case msg.err != nil && msg.result == nil:
			m.setError(msg.err)
		case msg.result != nil && msg.result.State == pipeline.StateIdle:
			m.setStatus(msg.label + " cancelled")
		}
		m.log.WithFields(logrus.Fields{"action": msg.label}).Debug("action settled")
		m.syncSnapshot()

	case liveDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus(msg.what)
		}
		m.syncSnapshot()

	case confirmRequestMsg:
		m.confirmMessage = msg.message
		m.confirmReply = msg.reply
		m.mode = ModeConfirm
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.mode == ModeHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// syncSnapshot pulls the latest snapshot and keeps focus on the same
// section and target when they still exist
func (m *Model) syncSnapshot() {
	var focusedID string
	if m.sectionIndex < len(m.sections) {
		focusedID = m.sections[m.sectionIndex].ID
	}
	var focused *focusItem
	if m.itemIndex < len(m.items) {
		item := m.items[m.itemIndex]
		focused = &item
	}

	m.snap = m.rt.Snapshot()
	m.sections = m.snap.Sections()

	m.sectionIndex = 0
	for i, s := range m.sections {
		if s.ID == focusedID {
			m.sectionIndex = i
			break
		}
	}
	m.loadItems(focused)
	m.updateViewport()
}

// loadItems rebuilds the focus items of the focused section
func (m *Model) loadItems(keep *focusItem) {
	m.items = nil
	if m.sectionIndex < len(m.sections) {
		m.items = focusItems(m.sections[m.sectionIndex])
	}
	if keep != nil {
		for i, item := range m.items {
			if sameItem(item, *keep) {
				m.itemIndex = i
				return
			}
		}
	}
	if m.itemIndex >= len(m.items) {
		m.itemIndex = max(0, len(m.items)-1)
	}
}

// focusedSection returns the focused section, if any
func (m *Model) focusedSection() (view.Section, bool) {
	if m.sectionIndex < len(m.sections) {
		return m.sections[m.sectionIndex], true
	}
	return view.Section{}, false
}

// focusedItem returns the focused target, if any
func (m *Model) focusedItem() (focusItem, bool) {
	if m.itemIndex < len(m.items) {
		return m.items[m.itemIndex], true
	}
	return focusItem{}, false
}

func (m *Model) setStatus(msg string) {
	m.errorMsg = ""
	m.statusMsg = msg
}

func (m *Model) setError(err error) {
	if err == nil {
		m.errorMsg = ""
		return
	}
	m.log.WithError(err).Warn("operation failed")
	m.errorMsg = describeError(err)
}
