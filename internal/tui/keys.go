package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/restui/internal/keybinds"
	"github.com/studiowebux/restui/internal/types"
)

// handleKeyPress routes key presses based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	context := m.mode.context()

	var action keybinds.Action
	var ok bool
	if m.mode == ModeNormal {
		var partial bool
		action, ok, partial = m.keys.MatchMultiKey(context, key)
		if partial {
			return nil
		}
	} else {
		action, ok = m.keys.Match(context, key)
	}

	if ok && action == keybinds.ActionQuitForce {
		m.answerConfirm(false)
		return tea.Quit
	}

	switch m.mode {
	case ModeEdit:
		return m.handleEditKeys(msg, action, ok)
	case ModeConfirm:
		if ok {
			m.handleConfirmKeys(action)
		}
		return nil
	case ModeHelp:
		if ok {
			m.handleHelpKeys(action)
		}
		return nil
	}
	if !ok {
		return nil
	}
	return m.handleNormalKeys(action)
}

// handleNormalKeys runs section navigation and section actions
func (m *Model) handleNormalKeys(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionQuit:
		return tea.Quit

	case keybinds.ActionNavigateDown:
		if m.itemIndex < len(m.items)-1 {
			m.itemIndex++
		}
	case keybinds.ActionNavigateUp:
		if m.itemIndex > 0 {
			m.itemIndex--
		}
	case keybinds.ActionNextSection:
		m.focusSection(m.sectionIndex + 1)
	case keybinds.ActionPrevSection:
		m.focusSection(m.sectionIndex - 1)
	case keybinds.ActionGoToTop:
		m.focusSection(0)
	case keybinds.ActionGoToBottom:
		m.focusSection(len(m.sections) - 1)

	case keybinds.ActionPageUp:
		m.mainView.ViewUp()
		return nil
	case keybinds.ActionPageDown:
		m.mainView.ViewDown()
		return nil
	case keybinds.ActionHalfPageUp:
		m.mainView.HalfViewUp()
		return nil
	case keybinds.ActionHalfPageDown:
		m.mainView.HalfViewDown()
		return nil

	case keybinds.ActionActivate:
		return m.activate()
	case keybinds.ActionRefresh:
		return m.refreshSection()
	case keybinds.ActionRefreshAll:
		return m.refreshAll()
	case keybinds.ActionCopyOutput:
		m.copyOutput()
	case keybinds.ActionLiveConnect:
		return m.liveConnect()
	case keybinds.ActionLiveHistory:
		return m.liveHistory()

	case keybinds.ActionOpenHelp:
		m.mode = ModeHelp
		m.updateHelpView()
		return nil
	}

	m.followFocus = true
	m.updateViewport()
	return nil
}

// focusSection moves focus to section i, clamped
func (m *Model) focusSection(i int) {
	if len(m.sections) == 0 {
		return
	}
	i = min(max(i, 0), len(m.sections)-1)
	if i == m.sectionIndex {
		return
	}
	m.sectionIndex = i
	m.itemIndex = 0
	m.loadItems(nil)
}

// activate edits the focused input or runs the focused action
func (m *Model) activate() tea.Cmd {
	item, ok := m.focusedItem()
	if !ok {
		return nil
	}
	switch item.kind {
	case focusInput:
		value := item.input.Value
		if item.input.Type == "file" {
			value = ""
		}
		m.startEdit(item, value, item.input.Placeholder)
		return textinput.Blink
	case focusLiveMessage:
		m.startEdit(item, item.value, "")
		return textinput.Blink
	case focusAction:
		return m.invoke(item.action, -1)
	case focusRowAction:
		return m.invoke(item.action, item.row)
	case focusLiveSend:
		return m.liveSend(item)
	}
	return nil
}

func (m *Model) startEdit(item focusItem, value, placeholder string) {
	m.editing = item
	m.editor.SetValue(value)
	m.editor.Placeholder = placeholder
	m.editor.CursorEnd()
	m.editor.Focus()
	m.mode = ModeEdit
}

// handleEditKeys feeds keys to the editor until it is submitted or cancelled
func (m *Model) handleEditKeys(msg tea.KeyMsg, action keybinds.Action, ok bool) tea.Cmd {
	if ok {
		switch action {
		case keybinds.ActionTextSubmit:
			m.submitEdit()
			return nil
		case keybinds.ActionTextCancel:
			m.stopEdit()
			return nil
		}
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *Model) stopEdit() {
	m.editor.Blur()
	m.mode = ModeNormal
	m.updateViewport()
}

// submitEdit stores the edited value on its input or live draft
func (m *Model) submitEdit() {
	defer m.stopEdit()

	section, ok := m.focusedSection()
	if !ok {
		return
	}
	item := m.editing
	value := m.editor.Value()

	var err error
	switch item.kind {
	case focusInput:
		if item.input.Type == "file" {
			if value == "" {
				return
			}
			err = m.rt.SetFile(section.ID, item.target, item.key, types.FileHandle{Path: value, Name: filepath.Base(value)})
		} else {
			err = m.rt.SetInput(section.ID, item.target, item.key, value)
		}
	case focusLiveMessage:
		live, lerr := m.rt.Live(section.ID)
		if lerr != nil {
			err = lerr
			break
		}
		err = live.SetDraft(item.action, item.name, value)
	}
	if err != nil {
		m.setError(err)
	} else {
		m.errorMsg = ""
	}
	m.syncSnapshot()
}

// handleConfirmKeys answers the pending confirmation
func (m *Model) handleConfirmKeys(action keybinds.Action) {
	switch action {
	case keybinds.ActionConfirmYes:
		m.answerConfirm(true)
	case keybinds.ActionConfirmNo:
		m.answerConfirm(false)
	}
}

func (m *Model) answerConfirm(ok bool) {
	if m.confirmReply != nil {
		m.confirmReply <- ok
		m.confirmReply = nil
	}
	m.confirmMessage = ""
	if m.mode == ModeConfirm {
		m.mode = ModeNormal
	}
}

// handleHelpKeys scrolls and closes the help view
func (m *Model) handleHelpKeys(action keybinds.Action) {
	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
	case keybinds.ActionNavigateUp:
		m.helpView.LineUp(1)
	case keybinds.ActionNavigateDown:
		m.helpView.LineDown(1)
	}
}

// invoke runs a section action (row < 0) or a list row action
func (m *Model) invoke(label string, row int) tea.Cmd {
	section, ok := m.focusedSection()
	if !ok {
		return nil
	}
	m.loading = true
	m.statusMsg = fmt.Sprintf("Running %s...", label)
	ctx, rt, id := m.ctx, m.rt, section.ID
	return func() tea.Msg {
		if row >= 0 {
			res, err := rt.InvokeRow(ctx, id, row, label)
			return actionDoneMsg{label: label, result: res, err: err}
		}
		res, err := rt.Invoke(ctx, id, label)
		return actionDoneMsg{label: label, result: res, err: err}
	}
}

func (m *Model) refreshSection() tea.Cmd {
	section, ok := m.focusedSection()
	if !ok {
		return nil
	}
	m.loading = true
	ctx, rt, id := m.ctx, m.rt, section.ID
	return func() tea.Msg {
		return refreshedMsg{section: section.Title, err: rt.RefreshSection(ctx, id)}
	}
}

func (m *Model) refreshAll() tea.Cmd {
	m.loading = true
	ctx, rt := m.ctx, m.rt
	return func() tea.Msg {
		return refreshedMsg{section: "all sections", err: rt.RefreshAll(ctx)}
	}
}

// copyOutput copies the output of the focused section to the clipboard
func (m *Model) copyOutput() {
	section, ok := m.focusedSection()
	if !ok || !section.ShowOutput || section.Output == "" || section.Output == "-" {
		m.setStatus("Nothing to copy")
		return
	}
	if err := m.copy(section.Output); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to copy to clipboard: %v", err)
		return
	}
	m.setStatus("Output copied to clipboard")
}

func (m *Model) liveConnect() tea.Cmd {
	section, ok := m.focusedSection()
	if !ok || section.Live == nil {
		m.setStatus("Not a live section")
		return nil
	}
	ctx, rt, id := m.ctx, m.rt, section.ID
	return func() tea.Msg {
		live, err := rt.Live(id)
		if err == nil {
			err = live.Connect(ctx)
		}
		return liveDoneMsg{what: "Connected", err: err}
	}
}

func (m *Model) liveHistory() tea.Cmd {
	section, ok := m.focusedSection()
	if !ok || section.Live == nil || !section.Live.HasHistory {
		m.setStatus("No live history here")
		return nil
	}
	ctx, rt, id := m.ctx, m.rt, section.ID
	return func() tea.Msg {
		live, err := rt.Live(id)
		if err == nil {
			err = live.LoadHistory(ctx)
		}
		return liveDoneMsg{what: "History reloaded", err: err}
	}
}

func (m *Model) liveSend(item focusItem) tea.Cmd {
	section, ok := m.focusedSection()
	if !ok {
		return nil
	}
	rt, id := m.rt, section.ID
	return func() tea.Msg {
		live, err := rt.Live(id)
		if err == nil {
			if item.action == "" {
				err = live.Send("")
			} else {
				err = live.SendAs(item.action, "", "")
			}
		}
		return liveDoneMsg{what: "Sent", err: err}
	}
}
