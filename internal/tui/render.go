package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/studiowebux/restui/internal/keybinds"
	"github.com/studiowebux/restui/internal/view"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(colorYellow).
			Padding(0, 1)

	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	styleCardFocused = styleCard.
				BorderForeground(colorCyan)

	// Mocked sections show synthesized data
	styleCardMocked = styleCard.
			Border(dashedBorder).
			BorderForeground(colorYellow)

	styleCardMockedFocused = styleCardMocked.
				BorderForeground(colorCyan)
)

var dashedBorder = lipgloss.Border{
	Top:         "╌",
	Bottom:      "╌",
	Left:        "╎",
	Right:       "╎",
	TopLeft:     "╭",
	TopRight:    "╮",
	BottomLeft:  "╰",
	BottomRight: "╯",
}

// cardStyle picks the card frame for a section
func cardStyle(mocked, focused bool) lipgloss.Style {
	switch {
	case mocked && focused:
		return styleCardMockedFocused
	case mocked:
		return styleCardMocked
	case focused:
		return styleCardFocused
	}
	return styleCard
}

// renderMain renders the header, the section cards and the status bar
func (m *Model) renderMain() string {
	header := styleTitle.Render(m.snap.Title)
	blurb := styleSubtle.Render(m.snap.Blurb)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		blurb,
		m.mainView.View(),
		m.renderStatusBar(),
	)
}

// updateViewport re-renders the cards. After focus moves the focused
// target is scrolled into view.
func (m *Model) updateViewport() {
	if m.width == 0 {
		return
	}
	m.mainView.Width = m.width
	m.mainView.Height = max(1, m.height-HeaderLines-StatusBarLines)

	content, focusLine := m.renderSections(m.width)
	m.mainView.SetContent(content)

	if !m.followFocus {
		return
	}
	m.followFocus = false
	if focusLine < m.mainView.YOffset {
		m.mainView.SetYOffset(focusLine)
	} else if focusLine >= m.mainView.YOffset+m.mainView.Height {
		m.mainView.SetYOffset(focusLine - m.mainView.Height + 1)
	}
}

// renderSections renders every group and card. It returns the content
// and the line of the focused target.
func (m *Model) renderSections(width int) (string, int) {
	var lines []string
	focusLine := 0
	index := 0

	for _, g := range m.snap.Groups {
		if g.Title != "" {
			lines = append(lines, "", styleTitle.Render("== "+g.Title+" =="))
			if g.Blurb != "" {
				lines = append(lines, styleSubtle.Render(g.Blurb))
			}
		}
		for _, s := range g.Sections {
			focused := index == m.sectionIndex
			card, cardFocus := m.renderCard(s, focused, width)
			if focused {
				// +1 for the top border
				focusLine = len(lines) + 1 + cardFocus
			}
			lines = append(lines, strings.Split(card, "\n")...)
			index++
		}
	}
	if len(lines) == 0 {
		if m.loading {
			lines = append(lines, styleSubtle.Render("Loading..."))
		} else {
			lines = append(lines, styleSubtle.Render("Nothing to show."))
		}
	}
	return strings.Join(lines, "\n"), focusLine
}

// renderCard renders one section. It returns the card and the line of
// the focused target inside the card content.
func (m *Model) renderCard(s view.Section, focused bool, width int) (string, int) {
	var b strings.Builder
	items := focusItems(s)
	next := 0
	focusLine := 0
	line := 0

	write := func(text string) {
		b.WriteString(text + "\n")
		line += strings.Count(text, "\n") + 1
	}
	emit := func(indent string) {
		if next >= len(items) {
			return
		}
		text := indent + items[next].label()
		if focused && next == m.itemIndex {
			focusLine = line
			text = styleSelected.Render("> " + strings.TrimLeft(text, " "))
		}
		write(text)
		next++
	}

	title := styleTitle.Render(s.Title)
	if s.Mocked {
		title += " " + styleBadge.Render(view.MockedBadge)
	}
	write(title)
	for _, l := range s.Links {
		write(styleSubtle.Render(fmt.Sprintf("-> %s <%s>", l.Label, l.Href)))
	}
	if s.Meta != "" {
		write(styleSubtle.Render(s.Meta))
	}

	for _, block := range s.Blocks {
		if md, ok := block.(view.Markdown); ok {
			write(view.RenderMarkdown(md.Text, cardContentWidth(width)))
			continue
		}
		list, ok := block.(view.List)
		if !ok {
			write(strings.TrimRight(view.RenderBlock(block), "\n"))
			continue
		}
		if list.Empty != "" {
			write(styleSubtle.Render(list.Empty))
		}
		for _, row := range list.Rows {
			write(fmt.Sprintf("%d. %s", row.Index+1, row.Text))
			for i := 0; i < len(row.Inputs)+len(row.Actions); i++ {
				emit("   ")
			}
		}
	}

	if l := s.Live; l != nil {
		m.renderLive(l, write, emit)
	}

	for range s.Inputs {
		emit("")
	}
	for _, a := range s.Actions {
		for range a.Inputs {
			emit("  ")
		}
		emit("")
	}

	if s.ShowOutput {
		write(styleSubtle.Render("output: ") + s.Output)
	}
	if s.Err != "" {
		write(styleError.Render("error: " + s.Err))
	}

	content := strings.TrimRight(b.String(), "\n")
	return cardStyle(s.Mocked, focused).Width(max(10, width-2)).Render(content), focusLine
}

// cardContentWidth is the text width inside a card's border and padding
func cardContentWidth(width int) int {
	return max(8, width-CardChrome)
}

// renderLive renders channel states around their focus items
func (m *Model) renderLive(l *view.Live, write func(string), emit func(string)) {
	state := func(open bool) string {
		if open {
			return styleSuccess.Render("connected")
		}
		return styleSubtle.Render("disconnected")
	}
	last := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	if len(l.Clients) == 0 {
		write(fmt.Sprintf("channel %s, last: %s", state(l.Connected), last(l.Last)))
		emit("")
		emit("")
		for _, t := range l.Transcript {
			write(styleSubtle.Render("  " + t))
		}
	}
	for _, c := range l.Clients {
		write(fmt.Sprintf("%s %s, last: %s", c.Label, state(c.Connected), last(c.Last)))
		emit("  ")
		emit("  ")
	}
	if l.HasHistory {
		write(styleSubtle.Render("history:"))
		for _, h := range l.History {
			write("  " + h)
		}
	}
}

// renderStatusBar renders the app status on the left and UI messages on
// the right
func (m *Model) renderStatusBar() string {
	status := m.snap.Status
	left := view.StatusLine(status)
	switch {
	case strings.HasPrefix(status.Message, "error"):
		left = styleError.Render(left)
	case status.Message == "ok":
		left = styleSuccess.Render(left)
	}

	right := ""
	switch m.mode {
	case ModeEdit:
		right = "Edit " + m.editing.label() + " " + m.editor.View()
	case ModeConfirm:
		right = styleWarning.Render(fmt.Sprintf("%s [%s / %s]", m.confirmMessage,
			m.keys.GetBindingString(keybinds.ContextConfirm, keybinds.ActionConfirmYes),
			m.keys.GetBindingString(keybinds.ContextConfirm, keybinds.ActionConfirmNo)))
	default:
		switch {
		case m.errorMsg != "":
			right = styleError.Render(truncate(m.errorMsg, StatusMaxWidth))
		case m.loading:
			right = styleWarning.Render("Loading...")
		case m.statusMsg != "":
			right = truncate(m.statusMsg, StatusMaxWidth)
		default:
			right = styleSubtle.Render(fmt.Sprintf("Press %s for help | %s to quit",
				m.keys.GetBindingString(keybinds.ContextNormal, keybinds.ActionOpenHelp),
				m.keys.GetBindingString(keybinds.ContextNormal, keybinds.ActionQuit)))
		}
	}

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// updateHelpView lists the bindings of the normal context
func (m *Model) updateHelpView() {
	m.helpView.Width = max(20, m.width-4)
	m.helpView.Height = max(1, m.height-4)

	byAction := map[keybinds.Action][]string{}
	for _, b := range m.keys.ListBindings(keybinds.ContextNormal) {
		if b.Action == keybinds.ActionGoToTopPrepare {
			continue
		}
		byAction[b.Action] = append(byAction[b.Action], b.Key)
	}
	actions := make([]keybinds.Action, 0, len(byAction))
	for a := range byAction {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

	rows := make([][]string, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, []string{strings.Join(byAction[a], ", "), keybinds.Describe(a)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Keys", "Action").
		Rows(rows...)
	m.helpView.SetContent(t.String())
}

// renderHelp renders the keybinding reference
func (m *Model) renderHelp() string {
	closeKeys := m.keys.GetBindingString(keybinds.ContextHelp, keybinds.ActionCloseModal)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		styleTitle.Render("Keybindings"),
		m.helpView.View(),
		styleSubtle.Render("Press "+closeKeys+" to close"),
	)
}
