package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/restui/internal/pipeline"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

const (
	answerYes = "Yes"
	answerNo  = "No"
)

type item struct {
	value string
}

func (i item) FilterValue() string { return i.value }

type selectorModel struct {
	list     list.Model
	choice   string
	quitting bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc", "n", "N":
			m.quitting = true
			m.choice = ""
			return m, tea.Quit

		case "y", "Y":
			m.choice = answerYes
			m.quitting = true
			return m, tea.Quit

		case "enter":
			i, ok := m.list.SelectedItem().(item)
			if ok {
				m.choice = i.value
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • enter: select • y/n: answer • q/ctrl+c: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// itemDelegate is a custom list item delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(i.value))
}

// newConfirmList builds the No/Yes list, No selected
func newConfirmList(message string) list.Model {
	items := []list.Item{item{value: answerNo}, item{value: answerYes}}

	const defaultWidth = 60
	const listHeight = 8

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = message
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle
	return l
}

// selectConfirmation shows a Yes/No list and reports whether Yes was picked
func selectConfirmation(ctx context.Context, message string, in io.Reader, out io.Writer) (bool, error) {
	p := tea.NewProgram(selectorModel{list: newConfirmList(message)}, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("error running confirmation: %w", err)
	}
	return finalModel.(selectorModel).choice == answerYes, nil
}

// promptLine asks on out and reads a y/N answer from in
func promptLine(message string, in io.Reader, out io.Writer) bool {
	fmt.Fprintf(out, "%s [y/N]: ", message)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// Confirmer returns the confirmation used by the CLI. With assumeYes every
// action is approved. Terminals get an interactive list, other inputs
// answer with a y/N line.
func Confirmer(assumeYes bool, in *os.File, out io.Writer) pipeline.ConfirmFunc {
	return func(ctx context.Context, message string) bool {
		if assumeYes {
			return true
		}
		if isTerminal(in) {
			ok, err := selectConfirmation(ctx, message, in, out)
			if err == nil {
				return ok
			}
		}
		return promptLine(message, in, out)
	}
}

// isTerminal reports whether f is a character device
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
