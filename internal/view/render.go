package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// MockedBadge marks sections showing synthesized data
const MockedBadge = "MOCKED"

// Render writes a plain text rendition of the snapshot
func Render(w io.Writer, app App) error {
	var b strings.Builder
	b.WriteString(app.Title + "\n")
	if app.Blurb != "" {
		b.WriteString(app.Blurb + "\n")
	}
	for _, g := range app.Groups {
		if g.Title != "" {
			fmt.Fprintf(&b, "\n== %s ==\n", g.Title)
			if g.Blurb != "" {
				b.WriteString(g.Blurb + "\n")
			}
		}
		for _, s := range g.Sections {
			b.WriteString("\n")
			b.WriteString(RenderSection(s))
		}
	}
	fmt.Fprintf(&b, "\n%s\n", StatusLine(app.Status))

	_, err := io.WriteString(w, b.String())
	return err
}

// StatusLine formats the status indicator
func StatusLine(st Status) string {
	if st.Hint == "" {
		return st.Message
	}
	return st.Message + " (" + st.Hint + ")"
}

// RenderSection renders one section as text
func RenderSection(s Section) string {
	var b strings.Builder
	title := "## " + s.Title
	if s.Mocked {
		title += " [" + MockedBadge + "]"
	}
	b.WriteString(title + "\n")

	for _, l := range s.Links {
		fmt.Fprintf(&b, "-> %s <%s>\n", l.Label, l.Href)
	}
	if s.Meta != "" {
		b.WriteString(s.Meta + "\n")
	}
	for _, block := range s.Blocks {
		b.WriteString(RenderBlock(block))
	}
	if s.Live != nil {
		b.WriteString(renderLive(s.Live))
	}
	if len(s.Inputs) > 0 {
		b.WriteString(renderInputs(s.Inputs, ""))
	}
	for _, a := range s.Actions {
		b.WriteString(renderAction(a, ""))
	}
	if s.ShowOutput {
		fmt.Fprintf(&b, "output: %s\n", s.Output)
	}
	if s.Err != "" {
		fmt.Fprintf(&b, "error: %s\n", s.Err)
	}
	return b.String()
}

// RenderBlock renders one data view as text
func RenderBlock(block Block) string {
	var b strings.Builder
	switch v := block.(type) {
	case List:
		if v.Empty != "" {
			b.WriteString(v.Empty + "\n")
		}
		for _, row := range v.Rows {
			fmt.Fprintf(&b, "  [%d] %s\n", row.Index, row.Text)
			if len(row.Inputs) > 0 {
				b.WriteString(renderInputs(row.Inputs, "      "))
			}
			for _, a := range row.Actions {
				b.WriteString(renderAction(a, "      "))
			}
		}
	case Table:
		if len(v.Columns) == 0 {
			break
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(v.Columns...).
			Rows(v.Rows...)
		b.WriteString(t.String() + "\n")
	case KPIs:
		for _, k := range v.Items {
			fmt.Fprintf(&b, "  %s: %s\n", k.Label, k.Value)
		}
	case JSON:
		b.WriteString(v.Text + "\n")
	case Text:
		b.WriteString(v.Text + "\n")
	case Custom:
		b.WriteString(v.Text + "\n")
	case Markdown:
		b.WriteString(RenderMarkdown(v.Text, MarkdownWidth) + "\n")
	case Auto:
		switch v.Kind {
		case AutoEmpty:
			b.WriteString("No data.\n")
		case AutoItems:
			for _, item := range v.Items {
				b.WriteString("  - " + item + "\n")
			}
		case AutoGrid:
			for _, c := range v.Cells {
				fmt.Fprintf(&b, "  %s: %s\n", c.Label, c.Value)
			}
		case AutoValue:
			b.WriteString("  value: " + v.Value + "\n")
		}
	}
	return b.String()
}

func renderInputs(inputs []Input, indent string) string {
	var b strings.Builder
	for _, in := range inputs {
		value := in.Value
		if in.Type == "file" {
			value = in.FileName
		}
		fmt.Fprintf(&b, "%s%s (%s): %s\n", indent, in.Label, in.Type, value)
	}
	return b.String()
}

func renderAction(a Action, indent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s<%s>\n", indent, a.Label)
	if len(a.Inputs) > 0 {
		b.WriteString(renderInputs(a.Inputs, indent+"  "))
	}
	return b.String()
}

func renderLive(l *Live) string {
	var b strings.Builder
	if len(l.Clients) > 0 {
		for _, c := range l.Clients {
			state := "closed"
			if c.Connected {
				state = "open"
			}
			last := c.Last
			if last == "" {
				last = "-"
			}
			fmt.Fprintf(&b, "  %s [%s] %s\n", c.Label, state, last)
		}
	} else {
		state := "disconnected"
		if l.Connected {
			state = "connected"
		}
		last := l.Last
		if last == "" {
			last = "-"
		}
		fmt.Fprintf(&b, "  channel %s: %s\n", state, last)
		for _, line := range l.Transcript {
			b.WriteString("    " + line + "\n")
		}
	}
	if l.HasHistory {
		b.WriteString("  Recent Messages\n")
		for _, item := range l.History {
			b.WriteString("    " + item + "\n")
		}
	}
	return b.String()
}
