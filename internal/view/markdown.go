package view

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownWidth is the wrap width used outside the interactive UI
const MarkdownWidth = 80

var (
	markdownMu        sync.Mutex
	markdownRenderers = map[int]*glamour.TermRenderer{}
)

// markdownRenderer returns the renderer for a wrap width, building it once
func markdownRenderer(width int) (*glamour.TermRenderer, error) {
	if width < 20 {
		width = 20
	}
	if r, ok := markdownRenderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	markdownRenderers[width] = r
	return r, nil
}

// RenderMarkdown renders markdown text wrapped to width. The raw text is
// returned when it cannot be rendered.
func RenderMarkdown(text string, width int) string {
	markdownMu.Lock()
	defer markdownMu.Unlock()

	r, err := markdownRenderer(width)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
