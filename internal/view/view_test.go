package view

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Rules\n\n- amount > 0\n- currency is set\n\nUse **restui** to check.", 40)
	for _, want := range []string{"Rules", "amount > 0", "currency is set", "restui", "check."} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("markdown not trimmed: %q", out)
	}

	block := RenderBlock(Markdown{Text: "plain words"})
	if !strings.Contains(block, "plain words") {
		t.Errorf("block missing text:\n%s", block)
	}
}

func TestMarkdownRendererCached(t *testing.T) {
	a, err := markdownRenderer(30)
	if err != nil {
		t.Fatalf("markdownRenderer: %v", err)
	}
	b, _ := markdownRenderer(30)
	if a != b {
		t.Error("renderer rebuilt for the same width")
	}
	narrow, _ := markdownRenderer(5)
	floor, _ := markdownRenderer(20)
	if narrow != floor {
		t.Error("narrow widths should share the minimum renderer")
	}
}

func TestRenderSnapshot(t *testing.T) {
	app := App{
		Title:  "Bank",
		Status: Status{Message: "error: boom", Hint: "Check required fields and rules."},
		Groups: []Group{{
			Sections: []Section{
				{
					ID:     "items",
					Title:  "Items",
					Mocked: true,
					Meta:   "2 items",
					Blocks: []Block{
						List{Rows: []Row{{Index: 0, Text: "A", Actions: []Action{{Label: "Delete"}}}}},
						Auto{Kind: AutoGrid, Cells: []KPI{{Label: "total", Value: "3"}}},
					},
					Output:     "-",
					ShowOutput: true,
				},
				{
					ID:     "chat",
					Title:  "Chat",
					Live:   &Live{Connected: true, Last: "hi", HasHistory: true, History: []string{"10:00 hi"}},
					Blocks: []Block{List{Empty: "No items yet."}},
				},
			},
		}},
	}

	var buf bytes.Buffer
	if err := Render(&buf, app); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## Items [MOCKED]",
		"2 items",
		"[0] A",
		"<Delete>",
		"total: 3",
		"output: -",
		"channel connected: hi",
		"10:00 hi",
		"No items yet.",
		"error: boom (Check required fields and rules.)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderBlock(Table{Columns: []string{"id", "name"}, Rows: [][]string{{"1", "A"}}})
	for _, want := range []string{"id", "name", "A"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestSectionLookup(t *testing.T) {
	app := App{Groups: []Group{{Sections: []Section{{ID: "a"}}}, {Sections: []Section{{ID: "b"}}}}}
	if _, ok := app.Section("b"); !ok {
		t.Error("section b not found")
	}
	if _, ok := app.Section("c"); ok {
		t.Error("section c should not exist")
	}
	if n := len(app.Sections()); n != 2 {
		t.Errorf("sections = %d, want 2", n)
	}
	if Kind(Auto{}) != "auto" || Kind(nil) != "" {
		t.Error("unexpected block kinds")
	}
}
