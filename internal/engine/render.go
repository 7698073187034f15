package engine

import (
	"regexp"
	"sort"

	"github.com/studiowebux/restui/internal/resolver"
	"github.com/studiowebux/restui/internal/types"
	"github.com/studiowebux/restui/internal/view"
)

// Empty list texts
const (
	NoData  = "No data."
	NoItems = "No items yet."
)

var htmlPattern = regexp.MustCompile(`<[^>]+>`)

// record is one rendered list row before its inputs are bound
type record struct {
	data map[string]any
	text string
	html bool
}

// resolvePayload looks path up in the store first, then in {data: data}.
// Without a path the payload is data itself.
func resolvePayload(path string, store map[string]any, data any) any {
	if path == "" {
		return data
	}
	if value, ok := resolver.Lookup(store, path); ok && value != nil {
		return value
	}
	value, _ := resolver.Lookup(map[string]any{"data": data}, path)
	return value
}

// resolveText renders a text view: a path payload verbatim (JSON unless a
// string), else text templated against data and store
func resolveText(text, path string, store map[string]any, data any) string {
	if path != "" {
		payload := resolvePayload(path, store, data)
		switch v := payload.(type) {
		case nil:
			return ""
		case string:
			return v
		default:
			return resolver.JSON(v)
		}
	}
	if resolver.HasTokens(text) {
		if data == nil {
			data = map[string]any{}
		}
		return resolver.RenderTemplate(text, data, store)
	}
	return text
}

// toList returns value as a slice of rows
func toList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	return nil, false
}

// renderRows renders data as a list or table. Non-list data is one row.
func renderRows(display types.Display, data any, store map[string]any) (view.Block, []record) {
	if !resolver.Truthy(data) {
		return view.List{Empty: NoData}, nil
	}
	rows, ok := toList(data)
	if !ok {
		rows = []any{data}
	}
	if len(rows) == 0 {
		return view.List{Empty: NoItems}, nil
	}

	if display.Kind == types.DisplayTable {
		return renderTable(rows), nil
	}

	records := make([]record, 0, len(rows))
	for _, row := range rows {
		rec := record{}
		if m, ok := row.(map[string]any); ok {
			rec.data = m
		}
		if display.Template != "" {
			rec.text = resolver.RenderTemplate(display.Template, row, store)
			rec.html = htmlPattern.MatchString(rec.text)
		} else {
			rec.text = resolver.JSON(row)
		}
		records = append(records, rec)
	}
	return view.List{}, records
}

func renderTable(rows []any) view.Table {
	var t view.Table
	first, _ := rows[0].(map[string]any)
	for key := range first {
		t.Columns = append(t.Columns, key)
	}
	sort.Strings(t.Columns)

	for _, row := range rows {
		m, _ := row.(map[string]any)
		cells := make([]string, len(t.Columns))
		for i, key := range t.Columns {
			if value, ok := m[key]; ok && value != nil {
				cells[i] = resolver.Stringify(value)
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// renderMeta renders the summary line. Lists collapse to {count}.
func renderMeta(meta *types.Meta, source any, store map[string]any) string {
	if rows, ok := toList(source); ok {
		source = map[string]any{"count": float64(len(rows))}
	}
	if !resolver.Truthy(source) {
		source = map[string]any{}
	}
	return resolver.RenderTemplate(meta.Template, source, store)
}

// renderView renders the payload views (everything but lists and tables)
func renderView(display types.Display, store map[string]any, data any) view.Block {
	switch display.Kind {
	case types.DisplayAuto:
		return renderAuto(resolvePayload(display.Path, store, data))
	case types.DisplayKPI:
		return renderKPIs(display.KPIs, store, data)
	case types.DisplayJSON:
		return view.JSON{Text: resolver.FormatJSON(resolvePayload(display.Path, store, data))}
	case types.DisplayText:
		return view.Text{Text: resolveText(display.Text, display.Path, store, data)}
	case types.DisplayMarkdown:
		return view.Markdown{Text: resolveText(display.Text, display.Path, store, data)}
	case types.DisplayCustom:
		if display.Render == nil {
			return nil
		}
		return view.Custom{Text: display.Render(data, store)}
	}
	return nil
}

func renderKPIs(items []types.KPI, store map[string]any, data any) view.KPIs {
	out := view.KPIs{Items: make([]view.KPI, 0, len(items))}
	for _, item := range items {
		var value string
		switch {
		case item.Compute != nil:
			if computed := item.Compute(data, store); computed != nil {
				value = resolver.Stringify(computed)
			}
		case item.Path == "" && item.Value == "" && item.Key != "":
			// A bare key reads the store, then the response data
			figure, ok := resolver.Lookup(store, item.Key)
			if !ok || figure == nil {
				figure, _ = resolver.Lookup(data, item.Key)
			}
			value = resolver.Stringify(figure)
		default:
			value = resolveText(item.Value, item.Path, store, data)
		}
		out.Items = append(out.Items, view.KPI{Label: item.Label, Value: value})
	}
	return out
}

// renderAuto picks a shape after the payload: items for lists, a key/value
// grid for objects, a single figure otherwise
func renderAuto(payload any) view.Auto {
	if payload == nil {
		return view.Auto{Kind: view.AutoEmpty}
	}
	if rows, ok := toList(payload); ok {
		auto := view.Auto{Kind: view.AutoItems, Items: make([]string, 0, len(rows))}
		for _, row := range rows {
			auto.Items = append(auto.Items, resolver.Stringify(row))
		}
		return auto
	}
	if m, ok := payload.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		auto := view.Auto{Kind: view.AutoGrid, Cells: make([]view.KPI, 0, len(keys))}
		for _, key := range keys {
			auto.Cells = append(auto.Cells, view.KPI{Label: key, Value: resolver.Stringify(m[key])})
		}
		return auto
	}
	return view.Auto{Kind: view.AutoValue, Value: resolver.Stringify(payload)}
}
