package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestResolvePath(t *testing.T) {
	root := map[string]any{
		"data": map[string]any{
			"balance": float64(40),
			"items":   []any{map[string]any{"name": "A"}, map[string]any{"name": "B"}},
			"empty":   "",
			"zero":    float64(0),
			"nothing": nil,
		},
	}

	tests := []struct {
		name   string
		root   any
		path   string
		want   any
		wantOK bool
	}{
		{"nested", root, "data.balance", float64(40), true},
		{"slice index", root, "data.items.1.name", "B", true},
		{"slice length", root, "data.items.length", float64(2), true},
		{"missing segment", root, "data.missing.name", nil, false},
		{"null leaf is defined", root, "data.nothing", nil, true},
		{"falsy intermediate", root, "data.empty.x", nil, false},
		{"zero intermediate", root, "data.zero.x", nil, false},
		{"index out of range", root, "data.items.5", nil, false},
		{"nil root", nil, "a", nil, false},
		{"falsy root", "", "a", nil, false},
		{"empty path", root, "", nil, false},
		{"scalar root", float64(3), "a", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolvePath(tt.root, tt.path)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookupExpression(t *testing.T) {
	root := map[string]any{
		"data": []any{
			map[string]any{"id": float64(1), "status": "active"},
			map[string]any{"id": float64(2), "status": "closed"},
		},
	}

	got, ok := Lookup(root, "data[?status=='active'].id")
	if !ok {
		t.Fatal("expected expression to resolve")
	}
	if diff := cmp.Diff([]any{float64(1)}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, ok := Lookup(root, "data[0].missing"); ok {
		t.Error("null expression result should be undefined")
	}
	if _, ok := Lookup(root, "data[?"); ok {
		t.Error("invalid expression should be undefined")
	}
	if got, ok := Lookup(root, "data.0.status"); !ok || got != "active" {
		t.Errorf("dotted lookup = %v, %v", got, ok)
	}
}

func TestCheck(t *testing.T) {
	if err := Check("data.balance"); err != nil {
		t.Errorf("dotted path: %v", err)
	}
	if err := Check("items[0].id"); err != nil {
		t.Errorf("valid expression: %v", err)
	}
	if err := Check("items[?"); err == nil {
		t.Error("expected error for invalid expression")
	}
	if err := Check(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestRenderTemplate(t *testing.T) {
	store := map[string]any{"user": "ada", "limits": map[string]any{"max": float64(5)}, "name": "store-name"}
	row := map[string]any{"name": "A", "amount": float64(100), "price": 2.5, "tags": []any{"x"}, "none": nil}

	tests := []struct {
		name string
		tpl  string
		data any
		want string
	}{
		{"row key", "{{name}}", row, "A"},
		{"spacing", "{{ name }}!", row, "A!"},
		{"integral number", "{{amount}}", row, "100"},
		{"fractional number", "{{price}}", row, "2.5"},
		{"list as json", "{{tags}}", row, `["x"]`},
		{"store fallback", "{{user}}", row, "ada"},
		{"null falls through", "{{none}}", map[string]any{"none": nil, "user": nil}, ""},
		{"nested store", "max {{limits.max}}", row, "max 5"},
		{"missing", "[{{nope}}]", row, "[]"},
		{"json token", "{{json}}", map[string]any{"a": "<b>"}, `{"a":"<b>"}`},
		{"no tokens", "plain text", row, "plain text"},
		{"nil data", "{{user}}", nil, "ada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderTemplate(tt.tpl, tt.data, store); got != tt.want {
				t.Errorf("RenderTemplate(%q) = %q, want %q", tt.tpl, got, tt.want)
			}
		})
	}
}

func TestResolveTemplateValue(t *testing.T) {
	store := map[string]any{"owner": "ada"}

	if got, ok := ResolveTemplateValue("{{owner}}", store, nil); !ok || got != "ada" {
		t.Errorf("store render = %v, %v", got, ok)
	}
	if got, ok := ResolveTemplateValue("{{id}}", store, map[string]any{"id": float64(7)}); !ok || got != "7" {
		t.Errorf("row render = %v, %v", got, ok)
	}
	if _, ok := ResolveTemplateValue("{{missing}}", store, nil); ok {
		t.Error("empty render should have no value")
	}
	if got, ok := ResolveTemplateValue(float64(3), store, nil); !ok || got != float64(3) {
		t.Errorf("static value = %v, %v", got, ok)
	}
	if _, ok := ResolveTemplateValue(nil, store, nil); ok {
		t.Error("nil should have no value")
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{true, "true"},
		{float64(40), "40"},
		{-0.5, "-0.5"},
		{1e21, "1e+21"},
		{7, "7"},
		{map[string]any{"b": float64(1), "a": "x"}, `{"a":"x","b":1}`},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	want := "{\n  \"a\": [\n    1\n  ]\n}"
	if got := FormatJSON(map[string]any{"a": []any{float64(1)}}); got != want {
		t.Errorf("FormatJSON = %q, want %q", got, want)
	}
	if got := FormatJSON(nil); got != "{}" {
		t.Errorf("FormatJSON(nil) = %q", got)
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{"", 0, true},
		{" 12.5 ", 12.5, true},
		{"abc", 0, false},
		{float64(3), 3, true},
		{nil, 0, true},
		{true, 1, true},
		{map[string]any{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToNumber(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ToNumber(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLookupValue(t *testing.T) {
	body := map[string]any{"token": "body"}
	store := map[string]any{"token": "store", "user": "ada"}
	if got := LookupValue("token", body, store); got != "body" {
		t.Errorf("body first: %v", got)
	}
	if got := LookupValue("user", body, store); got != "ada" {
		t.Errorf("store second: %v", got)
	}
	if got := LookupValue("pass", body, store); got != "" {
		t.Errorf("missing: %v", got)
	}
}

func TestTemplateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a key present in data never falls through to the store", prop.ForAll(
		func(key, value string) bool {
			if key == "json" {
				return true
			}
			data := map[string]any{key: value}
			store := map[string]any{key: "from-store"}
			return RenderTemplate("{{"+key+"}}", data, store) == value
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.Property("a key absent from data and store renders empty", prop.ForAll(
		func(key, prefix string) bool {
			if key == "json" {
				return true
			}
			return RenderTemplate(prefix+"{{"+key+"}}", map[string]any{}, map[string]any{}) == prefix
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.Property("rendering a token-free output is a no-op", prop.ForAll(
		func(keys []string, value string) bool {
			tpl := ""
			data := map[string]any{}
			for _, key := range keys {
				tpl += "<{{" + key + "}}>"
				data[key] = value
			}
			out := RenderTemplate(tpl, data, nil)
			return RenderTemplate(out, data, nil) == out
		},
		gen.SliceOf(gen.Identifier()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
