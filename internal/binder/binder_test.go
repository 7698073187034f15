package binder

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/studiowebux/restui/internal/types"
)

func TestRenderFieldValuePrecedence(t *testing.T) {
	store := map[string]any{"owner": "ada"}
	row := map[string]any{"id": float64(7)}

	tests := []struct {
		name  string
		field types.Field
		row   map[string]any
		keep  string
		want  string
	}{
		{"static", types.Field{Key: "a", Value: "x"}, nil, "", "x"},
		{"number static", types.Field{Key: "a", Type: types.FieldNumber, Value: float64(10)}, nil, "", "10"},
		{"store template", types.Field{Key: "a", Value: "{{owner}}"}, nil, "", "ada"},
		{"row template", types.Field{Key: "a", Value: "#{{id}}"}, row, "", "#7"},
		{"empty template", types.Field{Key: "a", Value: "{{missing}}"}, nil, "", ""},
		{"keep wins", types.Field{Key: "a", Value: "x"}, nil, "kept", "kept"},
		{"file ignores keep", types.Field{Key: "a", Type: types.FieldFile, Value: "x"}, nil, "kept", ""},
		{"select falls back to first", types.Field{Key: "a", Type: types.FieldSelect, Options: []types.Option{{Value: "u"}, {Value: "v"}}, Value: "zzz"}, nil, "", "u"},
		{"select keeps known value", types.Field{Key: "a", Type: types.FieldSelect, Options: []types.Option{{Value: "u"}, {Value: "v"}}, Value: "v"}, nil, "", "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := RenderField(tt.field, store, tt.row, tt.keep)
			if in.Value != tt.want {
				t.Errorf("value = %q, want %q", in.Value, tt.want)
			}
		})
	}
}

func TestRenderFieldDefaults(t *testing.T) {
	in := RenderField(types.Field{Key: "note", Type: types.FieldTextarea}, nil, nil, "")
	if in.Rows != 3 || in.Label != "note" {
		t.Errorf("defaults = %+v", in)
	}
	in = RenderField(types.Field{Key: "q"}, nil, nil, "")
	if in.Type != types.FieldText {
		t.Errorf("type = %q", in.Type)
	}
}

func TestCollectFields(t *testing.T) {
	fields := []types.Field{
		{Key: "amount", Type: types.FieldNumber},
		{Key: "empty", Type: types.FieldNumber},
		{Key: "note", Type: types.FieldText},
		{Key: "doc", Type: types.FieldFile},
	}
	form := BuildForm(fields, nil, nil, nil)
	form.Set("amount", "12.5")
	form.Set("note", "hello")
	form.SetFile("doc", types.FileHandle{Path: "/tmp/a.txt", Name: "a.txt"})

	section := BuildForm([]types.Field{
		{Key: "note", Value: "section note"},
		{Key: "limit", Type: types.FieldNumber, Value: float64(5)},
		{Key: "search", Value: "abc"},
	}, nil, nil, nil)

	got, err := CollectFields(fields, form, section)
	if err != nil {
		t.Fatalf("CollectFields: %v", err)
	}
	want := map[string]any{
		"amount": 12.5,
		"empty":  float64(0),
		"note":   "hello",
		"doc":    types.FileHandle{Path: "/tmp/a.txt", Name: "a.txt"},
		"limit":  float64(5),
		"search": "abc",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("collected mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectFieldsRejectsBadNumber(t *testing.T) {
	fields := []types.Field{{Key: "amount", Type: types.FieldNumber}}
	form := BuildForm(fields, nil, nil, nil)
	form.Set("amount", "ten")

	_, err := CollectFields(fields, form, nil)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Key != "amount" {
		t.Fatalf("err = %v, want FieldError for amount", err)
	}
}

func TestSyncInputs(t *testing.T) {
	form := BuildForm([]types.Field{
		{Key: "balance", Type: types.FieldNumber},
		{Key: "doc", Type: types.FieldFile},
		{Key: "note"},
	}, nil, nil, nil)
	form.Set("note", "draft")

	SyncInputs(map[string]any{"balance": float64(40), "doc": "x"}, form)

	if in, _ := form.Get("balance"); in.Value != "40" {
		t.Errorf("balance = %q", in.Value)
	}
	if in, _ := form.Get("doc"); in.Value != "" {
		t.Errorf("file input was synced: %q", in.Value)
	}
	if in, _ := form.Get("note"); in.Value != "draft" {
		t.Errorf("note = %q", in.Value)
	}

	SyncInputs(map[string]any{"balance": float64(1), "note": "new"}, form, "note")
	if in, _ := form.Get("balance"); in.Value != "40" {
		t.Errorf("balance synced outside key set: %q", in.Value)
	}
	if in, _ := form.Get("note"); in.Value != "new" {
		t.Errorf("note = %q", in.Value)
	}
}

func TestUpdateOptions(t *testing.T) {
	form := BuildForm([]types.Field{
		{Key: "account", Type: types.FieldSelect, OptionsFrom: &types.OptionsFrom{Store: "accounts"}},
		{Key: "tag", Type: types.FieldSelect, OptionsFrom: &types.OptionsFrom{Store: "tags", Value: "slug", Label: "title"}},
		{Key: "broken", Type: types.FieldSelect, OptionsFrom: &types.OptionsFrom{Store: "scalar"}},
	}, nil, nil, nil)

	store := map[string]any{
		"accounts": []any{
			map[string]any{"id": float64(1), "name": "Checking"},
			map[string]any{"id": float64(2), "name": "Savings"},
			map[string]any{"value": "x"},
		},
		"tags":   []any{map[string]any{"slug": "a", "title": "Alpha"}},
		"scalar": "nope",
	}

	UpdateOptions(form, store, nil)

	account, _ := form.Get("account")
	want := []types.Option{{Value: "1", Label: "Checking"}, {Value: "2", Label: "Savings"}, {Value: "x", Label: "x"}}
	if diff := cmp.Diff(want, account.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	if account.Value != "1" {
		t.Errorf("default selection = %q, want first option", account.Value)
	}

	form.Set("account", "2")
	UpdateOptions(form, store, nil)
	if account, _ := form.Get("account"); account.Value != "2" {
		t.Errorf("selection not restored: %q", account.Value)
	}

	store["accounts"] = []any{map[string]any{"id": float64(9), "name": "New"}}
	UpdateOptions(form, store, nil)
	if account, _ := form.Get("account"); account.Value != "9" {
		t.Errorf("stale selection kept: %q", account.Value)
	}

	if tag, _ := form.Get("tag"); tag.Value != "a" || tag.Options[0].Label != "Alpha" {
		t.Errorf("tag = %+v", tag)
	}
	if broken, _ := form.Get("broken"); len(broken.Options) != 0 {
		t.Errorf("non-list source produced options: %+v", broken.Options)
	}
}

func TestFormSetErrors(t *testing.T) {
	form := BuildForm([]types.Field{{Key: "doc", Type: types.FieldFile}, {Key: "a"}}, nil, nil, nil)
	if err := form.Set("missing", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := form.Set("doc", "x"); err == nil {
		t.Error("expected error for text on file input")
	}
	if err := form.SetFile("a", types.FileHandle{Path: "p"}); err == nil {
		t.Error("expected error for file on text input")
	}
	if diff := cmp.Diff([]string{"doc", "a"}, form.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}
