package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestFieldListYAMLMapping(t *testing.T) {
	src := `
amount: 10
note:
  type: textarea
  rows: 3
account:
  optionsFrom: accounts
  optionValue: uid
  optionLabel: title
`
	var fields FieldList
	if err := yaml.Unmarshal([]byte(src), &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := FieldList{
		{Key: "amount", Type: FieldNumber, Value: 10},
		{Key: "note", Type: FieldTextarea, Rows: 3},
		{Key: "account", Type: FieldText, OptionsFrom: &OptionsFrom{Store: "accounts", Value: "uid", Label: "title"}},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldListJSONKeepsOrder(t *testing.T) {
	var fields FieldList
	if err := json.Unmarshal([]byte(`{"z": "x", "a": 2, "m": {"label": "M"}}`), &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	keys := []string{}
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, keys); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if fields[1].Type != FieldNumber {
		t.Errorf("bare number type = %q, want number", fields[1].Type)
	}
	if fields[2].Label != "M" || fields[2].Type != FieldText {
		t.Errorf("rich field = %+v", fields[2])
	}
}

func TestFieldSpecRejectsSequence(t *testing.T) {
	var fields FieldList
	if err := yaml.Unmarshal([]byte("a: [1, 2]"), &fields); err == nil {
		t.Error("expected error for sequence field value")
	}
}

func TestReadRuleShorthand(t *testing.T) {
	var s Section
	if err := yaml.Unmarshal([]byte("title: Items\nread: /items\ndisplay:\n  kind: list\n  template: '{{name}}'"), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Read == nil || s.Read.Method != MethodGet || s.Read.Path != "/items" {
		t.Errorf("read = %+v", s.Read)
	}
	if s.Display.Kind != DisplayList {
		t.Errorf("display kind = %v", s.Display.Kind)
	}
	if s.Key() != "items" {
		t.Errorf("key = %q", s.Key())
	}
}

func TestMockYAMLIsStaticValue(t *testing.T) {
	var s Section
	if err := yaml.Unmarshal([]byte("title: X\nmock:\n  - id: 1\n    name: A"), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []any{map[string]any{"id": float64(1), "name": "A"}}
	if diff := cmp.Diff(want, s.Mock.Value); diff != "" {
		t.Errorf("mock mismatch (-want +got):\n%s", diff)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Account Balance", "account-balance"},
		{"  Chat / Live!  ", "chat-live"},
		{"KPI 2024", "kpi-2024"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestActionHTTPMethod(t *testing.T) {
	if m := (&Action{}).HTTPMethod(); m != MethodPost {
		t.Errorf("default method = %q", m)
	}
	if m := (&Action{Method: "put"}).HTTPMethod(); m != MethodPut {
		t.Errorf("method = %q", m)
	}
}

func TestValidate(t *testing.T) {
	ok := NewApp("Bank", WithSections(
		NewSection("Accounts", WithRead("", "/accounts"), WithActions(
			NewAction("Spend", "POST", "/spend", WithBearer("token")),
		)),
	))
	if err := Validate(ok); err != nil {
		t.Errorf("valid app: %v", err)
	}

	bad := NewApp("Bank", WithSections(
		NewSection("Accounts", WithRead("", "/a")),
		NewSection("Accounts", WithActions(
			NewAction("Go", "FETCH", ""),
			Action{Label: "Auth", Path: "/x", Auth: &Auth{Mode: "basic", UserKey: "u"}},
		)),
		NewSection("Chat", WithRead("", "/h"), WithLive(LiveConfig{URL: "ws://x"})),
		NewSection("Map", WithSectionStore(map[string]string{"x": "items[?"})),
	))
	err := Validate(bad)
	if err == nil {
		t.Fatal("expected errors")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error %v is not a ConfigError", err)
	}
	msg := err.Error()
	for _, want := range []string{"duplicate section id", "unknown method", "needs a path", "basic auth", "live section", "map.store.x"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestAllSectionsPrefersGroups(t *testing.T) {
	app := NewApp("A",
		WithSections(NewSection("Loose")),
		WithGroups(NewGroup("G", "", NewSection("One"), NewSection("Two"))),
	)
	got := []string{}
	for _, s := range app.AllSections() {
		got = append(got, s.Key())
	}
	if diff := cmp.Diff([]string{"one", "two"}, got); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}
