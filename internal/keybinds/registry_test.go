package keybinds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatchFallsBackToGlobal(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		context Context
		key     string
		want    Action
		ok      bool
	}{
		{ContextNormal, "enter", ActionActivate, true},
		{ContextNormal, "ctrl+c", ActionQuitForce, true},
		{ContextEdit, "enter", ActionTextSubmit, true},
		{ContextEdit, "q", "", false},
		{ContextConfirm, "y", ActionConfirmYes, true},
		{ContextHelp, "?", ActionCloseModal, true},
	}
	for _, tt := range tests {
		got, ok := r.Match(tt.context, tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Match(%s, %q) = %q, %v; want %q, %v", tt.context, tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMatchMultiKey(t *testing.T) {
	r := NewDefaultRegistry()

	if _, complete, partial := r.MatchMultiKey(ContextNormal, "g"); complete || !partial {
		t.Fatalf("first g: complete=%v partial=%v", complete, partial)
	}
	if action, complete, _ := r.MatchMultiKey(ContextNormal, "g"); !complete || action != ActionGoToTop {
		t.Errorf("gg = %q, %v", action, complete)
	}

	r.MatchMultiKey(ContextNormal, "g")
	if _, complete, partial := r.MatchMultiKey(ContextNormal, "x"); complete || partial {
		t.Error("gx should not match")
	}
	if action, complete, _ := r.MatchMultiKey(ContextNormal, "G"); !complete || action != ActionGoToBottom {
		t.Errorf("G = %q, %v", action, complete)
	}
}

func TestGetBindingString(t *testing.T) {
	r := NewDefaultRegistry()
	if got := r.GetBindingString(ContextNormal, ActionNavigateDown); got != "down, j" {
		t.Errorf("navigate_down = %q", got)
	}
	if got := r.GetBindingString(ContextEdit, ActionQuitForce); got != "ctrl+c" {
		t.Errorf("quit_force = %q", got)
	}
	if got := r.GetBindingString(ContextEdit, ActionRefresh); got != "unbound" {
		t.Errorf("refresh in edit = %q", got)
	}
}

func TestListBindings(t *testing.T) {
	r := NewRegistry()
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextHelp, "q", ActionCloseModal)
	r.Register(ContextHelp, "esc", ActionCloseModal)

	want := []Binding{
		{Key: "esc", Action: ActionCloseModal, Context: ContextHelp},
		{Key: "q", Action: ActionCloseModal, Context: ContextHelp},
		{Key: "ctrl+c", Action: ActionQuitForce, Context: ContextGlobal},
	}
	if diff := cmp.Diff(want, r.ListBindings(ContextHelp)); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	path := GetDefaultConfigPath(dir)

	r, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault without file: %v", err)
	}
	if !r.HasBinding(ContextNormal, "r") {
		t.Error("defaults missing")
	}

	config := "normal:\n  refresh: \"F5, ctrl+r\"\n  copy_output: y\n"
	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	r, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if got := r.GetBindingString(ContextNormal, ActionRefresh); got != "F5, ctrl+r" {
		t.Errorf("refresh = %q", got)
	}
	if r.HasBinding(ContextNormal, "c") {
		t.Error("default copy key kept")
	}
	if action, _ := r.Match(ContextNormal, "y"); action != ActionCopyOutput {
		t.Errorf("y = %q", action)
	}
}

func TestLoadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybinds.json")
	if err := os.WriteFile(path, []byte(`{"help":{"close_modal":"x"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.Help["close_modal"] != "x" {
		t.Errorf("help = %v", config.Help)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "keys.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"valid", Config{Normal: map[string]string{"refresh": "F5"}}, ""},
		{"unknown action", Config{Normal: map[string]string{"explode": "x"}}, "unknown action"},
		{"reserved key", Config{Normal: map[string]string{"refresh": "ctrl+c"}}, "reserved for quit_force"},
		{"conflict", Config{Normal: map[string]string{"refresh": "x", "copy_output": "x"}}, "bound to both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewValidator().ValidateConfig(&tt.config)
			if tt.wantErr == "" {
				if result.HasErrors() {
					t.Errorf("unexpected errors: %s", result.String())
				}
				return
			}
			if !strings.Contains(result.String(), tt.wantErr) {
				t.Errorf("result %q missing %q", result.String(), tt.wantErr)
			}
			if err := ApplyConfig(NewDefaultRegistry(), &tt.config); err == nil {
				t.Error("ApplyConfig accepted invalid config")
			}
		})
	}
}

func TestExportConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	if err := SaveConfig(ExportConfig(NewDefaultRegistry()), path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	r, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if diff := cmp.Diff(NewDefaultRegistry().ListBindings(ContextNormal), r.ListBindings(ContextNormal)); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}
}
