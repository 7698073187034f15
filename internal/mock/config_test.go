package mock

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	content := `
port: 9090
rateLimit: 5
routes:
  - method: GET
    path: /stats
    json:
      data:
        users: 2
socket:
  history: /messages
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 9090 || cfg.RateLimit != 5 || cfg.Socket == nil || cfg.Socket.History != "/messages" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	want := map[string]any{"data": map[string]any{"users": float64(2)}}
	if diff := cmp.Diff(want, cfg.Routes[0].JSON); diff != "" {
		t.Errorf("json body mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleConfigRoundTrip(t *testing.T) {
	for _, name := range []string{"routes.yaml", "routes.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := SaveConfig(SampleConfig(), path); err != nil {
				t.Fatalf("SaveConfig: %v", err)
			}
			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if diff := cmp.Diff(SampleConfig(), cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"empty", Config{}, "no routes defined"},
		{"method", Config{Routes: []Route{{Path: "/a"}}}, "method is required"},
		{"path", Config{Routes: []Route{{Method: "GET"}}}, "path is required"},
		{"path type", Config{Routes: []Route{{Method: "GET", Path: "/a", PathType: "glob"}}}, "pathType must be"},
		{"regex", Config{Routes: []Route{{Method: "GET", Path: "(", PathType: "regex"}}}, "invalid regex"},
		{"json and body", Config{Routes: []Route{{Method: "GET", Path: "/a", Body: "x", JSON: 1}}}, "cannot be combined"},
		{"rate", Config{RateLimit: -1, Routes: []Route{{Method: "GET", Path: "/a"}}}, "rateLimit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("validateConfig() = %v, want error containing %q", err, tt.want)
			}
		})
	}

	socketOnly := Config{Socket: &Socket{}}
	if err := validateConfig(&socketOnly); err != nil {
		t.Errorf("socket-only config rejected: %v", err)
	}
}

func TestLoadConfigUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.toml")
	os.WriteFile(path, []byte(""), 0644)
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("LoadConfig() = %v", err)
	}
}
