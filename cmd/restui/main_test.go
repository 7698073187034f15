package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/studiowebux/restui/internal/history"
)

func TestWriteHistory(t *testing.T) {
	entries := []history.Entry{{
		ID:        1,
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local),
		App:       "Shop",
		Method:    "POST",
		URL:       "http://localhost:8080/items",
		Status:    422,
		Error:     "name is required",
		Duration:  12,
	}}

	var out bytes.Buffer
	if err := writeHistory(&out, entries, "text"); err != nil {
		t.Fatalf("writeHistory: %v", err)
	}
	for _, want := range []string{"2026-03-01 10:00:00", "Shop", "POST", "/items", "422 name is required", "12ms"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := writeHistory(&out, nil, ""); err != nil || !strings.Contains(out.String(), "No history entries") {
		t.Errorf("empty history: %v %q", err, out.String())
	}

	out.Reset()
	if err := writeHistory(&out, entries, "json"); err != nil || !strings.Contains(out.String(), `"durationMs": 12`) {
		t.Errorf("json history: %v %q", err, out.String())
	}

	if err := writeHistory(&out, entries, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
