package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Debug("hidden")
	log.WithFields(logrus.Fields{"section": "items"}).Info("refreshed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line written at info level")
	}
	if !strings.Contains(out, "section=items") || !strings.Contains(out, "refreshed") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNewDefaultsToWarn(t *testing.T) {
	log, err := New("", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %v, want warn", log.GetLevel())
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "restui.log")
	log, closer, err := NewFile("debug", path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	log.Debug("written")
	if err := closer.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Error("OrDiscard(nil) returned nil")
	}
}
