package engine

import (
	"errors"
	"fmt"

	"github.com/studiowebux/restui/internal/types"
)

// ErrNoMock is the cause of a refresh that failed with no mock available
var ErrNoMock = errors.New("read failed and no mock is available")

// MockMessage is the payload inferred when nothing better fits
const MockMessage = "Mocked response"

// mockPayload picks the fallback payload of a failed read: the generator,
// then the static value, then (when infer is set) a payload shaped after
// the display. ok is false when no tier applies.
func mockPayload(s *types.Section, display types.Display, store map[string]any, infer bool) (any, bool, error) {
	if m := s.Mock; m != nil {
		if m.Generate != nil {
			payload, err := m.Generate(store)
			if err != nil {
				return nil, false, fmt.Errorf("mock generator: %w", err)
			}
			return payload, true, nil
		}
		if m.Value != nil {
			return m.Value, true, nil
		}
	}
	if !infer {
		return nil, false, nil
	}
	return InferMock(display), true, nil
}

// InferMock builds placeholder data shaped after a display: two sample rows
// for templated lists, zeroed figures for KPIs, a message otherwise
func InferMock(display types.Display) any {
	switch {
	case display.Kind == types.DisplayList && display.Template != "":
		return []any{
			map[string]any{"id": float64(1), "name": "Sample Item 1", "amount": float64(100), "description": "Mocked data"},
			map[string]any{"id": float64(2), "name": "Sample Item 2", "amount": float64(200), "description": "Mocked data"},
		}
	case display.Kind == types.DisplayKPI && len(display.KPIs) > 0:
		figures := make(map[string]any)
		for _, k := range display.KPIs {
			if k.Key != "" {
				figures[k.Key] = float64(0)
			}
		}
		return figures
	}
	return map[string]any{"message": MockMessage}
}
