package store

import (
	"reflect"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/studiowebux/restui/internal/types"
)

func floatPtr(f float64) *float64 { return &f }

func TestApplyStore(t *testing.T) {
	s := New(map[string]any{"balance": float64(90), "keep": "old"})
	body := map[string]any{
		"data": map[string]any{"balance": float64(40), "owner": nil},
		"list": []any{map[string]any{"id": float64(3)}},
	}

	written := s.ApplyStore(map[string]string{
		"balance": "data.balance",
		"keep":    "data.missing",
		"owner":   "data.owner",
		"first":   "list[0].id",
	}, body)

	if diff := cmp.Diff([]string{"balance", "first", "owner"}, written); diff != "" {
		t.Errorf("written keys mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"balance": float64(40), "keep": "old", "owner": nil, "first": float64(3)}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyHeaderStore(t *testing.T) {
	s := New(nil)
	headers := map[string]string{"x-request-id": "r-1", "etag": "abc"}

	s.ApplyHeaderStore(map[string]string{"requestId": "X-Request-Id", "missing": "X-Nope"}, headers)

	if v, _ := s.Get("requestId"); v != "r-1" {
		t.Errorf("requestId = %v", v)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("missing header should not be written")
	}
}

func TestApplySetMap(t *testing.T) {
	s := New(map[string]any{"user": "ada"})
	s.ApplySetMap(map[string]any{
		"greeting": "hi {{name}} from {{user}}",
		"count":    float64(2),
		"flag":     true,
	}, map[string]any{"name": "bob"})

	want := map[string]any{"user": "ada", "greeting": "hi bob from ada", "count": float64(2), "flag": true}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyAdjustment(t *testing.T) {
	tests := []struct {
		name    string
		initial map[string]any
		adj     types.Adjustment
		want    float64
	}{
		{"clamped to min", map[string]any{"credits": float64(3)}, types.Adjustment{Key: "credits", Delta: float64(-5), Min: floatPtr(0)}, 0},
		{"no min goes negative", map[string]any{"credits": float64(3)}, types.Adjustment{Key: "credits", Delta: float64(-5)}, -2},
		{"missing starts at zero", nil, types.Adjustment{Key: "count", Delta: float64(1)}, 1},
		{"string current", map[string]any{"count": "4"}, types.Adjustment{Key: "count", Delta: 1}, 5},
		{"templated delta", map[string]any{"count": float64(1), "step": float64(10)}, types.Adjustment{Key: "count", Delta: "{{step}}"}, 11},
		{"unparsable delta", map[string]any{"count": float64(1)}, types.Adjustment{Key: "count", Delta: "abc"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.initial)
			if got := s.ApplyAdjustment(tt.adj); got != tt.want {
				t.Errorf("ApplyAdjustment = %v, want %v", got, tt.want)
			}
			if v, _ := s.Get(tt.adj.Key); v != tt.want {
				t.Errorf("stored = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestConcurrentAdjustments(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ApplyAdjustment(types.Adjustment{Key: "n", Delta: float64(1)})
		}()
	}
	wg.Wait()
	if v, _ := s.Get("n"); v != float64(50) {
		t.Errorf("n = %v, want 50", v)
	}
}

func TestApplyStoreDiffWithinMapping(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("applyStore only writes mapped keys that resolve", prop.ForAll(
		func(bodyKeys []string, mapKeys []string, value string) bool {
			body := map[string]any{}
			for _, key := range bodyKeys {
				body[key] = value
			}
			mapping := map[string]string{}
			for _, key := range mapKeys {
				mapping["k_"+key] = key
			}

			initial := map[string]any{"untouched": "x"}
			s := New(initial)
			s.ApplyStore(mapping, body)
			after := s.Snapshot()

			for key, v := range after {
				before, existed := initial[key]
				if existed && reflect.DeepEqual(before, v) {
					continue
				}
				path, mapped := mapping[key]
				if !mapped {
					return false
				}
				if _, ok := body[path]; !ok {
					return false
				}
			}
			for key, path := range mapping {
				if _, ok := body[path]; ok && after[key] != value {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Identifier()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
