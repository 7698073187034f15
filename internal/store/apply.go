package store

import (
	"math"
	"sort"
	"strings"

	"github.com/studiowebux/restui/internal/resolver"
	"github.com/studiowebux/restui/internal/types"
)

// ApplyStore copies response values into the store. Each mapping entry is
// store key -> dotted path (or JMESPath expression) into body. Entries that
// do not resolve are skipped and leave the existing value in place; a
// resolved null is written. Returns the keys written.
func (s *Store) ApplyStore(mapping map[string]string, body any) []string {
	if len(mapping) == 0 || body == nil {
		return nil
	}

	var written []string
	for _, key := range sortedKeys(mapping) {
		value, ok := resolver.Lookup(body, mapping[key])
		if !ok {
			continue
		}
		s.Set(key, value)
		written = append(written, key)
	}
	return written
}

// ApplyHeaderStore copies response headers into the store. Each mapping
// entry is store key -> header name; names match case-insensitively.
func (s *Store) ApplyHeaderStore(mapping map[string]string, headers map[string]string) []string {
	if len(mapping) == 0 || headers == nil {
		return nil
	}

	var written []string
	for _, key := range sortedKeys(mapping) {
		value, ok := headers[strings.ToLower(mapping[key])]
		if !ok {
			continue
		}
		s.Set(key, value)
		written = append(written, key)
	}
	return written
}

// ApplySetMap assigns values directly. String values are rendered as
// templates against body, then the store.
func (s *Store) ApplySetMap(set map[string]any, body map[string]any) []string {
	if len(set) == 0 {
		return nil
	}
	if body == nil {
		body = map[string]any{}
	}

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := set[key]
		if tpl, ok := value.(string); ok {
			value = resolver.RenderTemplate(tpl, body, s.Snapshot())
		}
		s.Set(key, value)
	}
	return keys
}

// ApplyAdjustment adds a delta to the numeric value under adj.Key and
// clamps the result to adj.Min. A missing or non-numeric current value
// counts as 0; a string delta is rendered against the store first.
func (s *Store) ApplyAdjustment(adj types.Adjustment) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := resolver.ToNumber(s.values[adj.Key])
	if !ok || math.IsNaN(current) {
		current = 0
	}

	delta := adj.Delta
	if tpl, isString := delta.(string); isString {
		delta = resolver.RenderTemplate(tpl, map[string]any{}, s.values)
	}
	step, ok := resolver.ToNumber(delta)
	if !ok || math.IsNaN(step) {
		step = 0
	}

	next := current + step
	if adj.Min != nil {
		next = math.Max(*adj.Min, next)
	}
	s.values[adj.Key] = next
	return next
}

// ApplyAdjustments applies every adjustment in order and returns the keys touched
func (s *Store) ApplyAdjustments(adjustments []types.Adjustment) []string {
	keys := make([]string, 0, len(adjustments))
	for _, adj := range adjustments {
		s.ApplyAdjustment(adj)
		keys = append(keys, adj.Key)
	}
	return keys
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
