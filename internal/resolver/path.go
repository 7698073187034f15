// Package resolver looks up dotted paths and renders {{ }} templates
// against response data and the store.
package resolver

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jmespath/go-jmespath"
)

// expressionChars mark a path as a JMESPath expression rather than a dotted path
const expressionChars = "[|*?(@`"

var compiled sync.Map // expression -> *jmespath.JMESPath

// ResolvePath walks a dotted path into nested maps and slices.
// It reports false when the root is falsy or any segment is missing.
// A present null leaf resolves to (nil, true).
func ResolvePath(root any, path string) (any, bool) {
	if !Truthy(root) || path == "" {
		return nil, false
	}

	current := root
	for _, part := range strings.Split(path, ".") {
		// Falsy intermediates end the walk
		if !Truthy(current) {
			return nil, false
		}
		next, ok := child(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// child returns one level of lookup
func child(node any, part string) (any, bool) {
	switch v := node.(type) {
	case map[string]any:
		value, ok := v[part]
		return value, ok
	case map[string]string:
		value, ok := v[part]
		return value, ok
	case []any:
		if part == "length" {
			return float64(len(v)), true
		}
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return v[i], true
	case []map[string]any:
		if part == "length" {
			return float64(len(v)), true
		}
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return v[i], true
	case string:
		if part == "length" {
			return float64(len(v)), true
		}
	}
	return nil, false
}

// IsExpression reports whether expr needs the JMESPath engine
func IsExpression(expr string) bool {
	return strings.ContainsAny(expr, expressionChars)
}

// Check validates an expression without evaluating it
func Check(expr string) error {
	if expr == "" {
		return fmt.Errorf("empty path")
	}
	if !IsExpression(expr) {
		return nil
	}
	_, err := compile(expr)
	return err
}

// Lookup resolves a dotted path or a JMESPath expression against root.
// A null expression result counts as undefined.
func Lookup(root any, expr string) (any, bool) {
	if !IsExpression(expr) {
		return ResolvePath(root, expr)
	}
	if root == nil {
		return nil, false
	}

	jp, err := compile(expr)
	if err != nil {
		return nil, false
	}
	result, err := jp.Search(root)
	if err != nil || result == nil {
		return nil, false
	}
	return result, true
}

func compile(expr string) (*jmespath.JMESPath, error) {
	if cached, ok := compiled.Load(expr); ok {
		return cached.(*jmespath.JMESPath), nil
	}
	jp, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expr, err)
	}
	compiled.Store(expr, jp)
	return jp, nil
}

// Truthy follows the loose truthiness rules of the app file format:
// nil, false, zero and "" are falsy, everything else is truthy
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case float32:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	}
	return true
}
