package resolver

import (
	"regexp"
	"strings"
)

var (
	// Template token pattern: {{ key.path }}
	tokenPattern = regexp.MustCompile(`\{\{\s*([\w.]+)\s*\}\}`)
)

// RenderTemplate replaces every {{ path }} token of tpl.
//
// The literal token json renders the JSON of data. Other paths are looked
// up in data first and fall through to store only when data has no
// non-null value. Objects render as JSON, missing values as "".
func RenderTemplate(tpl string, data any, store map[string]any) string {
	if !strings.Contains(tpl, "{{") {
		return tpl
	}
	return tokenPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		key := tokenPattern.FindStringSubmatch(match)[1]
		if key == "json" {
			return JSON(data)
		}

		if value, ok := ResolvePath(data, key); ok && value != nil {
			return Stringify(value)
		}
		if value, ok := ResolvePath(store, key); ok && value != nil {
			return Stringify(value)
		}
		return ""
	})
}

// HasTokens reports whether s contains template tokens
func HasTokens(s string) bool {
	return strings.Contains(s, "{{")
}

// ResolveTemplateValue renders string values containing tokens against
// row then store. An empty render yields (nil, false). Other values pass
// through untouched.
func ResolveTemplateValue(value any, store map[string]any, row map[string]any) (any, bool) {
	s, ok := value.(string)
	if !ok || !HasTokens(s) {
		return value, value != nil
	}
	if row == nil {
		row = map[string]any{}
	}
	rendered := RenderTemplate(s, row, store)
	if rendered == "" {
		return nil, false
	}
	return rendered, true
}

// LookupValue reads key from body, then store, then returns ""
func LookupValue(key string, body, store map[string]any) any {
	if value, ok := body[key]; ok && value != nil {
		return value
	}
	if value, ok := store[key]; ok && value != nil {
		return value
	}
	return ""
}
