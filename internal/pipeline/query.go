package pipeline

import (
	"net/url"
	"sort"
	"strings"

	"github.com/studiowebux/restui/internal/binder"
	"github.com/studiowebux/restui/internal/resolver"
	"github.com/studiowebux/restui/internal/store"
)

// BuildQueryPayload computes the query values of a section. String values
// render against the section inputs, then the store. Every computed value
// is also written to the store under its key.
func BuildQueryPayload(query map[string]any, sectionForm *binder.Form, st *store.Store) map[string]any {
	if len(query) == 0 {
		return map[string]any{}
	}

	scope, err := binder.CollectFields(nil, nil, sectionForm)
	if err != nil {
		scope = sectionForm.Values()
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	payload := make(map[string]any, len(query))
	for _, key := range keys {
		value := query[key]
		if tpl, ok := value.(string); ok {
			value = resolver.RenderTemplate(tpl, scope, st.Snapshot())
		}
		payload[key] = value
		st.Set(key, value)
	}
	return payload
}

// BuildQueryPath appends non-empty payload values to base, URL-encoded
func BuildQueryPath(base string, payload map[string]any) string {
	if len(payload) == 0 {
		return base
	}
	params := url.Values{}
	for key, value := range payload {
		if value == nil {
			continue
		}
		text := resolver.Stringify(value)
		if text == "" {
			continue
		}
		params.Set(key, text)
	}
	qs := params.Encode()
	if qs == "" {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + qs
}
