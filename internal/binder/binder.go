package binder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/restui/internal/resolver"
	"github.com/studiowebux/restui/internal/types"
)

// FieldError reports an input value that cannot be coerced to its field type
type FieldError struct {
	Key   string
	Value string
	Type  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %q is not a valid %s", e.Key, e.Value, e.Type)
}

// RenderField produces a bound input for field.
//
// A non-empty keepValue wins (never for file inputs). Otherwise the field
// value is used, rendered against row then store when it is a template.
// File inputs never receive a programmatic value.
func RenderField(field types.Field, store map[string]any, row map[string]any, keepValue string) *Input {
	in := &Input{
		Key:         field.Key,
		Type:        field.Type,
		Label:       field.Label,
		Placeholder: field.Placeholder,
		Rows:        field.Rows,
		Options:     append([]types.Option(nil), field.Options...),
		OptionsFrom: field.OptionsFrom,
	}
	if in.Type == "" {
		in.Type = types.FieldText
	}
	if in.Label == "" {
		in.Label = field.Key
	}
	if in.Type == types.FieldTextarea && in.Rows == 0 {
		in.Rows = 3
	}
	if in.Type == types.FieldFile {
		return in
	}

	if keepValue != "" {
		in.Value = keepValue
	} else if value, ok := resolver.ResolveTemplateValue(field.Value, store, row); ok {
		in.Value = resolver.Stringify(value)
	}

	if in.IsSelect() && len(in.Options) > 0 && !in.HasOption(in.Value) {
		in.Value = in.Options[0].Value
	}
	return in
}

// BuildForm renders every field into a new form. keep supplies per-key
// values that win over field defaults (row values for row forms).
func BuildForm(fields []types.Field, store map[string]any, row map[string]any, keep map[string]any) *Form {
	form := NewForm()
	for _, field := range fields {
		keepValue := ""
		if v, ok := keep[field.Key]; ok && v != nil {
			keepValue = resolver.Stringify(v)
		}
		form.Add(RenderField(field, store, row, keepValue))
	}
	return form
}

// CollectFields reads typed values for fields out of form. Number fields
// parse as float64 with empty as 0; file fields yield a FileHandle.
// Keys of fallback that the primary set did not produce are added too.
func CollectFields(fields []types.Field, form *Form, fallback *Form) (map[string]any, error) {
	out := make(map[string]any)

	for _, field := range fields {
		in, ok := form.Get(field.Key)
		if !ok {
			continue
		}
		value, err := coerce(in)
		if err != nil {
			return nil, err
		}
		if value != nil {
			out[field.Key] = value
		}
	}

	for _, in := range fallback.Inputs() {
		if _, exists := out[in.Key]; exists {
			continue
		}
		value, err := coerce(in)
		if err != nil {
			return nil, err
		}
		if value != nil {
			out[in.Key] = value
		}
	}
	return out, nil
}

func coerce(in Input) (any, error) {
	switch in.Type {
	case types.FieldFile:
		if in.File == nil {
			return nil, nil
		}
		return *in.File, nil
	case types.FieldNumber:
		text := strings.TrimSpace(in.Value)
		if text == "" {
			return float64(0), nil
		}
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &FieldError{Key: in.Key, Value: in.Value, Type: in.Type}
		}
		return n, nil
	default:
		return in.Value, nil
	}
}

// SyncInputs writes store values back into every non-file input whose key
// exists in the store. When keys are given only those are synced.
func SyncInputs(store map[string]any, form *Form, keys ...string) {
	if form == nil || store == nil {
		return
	}
	only := make(map[string]bool, len(keys))
	for _, key := range keys {
		only[key] = true
	}
	for _, key := range form.Keys() {
		if len(only) > 0 && !only[key] {
			continue
		}
		value, ok := store[key]
		if !ok {
			continue
		}
		form.update(key, func(in *Input) {
			if in.Type == types.FieldFile {
				return
			}
			in.Value = resolver.Stringify(value)
		})
	}
}

// UpdateOptions rebuilds the options of every select bound to a store list.
// The previous selection is restored when it is still offered, otherwise
// the first option is selected. Sources that are not lists are skipped.
func UpdateOptions(form *Form, store map[string]any, log logrus.FieldLogger) {
	if form == nil {
		return
	}
	for _, in := range form.Inputs() {
		if in.OptionsFrom == nil || in.OptionsFrom.Store == "" {
			continue
		}
		from := in.OptionsFrom
		source, found := resolver.Lookup(store, from.Store)
		list, isList := source.([]any)
		if !isList {
			if found && log != nil {
				log.WithFields(logrus.Fields{
					"field": in.Key,
					"store": from.Store,
				}).Warn("optionsFrom source is not a list")
			}
			continue
		}

		options := BuildOptions(list, from.Value, from.Label)
		form.update(in.Key, func(target *Input) {
			previous := target.Value
			target.Options = options
			switch {
			case previous != "" && target.HasOption(previous):
				target.Value = previous
			case len(options) > 0:
				target.Value = options[0].Value
			default:
				target.Value = ""
			}
		})
	}
}

// BuildOptions maps store rows to options. The value key defaults to id and
// falls back through id, name and value; the label key defaults to name
// and falls back to the value.
func BuildOptions(list []any, valueKey, labelKey string) []types.Option {
	if valueKey == "" {
		valueKey = "id"
	}
	if labelKey == "" {
		labelKey = "name"
	}

	options := make([]types.Option, 0, len(list))
	for _, row := range list {
		value := firstDefined(row, valueKey, "id", "name", "value")
		label := value
		if l, ok := resolver.ResolvePath(row, labelKey); ok && l != nil {
			label = resolver.Stringify(l)
		}
		options = append(options, types.Option{Value: value, Label: label})
	}
	return options
}

func firstDefined(row any, keys ...string) string {
	for _, key := range keys {
		if v, ok := resolver.ResolvePath(row, key); ok && v != nil {
			return resolver.Stringify(v)
		}
	}
	if _, isMap := row.(map[string]any); !isMap {
		return resolver.Stringify(row)
	}
	return ""
}
