package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldSpec is the loose shape fields are declared with: either a bare
// default value or a rich options object. Normalize turns it into a Field.
type FieldSpec struct {
	// Bare default value (string, number, bool)
	Value any

	// Rich options object
	Options *FieldOptions
}

// FieldOptions is the rich form of a field declaration
type FieldOptions struct {
	Label       string       `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Type        string       `json:"type,omitempty" yaml:"type,omitempty"`
	Value       any          `json:"value,omitempty" yaml:"value,omitempty"`
	Rows        int          `json:"rows,omitempty" yaml:"rows,omitempty"`
	Options     []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	OptionsFrom *OptionsFrom `json:"optionsFrom,omitempty" yaml:"optionsFrom,omitempty"`
	OptionValue string       `json:"optionValue,omitempty" yaml:"optionValue,omitempty"`
	OptionLabel string       `json:"optionLabel,omitempty" yaml:"optionLabel,omitempty"`
}

// Normalize produces the canonical field for key
func (s FieldSpec) Normalize(key string) Field {
	if s.Options != nil {
		o := s.Options
		field := Field{
			Key:         key,
			Label:       o.Label,
			Placeholder: o.Placeholder,
			Type:        o.Type,
			Value:       o.Value,
			Rows:        o.Rows,
			Options:     o.Options,
		}
		if field.Type == "" {
			field.Type = FieldText
		}
		if o.OptionsFrom != nil {
			from := *o.OptionsFrom
			if from.Value == "" {
				from.Value = o.OptionValue
			}
			if from.Label == "" {
				from.Label = o.OptionLabel
			}
			field.OptionsFrom = &from
		}
		return field
	}

	fieldType := FieldText
	switch s.Value.(type) {
	case int, int64, float64, float32:
		fieldType = FieldNumber
	}
	return Field{Key: key, Type: fieldType, Value: s.Value}
}

// UnmarshalYAML accepts a scalar or a mapping
func (s *FieldSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var opts FieldOptions
		if err := node.Decode(&opts); err != nil {
			return err
		}
		s.Options = &opts
		return nil
	}
	if node.Kind == yaml.SequenceNode {
		return errors.New("field value must be a scalar or an options object")
	}
	var value any
	if err := node.Decode(&value); err != nil {
		return err
	}
	s.Value = value
	return nil
}

// UnmarshalJSON accepts a scalar or an object
func (s *FieldSpec) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var opts FieldOptions
		if err := json.Unmarshal(trimmed, &opts); err != nil {
			return err
		}
		s.Options = &opts
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return errors.New("field value must be a scalar or an options object")
	}
	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	s.Value = value
	return nil
}

// FieldList is an ordered field set. In files it is written either as a
// list of fields or as a mapping of key to FieldSpec (order preserved).
type FieldList []Field

// UnmarshalYAML implements yaml.Unmarshaler
func (l *FieldList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var fields []Field
		if err := node.Decode(&fields); err != nil {
			return err
		}
		*l = fields
		return nil
	case yaml.MappingNode:
		fields := make([]Field, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			var spec FieldSpec
			if err := node.Content[i+1].Decode(&spec); err != nil {
				return fmt.Errorf("field %s: %w", key, err)
			}
			fields = append(fields, spec.Normalize(key))
		}
		*l = fields
		return nil
	default:
		return fmt.Errorf("fields must be a list or a mapping (line %d)", node.Line)
	}
}

// UnmarshalJSON implements json.Unmarshaler, keeping object key order
func (l *FieldList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var fields []Field
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		*l = fields
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("fields must be an array or an object")
	}
	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var spec FieldSpec
		if err := dec.Decode(&spec); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		fields = append(fields, spec.Normalize(key))
	}
	*l = fields
	return nil
}

// UnmarshalYAML lets options be written as bare strings
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Value = node.Value
		o.Label = node.Value
		return nil
	}
	type plain Option
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*o = Option(p)
	return nil
}

// UnmarshalJSON lets options be written as bare strings or numbers
func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		o.Value = fmt.Sprint(v)
		o.Label = o.Value
		return nil
	}
	type plain Option
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*o = Option(p)
	return nil
}

// DisplayLabel returns the label, falling back to the value
func (o Option) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// UnmarshalYAML lets optionsFrom be a bare store path
func (f *OptionsFrom) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Store = node.Value
		return nil
	}
	type plain OptionsFrom
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*f = OptionsFrom(p)
	return nil
}

// UnmarshalJSON lets optionsFrom be a bare store path
func (f *OptionsFrom) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		f.Store = path
		return nil
	}
	type plain OptionsFrom
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = OptionsFrom(p)
	return nil
}
