package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "conflict", "invalid", "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}
	if !r.HasErrors() && len(r.Warnings) == 0 {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// Validator validates keybinding configurations
type Validator struct {
	// reservedKeys are keys that keep their global action
	reservedKeys map[string]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuitForce,
		},
	}
}

// ValidateConfig checks action names, reserved keys and keys bound to
// two actions of the same context
func (v *Validator) ValidateConfig(config *Config) *ValidationResult {
	result := &ValidationResult{}

	for _, context := range contexts {
		bindings := config.sections()[context]

		// Sorted for stable messages
		names := make([]string, 0, len(bindings))
		for name := range bindings {
			names = append(names, name)
		}
		sort.Strings(names)

		owner := map[string]Action{}
		for _, name := range names {
			action := Action(name)
			if !IsKnown(action) {
				result.Errors = append(result.Errors, ValidationError{
					Type: "invalid", Context: context, Key: name,
					Message: "unknown action",
				})
				continue
			}
			keys := splitKeys(bindings[name])
			if len(keys) == 0 {
				result.Warnings = append(result.Warnings, ValidationError{
					Type: "warning", Context: context, Key: name,
					Message: "action left unbound",
				})
			}
			for _, key := range keys {
				if reserved, ok := v.reservedKeys[key]; ok && reserved != action {
					result.Errors = append(result.Errors, ValidationError{
						Type: "invalid", Context: context, Key: key,
						Message: fmt.Sprintf("reserved for %s", reserved),
					})
				}
				if prev, ok := owner[key]; ok && prev != action {
					result.Errors = append(result.Errors, ValidationError{
						Type: "conflict", Context: context, Key: key,
						Message: fmt.Sprintf("bound to both %s and %s", prev, action),
					})
				}
				owner[key] = action
			}
		}
	}
	return result
}
