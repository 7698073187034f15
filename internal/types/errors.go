package types

import "fmt"

// ConfigError reports misuse of the configuration tree. It is raised at
// the point of use and aborts the interaction before the store is touched.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s: %s", e.Path, e.Message)
}

// Errorf builds a ConfigError for path
func Errorf(path, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Message: fmt.Sprintf(format, args...)}
}
