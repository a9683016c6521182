package specification

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField marks a required key that is absent or empty.
	ErrMissingField = errors.New("required field is missing")
	// ErrInvalidField marks a key whose value cannot be used.
	ErrInvalidField = errors.New("invalid value")
)

// ConfigError reports a specification document that cannot be used: it is
// unreadable, malformed, or misses required fields.
type ConfigError struct {
	Path  string // document path, empty for programmatic specifications
	Field string // offending key, empty when the whole document is at fault
	Err   error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("specification")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func missing(field string) error {
	return &ConfigError{Field: field, Err: ErrMissingField}
}

func invalid(field, format string, values ...any) error {
	return &ConfigError{Field: field, Err: fmt.Errorf("%w: %s", ErrInvalidField, fmt.Sprintf(format, values...))}
}
