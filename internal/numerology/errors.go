package numerology

import (
	"errors"
	"fmt"
)

// ValidationError reports an input that cannot produce a reading.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports an unsupported numerology system.
type ConfigurationError struct {
	System string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unsupported numerology system %q", e.System)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConfiguration reports whether err is or wraps a *ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
