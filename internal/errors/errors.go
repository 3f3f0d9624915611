package errors

import (
	stderrors "errors"
	"fmt"
)

// ConfigError reports an invalid engine or optimizer configuration.
// It is fatal: nothing is simulated once one is raised.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config: %s", e.Reason)
}

// NewConfigError creates a new configuration error
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// DataError reports a problem with an input bar series, e.g. timestamps
// out of order or fewer bars than a component's warm-up needs. During
// walk-forward optimization a DataError aborts only the window that
// raised it.
type DataError struct {
	Reason     string
	Underlying error
}

// Error implements the error interface
func (e *DataError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("data: %s: %v", e.Reason, e.Underlying)
	}
	return fmt.Sprintf("data: %s", e.Reason)
}

// Unwrap returns the underlying error for error unwrapping
func (e *DataError) Unwrap() error {
	return e.Underlying
}

// NewDataError creates a new data error
func NewDataError(reason string) *DataError {
	return &DataError{Reason: reason}
}

// WrapDataError wraps an existing error as a data error
func WrapDataError(reason string, err error) *DataError {
	return &DataError{Reason: reason, Underlying: err}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return stderrors.As(err, &ce)
}

// IsDataError reports whether err is (or wraps) a DataError.
func IsDataError(err error) bool {
	var de *DataError
	return stderrors.As(err, &de)
}
