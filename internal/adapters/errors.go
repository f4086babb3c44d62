// Package adapters - errors.go defines the error taxonomy for registration,
// resolution and transformation failures.
//
// DESIGN: Typed errors carrying enough context (model ID, pattern, field name)
// to diagnose a failure at the call site with errors.As. None are retryable
// except MalformedResponseError, where the caller may retry the upstream call.
package adapters

import "fmt"

// ConfigurationError reports an invalid binding at registration time.
// Fatal at startup: a registry with a bad pattern must never serve traffic.
type ConfigurationError struct {
	Pattern string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid adapter binding pattern %q: %v", e.Pattern, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UnknownModelError reports that no registered pattern matched a model ID.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("no adapter registered for model %q", e.Model)
}

// UnsupportedParameterError reports a normalized request feature the
// resolved family's wire protocol cannot express.
type UnsupportedParameterError struct {
	Family    string
	Parameter string
}

func (e *UnsupportedParameterError) Error() string {
	return fmt.Sprintf("model family %q does not support parameter %q", e.Family, e.Parameter)
}

// MalformedResponseError reports a vendor response missing a required field.
type MalformedResponseError struct {
	Family string
	Field  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: missing field %q", e.Family, e.Field)
}
