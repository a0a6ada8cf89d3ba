package config

import "fmt"

// MalformedError reports a configuration file that exists but cannot be
// parsed as JSON. It is fatal: the process must not start with a half-read
// configuration.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed JSON in configuration file %s: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// ValidationError reports a configuration document that parsed but violates
// the registered schema. FieldPath names the offending key in dotted
// notation and Constraint names the violated rule, so the user sees exactly
// what to fix before any unit runs.
type ValidationError struct {
	FieldPath  string
	Constraint string
	Message    string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("configuration validation error: %s (field %q, constraint %q)", e.Message, e.FieldPath, e.Constraint)
	}
	return fmt.Sprintf("configuration validation error: field %q violates constraint %q", e.FieldPath, e.Constraint)
}
