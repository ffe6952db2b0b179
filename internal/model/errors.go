package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfig       = errors.New("config error")
	ErrSpecNotFound = errors.New("spec not found")
	ErrSchema       = errors.New("schema error")
)

// ConfigError reports a missing, invalid or contradictory configuration value.
// Field is the dotted key path, e.g. "fleets[0].block_reward".
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// MissingField is shorthand for the most common ConfigError.
func MissingField(field string) error {
	return &ConfigError{Field: field, Reason: "is required"}
}

// SpecNotFoundError is returned when a model name is absent from its reference table.
type SpecNotFoundError struct {
	Model     string
	Source    string
	Available []string
}

func (e *SpecNotFoundError) Error() string {
	return fmt.Sprintf("model %q not found in %s. Available: [%s]", e.Model, e.Source, strings.Join(e.Available, ", "))
}

func (e *SpecNotFoundError) Is(target error) bool { return target == ErrSpecNotFound }

// SchemaError is returned when a reference table lacks a recognisable column
// or carries a value that cannot be read.
type SchemaError struct {
	Source string
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema: %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("schema: %s: column %q: %s", e.Source, e.Column, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
