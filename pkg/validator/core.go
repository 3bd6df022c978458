package validator

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError describes a single failed rule.
type ValidationError struct {
	Field          string         `json:"field"`
	Message        string         `json:"message"`
	TranslationKey string         `json:"translation_key,omitempty"`
	Params         map[string]any `json:"params,omitempty"`
}

// ValidationErrors is the aggregated result of Apply.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed at least one rule.
func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Fields lists the failed fields in order of first failure.
func (ve ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range ve {
		if !seen[err.Field] {
			fields = append(fields, err.Field)
			seen[err.Field] = true
		}
	}
	return fields
}

// Map groups messages by field, suitable for JSON error payloads.
func (ve ValidationErrors) Map() map[string][]string {
	m := make(map[string][]string, len(ve))
	for _, err := range ve {
		m[err.Field] = append(m[err.Field], err.Message)
	}
	return m
}

// Rule represents a single validation rule.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply executes rules and returns ValidationErrors when any of them fails.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if !rule.Check() {
			errs = append(errs, rule.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ExtractValidationErrors returns the ValidationErrors wrapped in err, if any.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
