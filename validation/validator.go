package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/scribe/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors        []FieldError
	missingFields []string
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{errors: make([]FieldError, 0)}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

func (v *Validator) missing(field string) {
	v.missingFields = append(v.missingFields, field)
	v.AddError(field, "is required")
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns nil when no rule failed. If any required field is absent
// the result is MISSING_FIELD naming the first one, otherwise INVALID_INPUT.
// Both carry every field error under details["fields"].
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	var appErr *errors.AppError
	if len(v.missingFields) > 0 {
		appErr = errors.MissingField(v.missingFields[0])
	} else {
		messages := make([]string, len(v.errors))
		for i, e := range v.errors {
			messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		}
		appErr = errors.Validation(strings.Join(messages, "; "))
	}
	return appErr.WithDetail("fields", v.errors)
}

// Required checks if a string is non-blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.missing(field)
	}
	return v
}

// RequiredKeys checks that m holds a non-blank value for every key. Missing
// keys are reported as "<field>.<key>".
func (v *Validator) RequiredKeys(field string, m map[string]string, keys ...string) *Validator {
	for _, k := range keys {
		if strings.TrimSpace(m[k]) == "" {
			v.missing(field + "." + k)
		}
	}
	return v
}

// MaxLength checks if a string is within max length.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", maxLen))
	}
	return v
}

// MaxSize checks a byte count against a ceiling.
func (v *Validator) MaxSize(field string, size, maxBytes int64) *Validator {
	if maxBytes > 0 && size > maxBytes {
		v.AddError(field, fmt.Sprintf("must be at most %d bytes", maxBytes))
	}
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
