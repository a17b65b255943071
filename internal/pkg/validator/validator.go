// Package validator collects field errors for request DTOs. Messages name the
// JSON field so clients can show them next to the input.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used by every date field of the API.
const DateLayout = time.DateOnly

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		if _, seen := result[err.Field]; !seen {
			result[err.Field] = err.Message
		}
	}
	return result
}

// Err returns v as an error, or nil when nothing was recorded.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

func (v *ValidationErrors) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// Required records field when value is blank.
func (v *ValidationErrors) Required(field, value string) bool {
	if IsEmpty(value) {
		v.Add(field, field+" is required")
		return false
	}
	return true
}

// NotBlank is Required for partial updates: nil means "unchanged" and passes.
func (v *ValidationErrors) NotBlank(field string, value *string) {
	if value != nil && IsEmpty(*value) {
		v.Add(field, field+" cannot be empty")
	}
}

// Date checks a mandatory YYYY-MM-DD field.
func (v *ValidationErrors) Date(field, value string) {
	if !v.Required(field, value) {
		return
	}
	if _, ok := IsValidDate(value); !ok {
		v.Add(field, field+" must be in YYYY-MM-DD format")
	}
}

// OptionalDate checks a YYYY-MM-DD field that may be omitted.
func (v *ValidationErrors) OptionalDate(field string, value *string) {
	if value == nil {
		return
	}
	if _, ok := IsValidDate(*value); !ok {
		v.Add(field, field+" must be in YYYY-MM-DD format")
	}
}

func (v *ValidationErrors) Positive(field string, value float64) {
	if value <= 0 {
		v.Add(field, field+" must be greater than 0")
	}
}

func (v *ValidationErrors) OptionalPositive(field string, value *float64) {
	if value != nil {
		v.Positive(field, *value)
	}
}

func (v *ValidationErrors) AtLeast(field string, value, min int) {
	if value < min {
		v.Addf(field, "%s must be at least %d", field, min)
	}
}

func (v *ValidationErrors) OptionalUUID(field string, value *string) {
	if value != nil && !IsValidUUID(*value) {
		v.Add(field, field+" must be a valid UUID")
	}
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidUUID accepts any RFC 4122 UUID in its canonical 36 character form.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, dateStr)
	return date, err == nil
}

// ParseOptionalDate parses a nullable YYYY-MM-DD string. Callers are expected to have validated it.
func ParseOptionalDate(dateStr *string) *time.Time {
	if dateStr == nil || IsEmpty(*dateStr) {
		return nil
	}
	date, ok := IsValidDate(*dateStr)
	if !ok {
		return nil
	}
	return &date
}
