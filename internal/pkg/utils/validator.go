package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	handleRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)
	slugRegex   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator provides validation methods
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, &ValidationError{
		Field:   field,
		Message: message,
	})
}

// Errors returns all validation errors
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

// HasErrors returns true if there are any validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Required checks if a string is not empty
func (v *Validator) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "this field is required")
		return false
	}
	return true
}

// MaxLength checks if a string doesn't exceed maximum length
func (v *Validator) MaxLength(field, value string, max int) bool {
	if utf8.RuneCountInString(value) > max {
		v.AddError(field, fmt.Sprintf("must be at most %d characters", max))
		return false
	}
	return true
}

// ValidateHandle validates a user handle
func (v *Validator) ValidateHandle(field, value string) bool {
	if !v.Required(field, value) {
		return false
	}
	if !handleRegex.MatchString(value) {
		v.AddError(field, "handles may contain letters, digits, underscores and hyphens, 3-50 characters")
		return false
	}
	return true
}

// ValidateSlug validates a room slug
func (v *Validator) ValidateSlug(field, value string) bool {
	if !v.Required(field, value) {
		return false
	}
	if !slugRegex.MatchString(value) {
		v.AddError(field, "slugs are lowercase letters, digits and hyphens, 2-64 characters")
		return false
	}
	return true
}

// ValidateEmail validates an email address
func (v *Validator) ValidateEmail(field, value string) bool {
	if !v.Required(field, value) {
		return false
	}
	if !emailRegex.MatchString(value) {
		v.AddError(field, "enter a valid email address")
		return false
	}
	return true
}

// ValidatePassword validates a password
func (v *Validator) ValidatePassword(field, value string) bool {
	if !v.Required(field, value) {
		return false
	}
	if len(value) < 8 {
		v.AddError(field, "password must be at least 8 characters")
		return false
	}
	if len(value) > 72 {
		v.AddError(field, "password must be at most 72 characters")
		return false
	}
	return true
}

// ValidateRoomName validates a room display name
func (v *Validator) ValidateRoomName(field, value string) bool {
	if !v.Required(field, value) {
		return false
	}
	length := utf8.RuneCountInString(value)
	if length < 2 {
		v.AddError(field, "room name must be at least 2 characters")
		return false
	}
	if length > 100 {
		v.AddError(field, "room name must be at most 100 characters")
		return false
	}
	return true
}

// ValidateMessageText validates message text
func (v *Validator) ValidateMessageText(field, value string) bool {
	if !v.Required(field, value) {
		return false
	}
	if utf8.RuneCountInString(value) > 5000 {
		v.AddError(field, "messages must be at most 5000 characters")
		return false
	}
	return true
}

// Slugify derives a slug from a room name, used when none was supplied
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '_', r == '-':
			return '-'
		default:
			return -1
		}
	}, s)
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}

// SanitizeString removes null bytes and control characters
func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
