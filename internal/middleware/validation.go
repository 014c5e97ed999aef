package middleware

import (
	"regexp"
	"strings"
)

// Validation limits for auth inputs.
const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MaxPasswordLength bounds password input (argon2 input size).
	MaxPasswordLength = 128

	// MaxEmailLength follows the SMTP address limit.
	MaxEmailLength = 254

	// MaxNameLength is the maximum length for first/last name.
	MaxNameLength = 100

	// MaxPhoneLength is the maximum length for a phone number.
	MaxPhoneLength = 32
)

// emailPattern is a pragmatic format check: local@domain.tld.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// phonePattern allows digits, spaces, and common separators with an
// optional leading plus.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]*$`)

// FieldError describes a single violated input constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateRegisterInput checks the registration input shape before the
// auth service is invoked. Returns the full list of violated constraints.
func ValidateRegisterInput(email, password, firstName, lastName, phone string) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(email)...)
	errs = append(errs, validatePassword(password)...)

	if len(firstName) > MaxNameLength {
		errs = append(errs, FieldError{Field: "first_name", Message: "must be at most 100 characters"})
	}
	if len(lastName) > MaxNameLength {
		errs = append(errs, FieldError{Field: "last_name", Message: "must be at most 100 characters"})
	}
	if phone != "" {
		if len(phone) > MaxPhoneLength {
			errs = append(errs, FieldError{Field: "phone", Message: "must be at most 32 characters"})
		} else if !phonePattern.MatchString(phone) {
			errs = append(errs, FieldError{Field: "phone", Message: "must be a valid phone number"})
		}
	}

	return errs
}

// ValidateLoginInput checks the login input shape.
func ValidateLoginInput(email, password string) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(email)...)

	if password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "is required"})
	}

	return errs
}

func validateEmail(email string) []FieldError {
	email = strings.TrimSpace(email)

	if email == "" {
		return []FieldError{{Field: "email", Message: "is required"}}
	}
	if len(email) > MaxEmailLength {
		return []FieldError{{Field: "email", Message: "must be at most 254 characters"}}
	}
	if !emailPattern.MatchString(email) {
		return []FieldError{{Field: "email", Message: "must be a valid email address"}}
	}

	return nil
}

func validatePassword(password string) []FieldError {
	if password == "" {
		return []FieldError{{Field: "password", Message: "is required"}}
	}
	if len(password) < MinPasswordLength {
		return []FieldError{{Field: "password", Message: "must be at least 8 characters"}}
	}
	if len(password) > MaxPasswordLength {
		return []FieldError{{Field: "password", Message: "must be at most 128 characters"}}
	}

	return nil
}
