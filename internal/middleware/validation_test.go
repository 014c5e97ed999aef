package middleware

import (
	"strings"
	"testing"
)

func hasFieldError(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateRegisterInput_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email string
	}{
		{"plain", "user@example.com"},
		{"subdomain", "user@mail.example.com"},
		{"plus tag", "user+tag@example.com"},
		{"mixed case", "User@Example.COM"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := ValidateRegisterInput(tt.email, "password123", "Test", "User", "+1234567890")
			if len(errs) != 0 {
				t.Errorf("expected no errors, got %v", errs)
			}
		})
	}
}

func TestValidateRegisterInput_OptionalFieldsEmpty(t *testing.T) {
	t.Parallel()

	errs := ValidateRegisterInput("user@example.com", "password123", "", "", "")
	if len(errs) != 0 {
		t.Errorf("optional fields may be empty, got %v", errs)
	}
}

func TestValidateRegisterInput_InvalidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email string
	}{
		{"empty", ""},
		{"no at", "userexample.com"},
		{"no domain", "user@"},
		{"no tld", "user@example"},
		{"spaces", "us er@example.com"},
		{"too long", strings.Repeat("a", 250) + "@example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := ValidateRegisterInput(tt.email, "password123", "", "", "")
			if !hasFieldError(errs, "email") {
				t.Errorf("expected email error for %q, got %v", tt.email, errs)
			}
		})
	}
}

func TestValidateRegisterInput_InvalidPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
	}{
		{"empty", ""},
		{"too short", "pass123"},
		{"too long", strings.Repeat("x", 129)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := ValidateRegisterInput("user@example.com", tt.password, "", "", "")
			if !hasFieldError(errs, "password") {
				t.Errorf("expected password error for %q, got %v", tt.name, errs)
			}
		})
	}
}

func TestValidateRegisterInput_MultipleViolations(t *testing.T) {
	t.Parallel()

	errs := ValidateRegisterInput("bad-email", "short", strings.Repeat("a", 101), "", "not-a-phone!")
	for _, field := range []string{"email", "password", "first_name", "phone"} {
		if !hasFieldError(errs, field) {
			t.Errorf("expected error for field %q, got %v", field, errs)
		}
	}
}

func TestValidateLoginInput(t *testing.T) {
	t.Parallel()

	if errs := ValidateLoginInput("user@example.com", "anything"); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}

	// Login does not enforce the minimum length; a short password is
	// simply a wrong password, checked by the credential validator.
	if errs := ValidateLoginInput("user@example.com", "x"); len(errs) != 0 {
		t.Errorf("short password should pass login validation, got %v", errs)
	}

	errs := ValidateLoginInput("", "")
	if !hasFieldError(errs, "email") || !hasFieldError(errs, "password") {
		t.Errorf("expected email and password errors, got %v", errs)
	}
}
