// Package model defines domain entities for the application.
package model

import "time"

// Role is the authorization role assigned to a user.
type Role string

// Supported roles. New accounts default to RoleUser.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid reports whether the role is one of the supported values.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account.
// PasswordHash is never serialized outward.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated identity attached to a request,
// derived from validated credentials or a validated token.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Principal returns the principal for this user.
func (u *User) Principal() Principal {
	return Principal{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}
