// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/kizofa/kizofa/internal/middleware"
	"github.com/kizofa/kizofa/internal/model"
)

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses.
// The password hash is never part of this shape.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse represents the result of a successful registration or login.
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	User        *UserResponse `json:"user"`
}

// ErrorBody is the inner error object of an API error response.
type ErrorBody struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []middleware.FieldError `json:"details,omitempty"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

// ToAuthResponse converts a signed token and user to an AuthResponse DTO.
func ToAuthResponse(token string, user *model.User) *AuthResponse {
	return &AuthResponse{
		AccessToken: token,
		User:        ToUserResponse(user),
	}
}
