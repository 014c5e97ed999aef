// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kizofa/kizofa/internal/auth"
	"github.com/kizofa/kizofa/internal/metrics"
	"github.com/kizofa/kizofa/internal/model"
	"github.com/kizofa/kizofa/internal/repository"
	"github.com/kizofa/kizofa/internal/token"
)

// Service errors. InvalidCredentials deliberately conflates "no such user"
// and "wrong password" so responses cannot be used to enumerate accounts.
// Unavailable marks store or signing infrastructure failures, kept apart
// from credential failures so outages are not masked as security events.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnavailable        = errors.New("service unavailable")
)

// UserStore is the credential store consumed by the AuthService.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthService orchestrates registration, login, and the credential/token
// validation strategies. It is the single entry point for the request layer.
type AuthService struct {
	store   UserStore
	tokens  *token.Issuer
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, tokens *token.Issuer, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		tokens:  tokens,
		logger:  logger,
		metrics: recorder,
	}
}

// RegisterInput defines input for registering a user. Email format and
// password length are validated by the request layer before this point.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AuthResult is the outcome of a successful registration or login.
type AuthResult struct {
	Token string
	User  *model.User
}

// Register creates a new account, persists it with a hashed password, and
// issues a token for the new principal. Exactly one store write happens on
// success. If token issuance fails after the write, the account stays in
// place and the caller can obtain a token by logging in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		s.metrics.IncEmailTaken()
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: look up email: %v", ErrUnavailable, err)
	}

	start := time.Now()
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", ErrUnavailable, err)
	}
	s.metrics.ObserveHashDuration(time.Since(start))

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// The unique index catches concurrent registrations that slipped
		// past the lookup above.
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncEmailTaken()
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: create user: %v", ErrUnavailable, err)
	}

	signed, err := s.tokens.Issue(user.Principal())
	if err != nil {
		// Account exists at this point; surface the infrastructure failure.
		s.logger.Error("token issuance failed after registration",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: issue token: %v", ErrUnavailable, err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &AuthResult{Token: signed, User: user}, nil
}

// Login validates the credential pair and issues a token. No store writes.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	principal, user, err := s.validateCredentials(ctx, email, password)
	if err != nil {
		s.metrics.IncLoginFailure()
		return nil, err
	}

	signed, err := s.tokens.Issue(*principal)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", ErrUnavailable, err)
	}

	s.metrics.IncLoginSuccess()
	s.logger.Info("user logged in", slog.String("user_id", principal.ID))

	return &AuthResult{Token: signed, User: user}, nil
}

// ValidateCredentials is the credential strategy: it resolves an
// email/password pair to a verified principal or ErrInvalidCredentials.
func (s *AuthService) ValidateCredentials(ctx context.Context, email, password string) (*model.Principal, error) {
	principal, _, err := s.validateCredentials(ctx, email, password)
	return principal, err
}

func (s *AuthService) validateCredentials(ctx context.Context, email, password string) (*model.Principal, *model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Same outcome as a wrong password.
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("%w: look up email: %v", ErrUnavailable, err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	p := user.Principal()
	return &p, user, nil
}

// ValidateToken is the token strategy: it resolves a bearer token to a
// verified principal or one of the token package's rejection kinds.
func (s *AuthService) ValidateToken(raw string) (*model.Principal, error) {
	return s.tokens.Verify(raw)
}

// GetUser loads a user by ID for profile access.
func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: get user: %v", ErrUnavailable, err)
	}
	return user, nil
}

// normalizeEmail lowers and trims an email for case-insensitive comparison.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
