package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kizofa/kizofa/internal/handler/dto"
	"github.com/kizofa/kizofa/internal/middleware"
	"github.com/kizofa/kizofa/internal/model"
	"github.com/kizofa/kizofa/internal/repository"
	"github.com/kizofa/kizofa/internal/service"
	"github.com/kizofa/kizofa/internal/token"
)

// memStore is an in-memory UserStore for handler tests.
type memStore struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
}

func newMemStore() *memStore {
	return &memStore{byEmail: make(map[string]*model.User)}
}

func (s *memStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := s.byEmail[key]; ok {
		return repository.ErrEmailExists
	}
	clone := *user
	s.byEmail[key] = &clone
	return nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byEmail {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// newTestAPI wires the auth service and routes against an in-memory store,
// the same shape the real router mounts them in.
func newTestAPI(t *testing.T) (http.Handler, *service.AuthService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := token.NewIssuer([]byte("test-secret-for-handlers"), time.Hour)
	svc := service.NewAuthService(newMemStore(), issuer, logger, nil)
	authHandler := NewAuthHandler(svc, logger)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", authHandler.Register)
	r.Post("/api/v1/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(middleware.AuthConfig{
			Logger: logger,
			Tokens: svc,
		}))
		r.Get("/api/v1/me", authHandler.Me)
	})

	return r, svc
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	api, svc := newTestAPI(t)

	// Register a new account.
	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:    "a@b.com",
		Password: "password123",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var registered dto.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if registered.AccessToken == "" {
		t.Error("register response missing access_token")
	}
	if registered.User == nil || registered.User.Role != string(model.RoleUser) {
		t.Errorf("registered user = %+v, want role USER", registered.User)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("register response leaks password material")
	}

	// Wrong password is a uniform 401.
	rec = doJSON(t, api, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "a@b.com",
		Password: "wrongpass",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", rec.Code)
	}

	// Correct password logs in.
	rec = doJSON(t, api, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "a@b.com",
		Password: "password123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var loggedIn dto.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&loggedIn); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	// The issued token resolves back to the account's principal.
	principal, err := svc.ValidateToken(loggedIn.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if principal.Email != "a@b.com" {
		t.Errorf("principal email = %q, want a@b.com", principal.Email)
	}

	// And authenticates the profile endpoint.
	rec = doJSON(t, api, http.MethodGet, "/api/v1/me", nil, map[string]string{
		"Authorization": "Bearer " + loggedIn.AccessToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var me dto.UserResponse
	if err := json.NewDecoder(rec.Body).Decode(&me); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if me.Email != "a@b.com" {
		t.Errorf("me email = %q, want a@b.com", me.Email)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	api, _ := newTestAPI(t)

	first := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
	}, nil)
	if first.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", first.Code)
	}

	// Same address with different casing conflicts.
	second := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:    "DUP@Example.COM",
		Password: "password456",
	}, nil)
	if second.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", second.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(second.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error.Code != "EMAIL_TAKEN" {
		t.Errorf("error code = %q, want EMAIL_TAKEN", resp.Error.Code)
	}
}

func TestRegister_ValidationFailed(t *testing.T) {
	t.Parallel()

	api, _ := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:    "not-an-email",
		Password: "short",
	}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error.Code != "VALIDATION_FAILED" {
		t.Errorf("error code = %q, want VALIDATION_FAILED", resp.Error.Code)
	}
	if len(resp.Error.Details) < 2 {
		t.Errorf("details = %v, want email and password violations", resp.Error.Details)
	}
}

func TestRegister_InvalidJSON(t *testing.T) {
	t.Parallel()

	api, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLogin_UnknownUserLooksLikeWrongPassword(t *testing.T) {
	t.Parallel()

	api, _ := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:    "known@example.com",
		Password: "password123",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	wrongPass := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "known@example.com",
		Password: "wrongpass",
	}, nil)
	unknownUser := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	}, nil)

	if wrongPass.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401 for both", wrongPass.Code, unknownUser.Code)
	}
	if wrongPass.Body.String() != unknownUser.Body.String() {
		t.Errorf("failure responses differ: %q vs %q", wrongPass.Body.String(), unknownUser.Body.String())
	}
}

func TestMe_NoPrincipal(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := token.NewIssuer([]byte("test-secret-for-handlers"), time.Hour)
	svc := service.NewAuthService(newMemStore(), issuer, logger, nil)
	h := NewAuthHandler(svc, logger)

	// Direct call without the bearer middleware attaching a principal.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
