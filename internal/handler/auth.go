package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kizofa/kizofa/internal/auth"
	"github.com/kizofa/kizofa/internal/handler/dto"
	"github.com/kizofa/kizofa/internal/middleware"
	"github.com/kizofa/kizofa/internal/service"
)

// AuthHandler handles HTTP requests for registration, login, and profile.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}

	if fieldErrs := middleware.ValidateRegisterInput(req.Email, req.Password, req.FirstName, req.LastName, req.Phone); len(fieldErrs) > 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Input validation failed", fieldErrs)
		return
	}

	result, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToAuthResponse(result.Token, result.User))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}

	if fieldErrs := middleware.ValidateLoginInput(req.Email, req.Password); len(fieldErrs) > 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Input validation failed", fieldErrs)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAuthResponse(result.Token, result.User))
}

// Me handles GET /api/v1/me. Requires bearer auth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	user, err := h.svc.GetUser(r.Context(), principal.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// handleServiceError maps service errors to HTTP responses. Invalid
// credentials stay a single uniform 401 regardless of cause.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	case errors.Is(err, service.ErrUnavailable):
		h.logger.Error("auth_unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Service temporarily unavailable", nil)
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
	}
}
