package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/BradenHooton/spendlog/internal/services"
	"github.com/BradenHooton/spendlog/pkg/auth"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
)

// maxCredentialBody caps login, token and signup bodies
const maxCredentialBody = 1 << 16

// AuthServiceInterface defines the interface for the login gate
type AuthServiceInterface interface {
	Login(ctx context.Context, creds services.Credentials) (*models.TokenResponse, error)
}

// RegistrationService defines the interface for account creation
type RegistrationService interface {
	Register(ctx context.Context, input services.SignupInput) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service    AuthServiceInterface
	users      RegistrationService
	ipResolver *pkghttp.ClientIPResolver
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, users RegistrationService, ipResolver *pkghttp.ClientIPResolver, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:    service,
		users:      users,
		ipResolver: ipResolver,
		logger:     logger,
	}
}

// Request DTOs

// LoginRequest is the OAuth2 password-grant form, also accepted as JSON
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents the request body for registration
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanumunicode"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// decodeCredentials reads username/password from a form or JSON body
func decodeCredentials(r *http.Request) (LoginRequest, error) {
	var req LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxCredentialBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return req, err
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	}

	return req, nil
}

// Login handles the primary login endpoint
// @Summary Exchange username and password for a bearer token
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.issueToken(w, r)
}

// Token handles the OAuth2 token endpoint. It shares the login gate and
// attempt history with Login.
// @Router /token [post]
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	h.issueToken(w, r)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCredentialBody)

	req, err := decodeCredentials(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	token, err := h.service.Login(r.Context(), services.Credentials{
		Username:   req.Username,
		Password:   req.Password,
		IPAddress:  h.ipResolver.ClientIP(r),
		Entrypoint: r.URL.Path,
	})
	if err != nil {
		var rateErr *models.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			pkghttp.WriteRetryAfter(w, rateErr.RemainingSeconds, services.BlockedMessage(rateErr.RemainingSeconds))
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteBearerUnauthorized(w, "Incorrect username or password")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, token)
}

// Signup handles account registration
// @Summary Register a new user
// @Accept json
// @Param request body SignupRequest true "Signup request"
// @Produce json
// @Success 201 {object} UserResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCredentialBody)

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), services.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: h.ipResolver.ClientIP(r),
	})
	if err != nil {
		var pwErr *auth.PasswordValidationError
		switch {
		case errors.Is(err, models.ErrEmailTaken):
			pkghttp.WriteBadRequest(w, "Email already registered")
		case errors.Is(err, models.ErrUsernameTaken):
			pkghttp.WriteBadRequest(w, "Username already taken")
		case errors.As(err, &pwErr):
			pkghttp.WriteErrorWithDetails(w, http.StatusBadRequest, "bad_request", "Password does not meet requirements", strings.Join(pwErr.Errors, "; "))
		case errors.Is(err, auth.ErrInvalidPassword):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		default:
			h.logger.Error("signup failed", slog.Any("error", err))
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, userModelToResponse(user))
}
