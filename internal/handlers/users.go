package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/BradenHooton/spendlog/internal/auth"
	"github.com/BradenHooton/spendlog/internal/models"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// UserService defines the interface for user business logic
type UserService interface {
	LoginHistory(ctx context.Context, user *models.User, limit int) ([]*models.LoginAttempt, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// LoginAttemptResponse is one row of the caller's own login history
type LoginAttemptResponse struct {
	ID        int64   `json:"id"`
	IPAddress *string `json:"ip_address"`
	Success   bool    `json:"success"`
	Timestamp string  `json:"timestamp"`
}

// userModelToResponse converts a user model to a response DTO
func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}
}

// Me returns the authenticated user
// @Summary Current user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteBearerUnauthorized(w, "Not authenticated")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}

// LoginAttempts returns the caller's most recent login attempts
// @Router /users/me/login-attempts [get]
func (h *UserHandler) LoginAttempts(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteBearerUnauthorized(w, "Not authenticated")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryLimit {
			pkghttp.WriteBadRequest(w, fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
			return
		}
		limit = parsed
	}

	attempts, err := h.service.LoginHistory(r.Context(), user, limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]LoginAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, LoginAttemptResponse{
			ID:        a.ID,
			IPAddress: a.IPAddress,
			Success:   a.Success,
			Timestamp: a.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}
