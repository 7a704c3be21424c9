package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = &models.User{ID: 1, Username: "carol", Email: "carol@example.com"}

func TestUserHandler_Me(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	w := httptest.NewRecorder()
	h.Me(w, WithAuthUser(httptest.NewRequest(http.MethodGet, "/users/me", nil), testUser))

	var resp UserResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, UserResponse{ID: 1, Email: "carol@example.com", Username: "carol"}, resp)
}

func TestUserHandler_Me_NoUser(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	w := httptest.NewRecorder()
	h.Me(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestUserHandler_LoginAttempts(t *testing.T) {
	ip := "203.0.113.9"
	ts := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	var gotLimit int
	h := NewUserHandler(&MockUserService{
		LoginHistoryFunc: func(ctx context.Context, user *models.User, limit int) ([]*models.LoginAttempt, error) {
			gotLimit = limit
			assert.Equal(t, "carol", user.Username)
			return []*models.LoginAttempt{
				{ID: 2, Username: "carol", IPAddress: &ip, Success: false, Timestamp: ts},
				{ID: 1, Username: "carol", Success: true, Timestamp: ts.Add(-time.Minute)},
			}, nil
		},
	})

	w := httptest.NewRecorder()
	h.LoginAttempts(w, WithAuthUser(httptest.NewRequest(http.MethodGet, "/users/me/login-attempts?limit=5", nil), testUser))

	var resp []LoginAttemptResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, "2026-03-14T12:00:00Z", resp[0].Timestamp)
	assert.Equal(t, &ip, resp[0].IPAddress)
	assert.Nil(t, resp[1].IPAddress)
}

func TestUserHandler_LoginAttempts_BadLimit(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	for _, limit := range []string{"0", "101", "abc"} {
		w := httptest.NewRecorder()
		h.LoginAttempts(w, WithAuthUser(httptest.NewRequest(http.MethodGet, "/users/me/login-attempts?limit="+limit, nil), testUser))
		AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
	}
}
