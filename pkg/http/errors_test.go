package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteError(w, 400, "test_error", "Test message")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test_error", resp.Error)
	assert.Equal(t, "Test message", resp.Message)
	assert.Empty(t, resp.Details)
}

func TestWriteErrorWithDetails(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteErrorWithDetails(w, 400, "test_error", "Test message", "Additional details")

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Additional details", resp.Details)
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter, message string)
		status int
		code   string
	}{
		{"bad request", pkghttp.WriteBadRequest, 400, "bad_request"},
		{"unauthorized", pkghttp.WriteUnauthorized, 401, "unauthorized"},
		{"forbidden", pkghttp.WriteForbidden, 403, "forbidden"},
		{"not found", pkghttp.WriteNotFound, 404, "not_found"},
		{"conflict", pkghttp.WriteConflict, 409, "conflict"},
		{"too many requests", pkghttp.WriteTooManyRequests, 429, "rate_limit_exceeded"},
		{"internal", pkghttp.WriteInternalError, 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, "some message")

			assert.Equal(t, tt.status, w.Code)

			var resp pkghttp.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, "some message", resp.Message)
		})
	}
}

func TestWriteBearerUnauthorized(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteBearerUnauthorized(w, "Incorrect username or password")

	assert.Equal(t, 401, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestWriteRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteRetryAfter(w, 1750, "blocked")

	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "1750", w.Header().Get("Retry-After"))
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp.Error)
}

func TestWriteRetryAfter_ZeroOmitsHeader(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteRetryAfter(w, 0, "blocked")

	assert.Equal(t, 429, w.Code)
	assert.Empty(t, w.Header().Get("Retry-After"))
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteJSON(w, 201, map[string]string{"detail": "ok"})

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"ok"}`, w.Body.String())
}
