package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/spendlog/internal/auth"
	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/BradenHooton/spendlog/internal/services"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthUser places an authenticated user on the request context
func WithAuthUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

// WithURLParam sets a chi route parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc func(ctx context.Context, creds services.Credentials) (*models.TokenResponse, error)
}

func (m *MockAuthService) Login(ctx context.Context, creds services.Credentials) (*models.TokenResponse, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, creds)
}

// MockRegistrationService implements RegistrationService for testing
type MockRegistrationService struct {
	RegisterFunc func(ctx context.Context, input services.SignupInput) (*models.User, error)
}

func (m *MockRegistrationService) Register(ctx context.Context, input services.SignupInput) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.RegisterFunc(ctx, input)
}

// MockUserService implements UserService for testing
type MockUserService struct {
	LoginHistoryFunc func(ctx context.Context, user *models.User, limit int) ([]*models.LoginAttempt, error)
}

func (m *MockUserService) LoginHistory(ctx context.Context, user *models.User, limit int) ([]*models.LoginAttempt, error) {
	if m.LoginHistoryFunc == nil {
		return nil, nil
	}
	return m.LoginHistoryFunc(ctx, user, limit)
}

// MockCategoryService implements CategoryServiceInterface for testing
type MockCategoryService struct {
	CreateFunc func(ctx context.Context, ownerID int64, input services.CategoryInput) (*models.Category, error)
	ListFunc   func(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Category, error)
	GetFunc    func(ctx context.Context, ownerID, id int64) (*models.Category, error)
	UpdateFunc func(ctx context.Context, ownerID, id int64, input services.CategoryInput) (*models.Category, error)
	DeleteFunc func(ctx context.Context, ownerID, id int64) error
}

func (m *MockCategoryService) Create(ctx context.Context, ownerID int64, input services.CategoryInput) (*models.Category, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateFunc(ctx, ownerID, input)
}

func (m *MockCategoryService) List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Category, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, ownerID, skip, limit)
}

func (m *MockCategoryService) Get(ctx context.Context, ownerID, id int64) (*models.Category, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, ownerID, id)
}

func (m *MockCategoryService) Update(ctx context.Context, ownerID, id int64, input services.CategoryInput) (*models.Category, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, ownerID, id, input)
}

func (m *MockCategoryService) Delete(ctx context.Context, ownerID, id int64) error {
	if m.DeleteFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteFunc(ctx, ownerID, id)
}

// MockExpenseService implements ExpenseServiceInterface for testing
type MockExpenseService struct {
	CreateFunc func(ctx context.Context, ownerID int64, input services.ExpenseInput) (*models.Expense, error)
	ListFunc   func(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Expense, error)
	GetFunc    func(ctx context.Context, ownerID, id int64) (*models.Expense, error)
	UpdateFunc func(ctx context.Context, ownerID, id int64, input services.ExpenseInput) (*models.Expense, error)
	DeleteFunc func(ctx context.Context, ownerID, id int64) error
}

func (m *MockExpenseService) Create(ctx context.Context, ownerID int64, input services.ExpenseInput) (*models.Expense, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateFunc(ctx, ownerID, input)
}

func (m *MockExpenseService) List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Expense, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, ownerID, skip, limit)
}

func (m *MockExpenseService) Get(ctx context.Context, ownerID, id int64) (*models.Expense, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, ownerID, id)
}

func (m *MockExpenseService) Update(ctx context.Context, ownerID, id int64, input services.ExpenseInput) (*models.Expense, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, ownerID, id, input)
}

func (m *MockExpenseService) Delete(ctx context.Context, ownerID, id int64) error {
	if m.DeleteFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteFunc(ctx, ownerID, id)
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
