package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/BradenHooton/spendlog/internal/services"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestExpenseHandler_Create(t *testing.T) {
	var got services.ExpenseInput
	h := NewExpenseHandler(&MockExpenseService{
		CreateFunc: func(ctx context.Context, ownerID int64, input services.ExpenseInput) (*models.Expense, error) {
			got = input
			return &models.Expense{
				ID: 3, Amount: input.Amount, Description: input.Description,
				Date: input.Date, CategoryID: input.CategoryID, OwnerID: ownerID,
			}, nil
		},
	})

	req := NewTestRequest(t, http.MethodPost, "/expenses/", ExpenseRequest{
		Amount: 12.5, Description: strPtr("lunch"), Date: "2026-03-14", CategoryID: int64Ptr(10),
	})
	w := httptest.NewRecorder()
	h.Create(w, WithAuthUser(req, testUser))

	var resp ExpenseResponse
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, ExpenseResponse{
		ID: 3, Amount: 12.5, Description: strPtr("lunch"), Date: "2026-03-14", CategoryID: int64Ptr(10), UserID: 1,
	}, resp)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), got.Date)
}

func TestExpenseHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		body ExpenseRequest
	}{
		{"zero amount", ExpenseRequest{Amount: 0, Date: "2026-03-14"}},
		{"negative amount", ExpenseRequest{Amount: -1, Date: "2026-03-14"}},
		{"missing date", ExpenseRequest{Amount: 1}},
		{"bad date", ExpenseRequest{Amount: 1, Date: "14/03/2026"}},
		{"bad category", ExpenseRequest{Amount: 1, Date: "2026-03-14", CategoryID: int64Ptr(0)}},
	}

	h := NewExpenseHandler(&MockExpenseService{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Create(w, WithAuthUser(NewTestRequest(t, http.MethodPost, "/expenses/", tt.body), testUser))
			AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
		})
	}
}

func TestExpenseHandler_Create_ForeignCategory(t *testing.T) {
	h := NewExpenseHandler(&MockExpenseService{
		CreateFunc: func(ctx context.Context, ownerID int64, input services.ExpenseInput) (*models.Expense, error) {
			return nil, models.ErrCategoryNotOwned
		},
	})

	req := NewTestRequest(t, http.MethodPost, "/expenses/", ExpenseRequest{Amount: 1, Date: "2026-03-14", CategoryID: int64Ptr(20)})
	w := httptest.NewRecorder()
	h.Create(w, WithAuthUser(req, testUser))

	resp := AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
	assert.Equal(t, "Category not found", resp.Message)
}

func TestExpenseHandler_Get_Ownership(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"missing", models.ErrNotFound, http.StatusNotFound, "not_found"},
		{"other owner", models.ErrForbidden, http.StatusForbidden, "forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExpenseHandler(&MockExpenseService{
				GetFunc: func(ctx context.Context, ownerID, id int64) (*models.Expense, error) {
					return nil, tt.err
				},
			})

			req := WithURLParam(httptest.NewRequest(http.MethodGet, "/expenses/9", nil), "id", "9")
			w := httptest.NewRecorder()
			h.Get(w, WithAuthUser(req, testUser))

			AssertErrorResponse(t, w, tt.wantCode, tt.wantErr)
		})
	}
}

func TestExpenseHandler_List(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h := NewExpenseHandler(&MockExpenseService{
		ListFunc: func(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Expense, error) {
			return []*models.Expense{{ID: 1, Amount: 3, Date: date, OwnerID: ownerID}}, nil
		},
	})

	w := httptest.NewRecorder()
	h.List(w, WithAuthUser(httptest.NewRequest(http.MethodGet, "/expenses/", nil), testUser))

	var resp []ExpenseResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, []ExpenseResponse{{ID: 1, Amount: 3, Date: "2026-03-01", UserID: 1}}, resp)
}

func TestExpenseHandler_Delete(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", models.ErrNotFound, http.StatusNotFound},
		{"other owner", models.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExpenseHandler(&MockExpenseService{
				DeleteFunc: func(ctx context.Context, ownerID, id int64) error { return tt.err },
			})

			req := WithURLParam(httptest.NewRequest(http.MethodDelete, "/expenses/9", nil), "id", "9")
			w := httptest.NewRecorder()
			h.Delete(w, WithAuthUser(req, testUser))

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
