package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BradenHooton/spendlog/internal/auth"
	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/BradenHooton/spendlog/internal/services"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
)

// ExpenseServiceInterface defines the interface for expense business logic
type ExpenseServiceInterface interface {
	Create(ctx context.Context, ownerID int64, input services.ExpenseInput) (*models.Expense, error)
	List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Expense, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Expense, error)
	Update(ctx context.Context, ownerID, id int64, input services.ExpenseInput) (*models.Expense, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

// ExpenseHandler handles expense CRUD for the authenticated user
type ExpenseHandler struct {
	service ExpenseServiceInterface
}

func NewExpenseHandler(service ExpenseServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// ExpenseRequest is the body for create and full update
type ExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
}

// ExpenseResponse represents an expense in the HTTP response
type ExpenseResponse struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Description *string `json:"description"`
	Date        string  `json:"date"`
	CategoryID  *int64  `json:"category_id"`
	UserID      int64   `json:"user_id"`
}

func expenseToResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date.Format(models.DateLayout),
		CategoryID:  e.CategoryID,
		UserID:      e.OwnerID,
	}
}

func decodeExpense(w http.ResponseWriter, r *http.Request) (services.ExpenseInput, bool) {
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return services.ExpenseInput{}, false
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return services.ExpenseInput{}, false
	}

	// format already checked by the datetime tag
	date, _ := time.Parse(models.DateLayout, req.Date)

	return services.ExpenseInput{
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CategoryID:  req.CategoryID,
	}, true
}

// Create handles POST /expenses/
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteBearerUnauthorized(w, "Not authenticated")
		return
	}

	input, ok := decodeExpense(w, r)
	if !ok {
		return
	}

	expense, err := h.service.Create(r.Context(), user.ID, input)
	if err != nil {
		writeResourceError(w, err, "Expense", 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, expenseToResponse(expense))
}

// List handles GET /expenses/?skip=&limit=
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteBearerUnauthorized(w, "Not authenticated")
		return
	}

	skip, limit, err := parsePagination(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	expenses, err := h.service.List(r.Context(), user.ID, skip, limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, expenseToResponse(e))
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /expenses/{id}
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteBearerUnauthorized(w, "Not authenticated")
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	expense, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		writeResourceError(w, err, "Expense", id)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, expenseToResponse(expense))
}

// Update handles PUT /expenses/{id} as a full replacement
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteBearerUnauthorized(w, "Not authenticated")
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	input, ok := decodeExpense(w, r)
	if !ok {
		return
	}

	expense, err := h.service.Update(r.Context(), user.ID, id, input)
	if err != nil {
		writeResourceError(w, err, "Expense", id)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, expenseToResponse(expense))
}

// Delete handles DELETE /expenses/{id}
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteBearerUnauthorized(w, "Not authenticated")
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		writeResourceError(w, err, "Expense", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
