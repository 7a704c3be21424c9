package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BradenHooton/spendlog/internal/auth"
	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/BradenHooton/spendlog/internal/services"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
)

// CategoryServiceInterface defines the interface for category business logic
type CategoryServiceInterface interface {
	Create(ctx context.Context, ownerID int64, input services.CategoryInput) (*models.Category, error)
	List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Category, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Category, error)
	Update(ctx context.Context, ownerID, id int64, input services.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

// CategoryHandler handles category CRUD for the authenticated user
type CategoryHandler struct {
	service CategoryServiceInterface
}

func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// CategoryRequest is the body for create and full update
type CategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// CategoryResponse represents a category in the HTTP response
type CategoryResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	UserID      int64   `json:"user_id"`
}

func categoryToResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		UserID:      c.OwnerID,
	}
}

func decodeCategory(w http.ResponseWriter, r *http.Request) (services.CategoryInput, bool) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return services.CategoryInput{}, false
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return services.CategoryInput{}, false
	}
	return services.CategoryInput{Name: req.Name, Description: req.Description}, true
}

// Create handles POST /categories/
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteBearerUnauthorized(w, "Not authenticated")
		return
	}

	input, ok := decodeCategory(w, r)
	if !ok {
		return
	}

	category, err := h.service.Create(r.Context(), user.ID, input)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, categoryToResponse(category))
}

// List handles GET /categories/?skip=&limit=
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
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

	categories, err := h.service.List(r.Context(), user.ID, skip, limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, categoryToResponse(c))
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	category, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		writeResourceError(w, err, "Category", id)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, categoryToResponse(category))
}

// Update handles PUT /categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	input, ok := decodeCategory(w, r)
	if !ok {
		return
	}

	category, err := h.service.Update(r.Context(), user.ID, id, input)
	if err != nil {
		writeResourceError(w, err, "Category", id)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, categoryToResponse(category))
}

// Delete handles DELETE /categories/{id}. Expenses in the category are kept
// and lose their category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		writeResourceError(w, err, "Category", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
