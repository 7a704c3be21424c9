package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/BradenHooton/spendlog/internal/models"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 100
)

// parsePagination reads skip (>= 0, default 0) and limit (1..100, default 100)
func parsePagination(r *http.Request) (skip, limit int, err error) {
	skip, limit = 0, defaultPageLimit

	if raw := r.URL.Query().Get("skip"); raw != "" {
		skip, err = strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return 0, 0, fmt.Errorf("skip must be a non-negative integer")
		}
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return 0, 0, fmt.Errorf("limit must be between 1 and %d", maxPageLimit)
		}
	}

	return skip, limit, nil
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

// writeResourceError maps ownership and lookup errors for a single resource
func writeResourceError(w http.ResponseWriter, err error, resource string, id int64) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, fmt.Sprintf("%s with ID %d not found", resource, id))
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, fmt.Sprintf("Access denied. %s %d belongs to another user", resource, id))
	case errors.Is(err, models.ErrCategoryNotOwned):
		pkghttp.WriteBadRequest(w, "Category not found")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
