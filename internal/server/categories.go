package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"animal-registry/internal/store"
)

type createCategoryReq struct {
	Name string `json:"name"`
}

// listCategories handles GET /categories.
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		s.serverError(w, r, "list_categories", "Failed to fetch categories.", err)
		return
	}
	if categories == nil {
		categories = []store.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// createCategory handles POST /categories: JSON body with a unique name.
func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.clientError(w, http.StatusBadRequest, "Category name is required.")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.clientError(w, http.StatusBadRequest, "Category name is required.")
		return
	}

	id, err := s.store.CreateCategory(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			s.clientError(w, http.StatusBadRequest, "Category already exists.")
		case errors.Is(err, store.ErrValidation):
			s.clientError(w, http.StatusBadRequest, "Category name is required.")
		default:
			s.serverError(w, r, "create_category", "Failed to add category.", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, messageResp{
		Message:    "Category added successfully",
		CategoryID: id,
	})
}
