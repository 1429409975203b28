package handlers

import (
	"net/http"
	"strings"

	"github.com/lacajita/backend/internal/validation"
)

// CategoryHandler serves playlist categories.
type CategoryHandler struct {
	Categories CategoryStore
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// List handles GET /categories, ordered by name.
func (h CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := h.Categories.List(ctx)
	if err != nil {
		respondError(ctx, w, "category", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, categories)
}

// Get handles GET /categories/{id}.
func (h CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	category, err := h.Categories.Get(ctx, id)
	if err != nil {
		respondError(ctx, w, "category", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, category)
}

// Create handles POST /categories.
func (h CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, ok := decodeCategoryName(w, r)
	if !ok {
		return
	}
	category, err := h.Categories.Create(ctx, name)
	if err != nil {
		respondError(ctx, w, "category", err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, category)
}

// Update handles PUT /categories/{id}.
func (h CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	name, ok := decodeCategoryName(w, r)
	if !ok {
		return
	}
	category, err := h.Categories.Update(ctx, id, name)
	if err != nil {
		respondError(ctx, w, "category", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, category)
}

// Delete handles DELETE /categories/{id}. Categories still assigned to a
// playlist answer 409.
func (h CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	if err := h.Categories.Delete(ctx, id); err != nil {
		respondDeleteError(ctx, w, "category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeCategoryName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req categoryRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(r.Context(), w, err)
		return "", false
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		badRequest(r.Context(), w, err)
		return "", false
	}
	return req.Name, true
}
