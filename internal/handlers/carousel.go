package handlers

import (
	"net/http"

	"github.com/lacajita/backend/internal/logging"
	"github.com/lacajita/backend/internal/models"
)

// CarouselHandler serves the home carousel slides.
type CarouselHandler struct {
	Carousel CarouselStore
}

// List handles GET /home-carousel; ?active=0|1 filters by state.
func (h CarouselHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	active, err := queryFlag(r, "active", nil)
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	items, err := h.Carousel.List(ctx, active)
	if err != nil {
		respondError(ctx, w, "carousel item", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, items)
}

// Get handles GET /home-carousel/{id}.
func (h CarouselHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	item, err := h.Carousel.Get(ctx, id)
	if err != nil {
		respondError(ctx, w, "carousel item", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, item)
}

// Create handles POST /home-carousel.
func (h CarouselHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	item, err := h.Carousel.Create(ctx, in)
	if err != nil {
		respondError(ctx, w, "carousel item", err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, item)
}

// Update handles PUT /home-carousel/{id}. The body replaces every field.
func (h CarouselHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	item, err := h.Carousel.Update(ctx, id, in)
	if err != nil {
		respondError(ctx, w, "carousel item", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, item)
}

// Delete handles DELETE /home-carousel/{id}.
func (h CarouselHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	if err := h.Carousel.Delete(ctx, id); err != nil {
		respondDeleteError(ctx, w, "carousel item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CarouselHandler) decodeInput(w http.ResponseWriter, r *http.Request) (models.CarouselInput, bool) {
	ctx := r.Context()
	var in models.CarouselInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(ctx, w, err)
		return models.CarouselInput{}, false
	}
	if !in.HasMedia() {
		logging.FromContext(ctx).Warn("carousel item without media")
		respondMessage(ctx, w, http.StatusBadRequest, "imgsrc or video is required")
		return models.CarouselInput{}, false
	}
	return in, true
}
