package handlers

import (
	"net/http"

	"github.com/lacajita/backend/internal/config"
)

// ConfigHandler exposes the frontend bootstrap settings.
type ConfigHandler struct {
	Env func() map[string]string
}

// Public handles GET /config/public with every VITE_* variable.
func (h ConfigHandler) Public(w http.ResponseWriter, r *http.Request) {
	env := h.Env
	if env == nil {
		env = config.PublicEnv
	}
	respondJSON(r.Context(), w, http.StatusOK, env())
}
