package handlers

import (
	"errors"
	"net/http"

	"github.com/lacajita/backend/internal/analytics"
	"github.com/lacajita/backend/internal/auth"
	"github.com/lacajita/backend/internal/middleware"
	"github.com/lacajita/backend/internal/models"
)

// AnalyticsHandler accepts player beacons.
type AnalyticsHandler struct {
	Events EventRecorder
}

// VideoEvent handles POST /analytics/video-event. The event is tagged with
// the caller identity and client details, then queued for storage.
func (h AnalyticsHandler) VideoEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var evt models.VideoPlayEvent
	if err := decodeJSON(w, r, &evt); err != nil {
		badRequest(ctx, w, err)
		return
	}

	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		evt.UserSub = nonEmpty(claims.Subject)
		evt.UserEmail = nonEmpty(claims.Email)
	}
	evt.UserAgent = nonEmpty(r.UserAgent())
	evt.IPAddr = nonEmpty(middleware.ClientIP(r))

	if err := h.Events.Record(ctx, evt); err != nil {
		if errors.Is(err, analytics.ErrRecorderClosed) {
			respondMessage(ctx, w, http.StatusServiceUnavailable, "analytics unavailable")
			return
		}
		respondError(ctx, w, "video event", err)
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, map[string]string{"status": "ok"})
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
