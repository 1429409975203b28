package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/lacajita/backend/internal/external"
	"github.com/lacajita/backend/internal/logging"
	"github.com/lacajita/backend/internal/models"
	"github.com/lacajita/backend/internal/repositories"
	"github.com/lacajita/backend/internal/storage"
	"github.com/lacajita/backend/internal/validation"
)

const maxBodyBytes = 1 << 20

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}
	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func respondMessage(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, map[string]string{"error": message})
}

// respondError translates a collaborator error into a status code. entity
// names the record kind in client-facing messages.
func respondError(ctx context.Context, w http.ResponseWriter, entity string, err error) {
	status, message := errorStatus(entity, err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(ctx).Error("handler failed", "entity", entity, "error", err)
	}
	respondMessage(ctx, w, status, message)
}

// respondDeleteError is respondError for deletes, where a foreign key
// violation means the record still has children.
func respondDeleteError(ctx context.Context, w http.ResponseWriter, entity string, err error) {
	if errors.Is(err, repositories.ErrInvalidReference) {
		respondMessage(ctx, w, http.StatusConflict, entity+" still has dependent records")
		return
	}
	respondError(ctx, w, entity, err)
}

func errorStatus(entity string, err error) (int, string) {
	var (
		verr     *validation.Error
		tooLarge *http.MaxBytesError
		upstream *external.StatusError
	)
	switch {
	case errors.As(err, &upstream) && upstream.ClientError():
		return upstream.Status, fmt.Sprintf("%s rejected by upstream (status %d)", entity, upstream.Status)
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, entity + " not found"
	case errors.Is(err, repositories.ErrConflict):
		return http.StatusConflict, entity + " already exists"
	case errors.Is(err, repositories.ErrInvalidReference):
		return http.StatusBadRequest, entity + " references a missing record"
	case errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest, "invalid file name"
	case errors.Is(err, storage.ErrPayloadTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "payload too large"
	case errors.Is(err, external.ErrNotConfigured):
		return http.StatusNotImplemented, entity + " integration not configured"
	case errors.Is(err, external.ErrCircuitOpen):
		return http.StatusServiceUnavailable, entity + " temporarily unavailable"
	case errors.Is(err, external.ErrUnavailable):
		return http.StatusBadGateway, entity + " upstream error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := readJSON(w, r, dst); err != nil {
		return err
	}
	return validation.Struct(dst)
}

// readJSON reads a bounded JSON body into dst without validating it.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &validation.Error{Field: "body", Rule: "required"}
		}
		return &validation.Error{Field: "body", Rule: "json"}
	}
	return nil
}

func pathInt(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &validation.Error{Field: name, Rule: "numeric"}
	}
	return id, nil
}

// queryFlag parses an optional 0/1 query parameter. fallback is returned
// when the parameter is absent.
func queryFlag(r *http.Request, name string, fallback *int) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || (v != models.FlagOff && v != models.FlagOn) {
		return nil, &validation.Error{Field: name, Rule: "oneof", Param: "0 1"}
	}
	return &v, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &validation.Error{Field: name, Rule: "min", Param: "0"}
	}
	return v, nil
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &validation.Error{Field: name, Rule: "numeric"}
	}
	return &v, nil
}

func intPtr(v int) *int { return &v }

func badRequest(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := errorStatus("request", err)
	if status == http.StatusInternalServerError {
		status, message = http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err)
	}
	logging.FromContext(ctx).Warn("invalid request", "error", err)
	respondMessage(ctx, w, status, message)
}
