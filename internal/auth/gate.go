package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lacajita/backend/internal/logging"
)

type claimsKey struct{}

// TokenVerifier checks an Authorization header value.
type TokenVerifier interface {
	Verify(ctx context.Context, authorization string) (Claims, error)
}

// Gate guards handlers behind token verification.
type Gate struct {
	Verifier TokenVerifier
}

// Require wraps next so it only runs for requests carrying valid credentials.
// The verified claims are available through ClaimsFromContext.
func (g Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims, err := g.Verifier.Verify(ctx, r.Header.Get("Authorization"))
		if err != nil {
			status, message := gateFailure(err)
			logging.FromContext(ctx).LogAttrs(ctx, slog.LevelWarn, "request rejected by auth gate",
				slog.Int("status", status),
				slog.String("error", err.Error()),
			)
			if status == http.StatusUnauthorized {
				w.Header().Set("WWW-Authenticate", "Bearer")
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
			return
		}

		ctx = logging.With(WithClaims(ctx, claims), slog.String("user_sub", claims.Subject))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireFunc is Require for plain handler functions.
func (g Gate) RequireFunc(next http.HandlerFunc) http.Handler {
	return g.Require(next)
}

func gateFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ErrKeyFetch):
		return http.StatusServiceUnavailable, "identity provider unavailable"
	case errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	default:
		return http.StatusUnauthorized, "invalid token"
	}
}

// WithClaims stores verified claims on the context.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by the gate.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(Claims)
	return claims, ok
}
