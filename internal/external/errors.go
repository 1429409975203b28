package external

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates an upstream could not serve the request.
	ErrUnavailable = errors.New("external: upstream unavailable")
	// ErrCircuitOpen indicates the breaker rejected the call without contacting
	// the upstream. It matches ErrUnavailable.
	ErrCircuitOpen = fmt.Errorf("%w: circuit open", ErrUnavailable)
	// ErrNotConfigured indicates the client lacks the credentials it needs.
	ErrNotConfigured = errors.New("external: client not configured")
)

// StatusError reports a non-2xx upstream response. It matches ErrUnavailable.
type StatusError struct {
	Upstream string
	Status   int
	Body     []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("external: %s returned status %d", e.Upstream, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrUnavailable
}

// ClientError reports whether the upstream rejected the request itself rather
// than failing.
func (e *StatusError) ClientError() bool {
	return e.Status >= 400 && e.Status < 500
}
