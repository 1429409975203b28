package httpserver

import (
	"context"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// ShutdownContext returns a context bounded by the shutdown timeout that
// ignores parent cancellation.
func (s *Server) ShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), s.shutdownTimeout)
}
