// Package analytics records playback events off the request path.
package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lacajita/backend/internal/metrics"
	"github.com/lacajita/backend/internal/models"
)

// ErrRecorderClosed is returned by Record after Shutdown.
var ErrRecorderClosed = errors.New("analytics recorder closed")

const writeTimeout = 5 * time.Second

// EventWriter persists one playback event.
type EventWriter interface {
	Record(ctx context.Context, evt models.VideoPlayEvent) error
}

// RecorderConfig controls the concurrency characteristics of the recorder.
type RecorderConfig struct {
	QueueSize int
	Workers   int
}

// Recorder persists playback events through a bounded worker pool.
type Recorder struct {
	writer EventWriter
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	events chan models.VideoPlayEvent

	wg   sync.WaitGroup
	once sync.Once
	done chan struct{}
}

// NewRecorder starts the workers.
func NewRecorder(writer EventWriter, cfg RecorderConfig, logger *slog.Logger) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		writer: writer,
		logger: logger,
		events: make(chan models.VideoPlayEvent, cfg.QueueSize),
		done:   make(chan struct{}),
	}

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.worker()
	}

	return r
}

// Record queues evt. A full queue blocks until ctx ends.
func (r *Recorder) Record(ctx context.Context, evt models.VideoPlayEvent) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrRecorderClosed
	}

	select {
	case <-ctx.Done():
		metrics.AnalyticsEvents.WithLabelValues("dropped").Inc()
		return ctx.Err()
	case r.events <- evt:
		return nil
	}
}

// Shutdown stops accepting events and waits for the queue to drain.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.once.Do(func() {
		go func() {
			r.mu.Lock()
			r.closed = true
			close(r.events)
			r.mu.Unlock()

			r.wg.Wait()
			close(r.done)
		}()
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return nil
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for evt := range r.events {
		r.write(evt)
	}
}

func (r *Recorder) write(evt models.VideoPlayEvent) {
	if r.writer == nil {
		r.logger.Error("analytics recorder missing writer", "mediaId", evt.MediaID)
		metrics.AnalyticsEvents.WithLabelValues("failed").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.writer.Record(ctx, evt); err != nil {
		r.logger.Error("record playback event", "mediaId", evt.MediaID, "event", evt.Event, "error", err)
		metrics.AnalyticsEvents.WithLabelValues("failed").Inc()
		return
	}
	metrics.AnalyticsEvents.WithLabelValues("stored").Inc()
}
