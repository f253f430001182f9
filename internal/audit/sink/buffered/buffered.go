// Package buffered decouples emission latency from request latency: Emit
// enqueues onto a bounded channel and a worker drains it into the wrapped
// sink. Callers opting into buffering trade the per-message failure policy
// for throughput; only a full buffer fails an Emit.
package buffered

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sullis/logging-log4j-audit/internal/audit"
)

// ErrBufferFull is returned when the inbox is at capacity.
var ErrBufferFull = errors.New("audit buffer full")

// Sink queues messages for background emission.
type Sink struct {
	inner audit.Sink
	inbox chan audit.Message
	log   *slog.Logger
}

// New creates a buffered Sink with the given capacity. Run must be started
// for messages to drain.
func New(inner audit.Sink, capacity int, log *slog.Logger) *Sink {
	return &Sink{
		inner: inner,
		inbox: make(chan audit.Message, capacity),
		log:   log,
	}
}

// Emit enqueues the message without blocking. A full buffer is an error so
// the caller's failure policy still applies under sustained backpressure.
func (s *Sink) Emit(_ context.Context, msg audit.Message) error {
	select {
	case s.inbox <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Run drains the inbox into the wrapped sink until ctx is canceled, then
// flushes whatever is still queued. Emission failures are logged, not
// returned: a background worker has no caller to hand them to.
func (s *Sink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return ctx.Err()
		case msg := <-s.inbox:
			s.deliver(ctx, msg)
		}
	}
}

func (s *Sink) flush() {
	for {
		select {
		case msg := <-s.inbox:
			s.deliver(context.Background(), msg)
		default:
			return
		}
	}
}

func (s *Sink) deliver(ctx context.Context, msg audit.Message) {
	if err := s.inner.Emit(ctx, msg); err != nil {
		s.log.Error("buffered audit emission failed",
			"event", msg.Name,
			"message_id", msg.ID,
			"error", err,
		)
	}
}
