// Package failover wraps a primary sink with a circuit breaker and a
// fallback sink. When the primary trips the breaker, messages divert to the
// fallback until the primary proves healthy again, so audit records survive
// broker outages.
package failover

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sullis/logging-log4j-audit/internal/audit"
	"github.com/sullis/logging-log4j-audit/pkg/platform/circuit"
)

// Sink routes emissions between a primary and a fallback sink.
type Sink struct {
	primary  audit.Sink
	fallback audit.Sink
	breaker  *circuit.Breaker
	log      *slog.Logger
}

// New creates a failover Sink. Breaker options tune how quickly the primary
// is abandoned and readmitted.
func New(primary, fallback audit.Sink, log *slog.Logger, opts ...circuit.Option) *Sink {
	return &Sink{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("audit-sink", opts...),
		log:      log,
	}
}

// Emit sends the message to the primary sink unless the breaker is open. A
// failed primary emission is retried on the fallback; only a failure of both
// surfaces to the caller.
func (s *Sink) Emit(ctx context.Context, msg audit.Message) error {
	if s.breaker.IsOpen() {
		if err := s.fallback.Emit(ctx, msg); err != nil {
			return fmt.Errorf("fallback sink: %w", err)
		}
		// Probe the primary so the circuit can close again. A successful
		// probe delivers the message twice; stores are idempotent on
		// message ID.
		if err := s.primary.Emit(ctx, msg); err == nil {
			if _, change := s.breaker.RecordSuccess(); change.Closed {
				s.log.InfoContext(ctx, "audit sink circuit closed", "breaker", s.breaker.Name())
			}
		} else {
			s.breaker.RecordFailure()
		}
		return nil
	}

	err := s.primary.Emit(ctx, msg)
	if err == nil {
		s.breaker.RecordSuccess()
		return nil
	}

	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.log.WarnContext(ctx, "audit sink circuit opened",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}

	if fbErr := s.fallback.Emit(ctx, msg); fbErr != nil {
		return fmt.Errorf("primary sink: %v; fallback sink: %w", err, fbErr)
	}
	return nil
}
