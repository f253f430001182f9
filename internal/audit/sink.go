package audit

import "context"

// Sink durably records validated messages. Implementations may block or fail;
// the Logger routes failures through its failure handler, so Emit errors
// never panic the emitting request.
type Sink interface {
	Emit(ctx context.Context, msg Message) error
}

// NopSink discards every message. Useful in tests and as a disabled default.
type NopSink struct{}

func (NopSink) Emit(context.Context, Message) error { return nil }

// FanoutSink emits to several sinks in order. All sinks are attempted; the
// first error is returned so the failure handler sees it.
type FanoutSink []Sink

func (s FanoutSink) Emit(ctx context.Context, msg Message) error {
	var firstErr error
	for _, sink := range s {
		if err := sink.Emit(ctx, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
