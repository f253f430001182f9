package audit

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sullis/logging-log4j-audit/internal/catalog"
	"github.com/sullis/logging-log4j-audit/internal/constraints"
	"github.com/sullis/logging-log4j-audit/internal/platform/metrics"
	dErrors "github.com/sullis/logging-log4j-audit/pkg/domain-errors"
	"github.com/sullis/logging-log4j-audit/pkg/requestcontext"
)

// Logger validates events against the catalog and emits them to a sink.
// It holds only read-only collaborators, so one instance is safe for
// concurrent use by every request handler.
type Logger struct {
	catalog       catalog.Manager
	constraints   *constraints.Registry
	sink          Sink
	handler       FailureHandler
	maxNameLength int
	log           *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

// Option configures a Logger.
type Option func(*Logger)

// WithFailureHandler sets the instance failure handler. Passing nil installs
// the no-op handler, matching "no handler" semantics for callers that want
// best-effort auditing.
func WithFailureHandler(h FailureHandler) Option {
	return func(l *Logger) {
		if h == nil {
			h = NoopFailureHandler
		}
		l.handler = h
	}
}

// WithMaxNameLength bounds event names in emitted messages.
func WithMaxNameLength(n int) Option {
	return func(l *Logger) { l.maxNameLength = n }
}

// WithMetrics attaches emission metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Logger) { l.metrics = m }
}

// New creates a Logger. The default failure handler is FatalFailureHandler.
func New(cat catalog.Manager, reg *constraints.Registry, sink Sink, log *slog.Logger, opts ...Option) *Logger {
	l := &Logger{
		catalog:       cat,
		constraints:   reg,
		sink:          sink,
		handler:       FatalFailureHandler,
		maxNameLength: DefaultMaxNameLength,
		log:           log,
		tracer:        otel.Tracer("audit"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogEvent validates and emits an event from the default catalog.
func (l *Logger) LogEvent(ctx context.Context, eventName string, attributes map[string]string) error {
	return l.logEvent(ctx, eventName, "", attributes, nil)
}

// LogEventInCatalog validates and emits an event from a specific catalog.
func (l *Logger) LogEventInCatalog(ctx context.Context, eventName, catalogID string, attributes map[string]string) error {
	return l.logEvent(ctx, eventName, catalogID, attributes, nil)
}

// LogEventWithHandler is LogEvent with a one-off failure handler overriding
// the instance handler for this call only.
func (l *Logger) LogEventWithHandler(ctx context.Context, eventName string, attributes map[string]string, handler FailureHandler) error {
	return l.logEvent(ctx, eventName, "", attributes, handler)
}

func (l *Logger) logEvent(ctx context.Context, eventName, catalogID string, attributes map[string]string, handler FailureHandler) error {
	ctx, span := l.tracer.Start(ctx, "audit.log_event",
		trace.WithAttributes(attribute.String("audit.event", eventName)))
	defer span.End()

	msg, err := l.Validate(ctx, eventName, catalogID, attributes)
	if err != nil {
		if l.metrics != nil {
			l.metrics.IncValidationFailure(failureCode(err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return err
	}
	if l.metrics != nil {
		l.metrics.IncValidated()
	}

	start := time.Now()
	emitErr := l.sink.Emit(ctx, msg)
	if l.metrics != nil {
		l.metrics.ObserveEmitDuration(time.Since(start).Seconds())
	}
	if emitErr == nil {
		if l.metrics != nil {
			l.metrics.IncEmitted()
		}
		return nil
	}

	if l.metrics != nil {
		l.metrics.IncEmitFailure()
	}
	l.log.ErrorContext(ctx, "audit sink emission failed",
		"event", msg.Name,
		"message_id", msg.ID,
		"error", emitErr,
	)
	span.RecordError(emitErr)

	if handler == nil {
		handler = l.handler
	}
	return handler(msg, emitErr)
}

// Validate runs every validation stage and, when all pass, assembles the
// emission-ready message. It performs no I/O: the catalog and constraint
// registry are in-memory and the request context snapshot comes from ctx.
//
// Attribute problems from the required, constraint, and undeclared passes are
// accumulated and reported together so integrators see every issue in one
// round trip. Request-context problems surface as separate error codes
// because callers distinguish bad input from bad environment.
func (l *Logger) Validate(ctx context.Context, eventName, catalogID string, attributes map[string]string) (Message, error) {
	event, ok := l.catalog.GetEventInCatalog(eventName, catalogID)
	if !ok {
		return Message{}, dErrors.New(dErrors.CodeUnknownEvent, "unable to locate definition of audit event "+eventName)
	}

	var errs []string
	var missing []string

	// Required-attribute and constraint pass over the event's declared
	// attributes. Request-context attributes are checked later against the
	// ambient snapshot, not the supplied map.
	for _, ref := range event.Attributes {
		attr, ok := l.catalog.GetAttribute(ref.Name)
		if !ok || attr.RequestContext {
			continue
		}
		if !attr.Required && !ref.Required {
			continue
		}
		value, present := attributes[ref.Name]
		if !present {
			missing = append(missing, ref.Name)
			continue
		}
		errs = append(errs, l.checkConstraints(false, attr, value)...)
	}

	// Undeclared-attribute pass, resolved through the definition index.
	declared := l.catalog.GetAttributes(eventName, event.CatalogID)
	for _, name := range sortedKeys(attributes) {
		if _, ok := declared[name]; !ok && name != ReservedCompletionStatus {
			errs = append(errs, "attribute "+name+" is not defined for "+eventName)
		}
	}

	if len(missing) > 0 {
		errs = append(errs, "event "+eventName+" is missing required attribute(s) "+strings.Join(missing, ", "))
	}
	if len(errs) > 0 {
		return Message{}, dErrors.New(dErrors.CodeInvalidAttributes, strings.Join(errs, "\n"))
	}

	// Second membership check through the event's own name list. Catalogs
	// where an event references an attribute with no definition pass here
	// but fail the pass above, and vice versa, so both stay.
	names := l.catalog.GetAttributeNames(eventName, event.CatalogID)
	var invalid []string
	for _, name := range sortedKeys(attributes) {
		if name == ReservedCompletionStatus {
			continue
		}
		if !contains(names, name) {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return Message{}, dErrors.New(dErrors.CodeInvalidAttributes,
			"event "+eventName+" contains invalid attribute(s) "+strings.Join(invalid, ", "))
	}

	// Required request-context keys must exist in the ambient snapshot.
	snapshot := requestcontext.Snapshot(ctx)
	var missingCtx []string
	for _, name := range l.catalog.GetRequiredContextAttributes(eventName, event.CatalogID) {
		if _, present := snapshot[name]; !present {
			missingCtx = append(missingCtx, name)
		}
	}
	if len(missingCtx) > 0 {
		return Message{}, dErrors.New(dErrors.CodeMissingContext,
			"event "+eventName+" is missing required request context values for "+strings.Join(missingCtx, ", "))
	}

	// Constraint pass over context values that match known context
	// attribute definitions.
	contextAttrs := l.catalog.GetRequestContextAttributes()
	var ctxErrs []string
	for _, key := range sortedKeys(snapshot) {
		attr, ok := contextAttrs[key]
		if !ok {
			continue
		}
		ctxErrs = append(ctxErrs, l.checkConstraints(true, &attr, snapshot[key])...)
	}
	if len(ctxErrs) > 0 {
		return Message{}, dErrors.New(dErrors.CodeInvalidContext,
			"event "+eventName+" has incorrect data in the request context: "+strings.Join(ctxErrs, "\n"))
	}

	return newMessage(eventName, event.CatalogID, requestcontext.RequestID(ctx), l.maxNameLength, attributes), nil
}

func (l *Logger) checkConstraints(isRequestContext bool, attr *catalog.Attribute, value string) []string {
	var errs []string
	for _, c := range attr.Constraints {
		errs = append(errs, l.constraints.Validate(isRequestContext, c.Type, attr.Name, value, c.Value)...)
	}
	return errs
}

// sortedKeys keeps error text deterministic: validating the same inputs twice
// must produce identical messages regardless of map iteration order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func failureCode(err error) string {
	for _, code := range []dErrors.Code{
		dErrors.CodeUnknownEvent,
		dErrors.CodeInvalidAttributes,
		dErrors.CodeMissingContext,
		dErrors.CodeInvalidContext,
	} {
		if dErrors.HasCode(err, code) {
			return string(code)
		}
	}
	return string(dErrors.CodeInternal)
}
