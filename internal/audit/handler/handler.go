// Package handler exposes the audit event HTTP endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sullis/logging-log4j-audit/internal/audit"
	dErrors "github.com/sullis/logging-log4j-audit/pkg/domain-errors"
	"github.com/sullis/logging-log4j-audit/pkg/platform/httputil"
	"github.com/sullis/logging-log4j-audit/pkg/requestcontext"
)

// defaultListLimit bounds GET /events responses when the caller does not
// specify a limit.
const defaultListLimit = 100

// EventLogger validates and emits audit events.
type EventLogger interface {
	LogEventInCatalog(ctx context.Context, eventName, catalogID string, attributes map[string]string) error
}

// MessageStore reads back recently emitted messages for inspection.
type MessageStore interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Message, error)
}

// Handler handles audit event endpoints.
type Handler struct {
	logger *slog.Logger
	events EventLogger
	store  MessageStore
}

// New creates a Handler. store may be nil when no queryable sink is
// configured; GET /events then returns an empty list.
func New(events EventLogger, store MessageStore, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		events: events,
		store:  store,
	}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/event/log", h.handleLogEvent)
	r.Get("/events", h.handleListEvents)
}

// logEventRequest is the wire format for event submission. RequestContext
// entries supplement values imported from headers; explicit body entries win.
type logEventRequest struct {
	EventName      string            `json:"eventName"`
	CatalogID      string            `json:"catalogId,omitempty"`
	Attributes     map[string]string `json:"attributes"`
	RequestContext map[string]string `json:"requestContext,omitempty"`
}

func (h *Handler) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req logEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}
	if req.EventName == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "eventName is required"))
		return
	}

	if len(req.RequestContext) > 0 {
		ctx = requestcontext.WithValues(ctx, req.RequestContext)
	}

	if err := h.events.LogEventInCatalog(ctx, req.EventName, req.CatalogID, req.Attributes); err != nil {
		h.logger.WarnContext(ctx, "audit event rejected",
			"event", req.EventName,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged"})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	if h.store == nil {
		httputil.WriteJSON(w, http.StatusOK, []audit.Message{})
		return
	}

	messages, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "listing recent audit events failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "listing events failed"))
		return
	}
	if messages == nil {
		messages = []audit.Message{}
	}

	httputil.WriteJSON(w, http.StatusOK, messages)
}

// RegisterHealth registers the liveness endpoint.
func RegisterHealth(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
