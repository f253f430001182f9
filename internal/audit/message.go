// Package audit validates and emits structured audit events. An event is
// accepted only when its catalog schema says so: required attributes present,
// constraints satisfied, no undeclared attributes, and the ambient request
// context complete. Validation is pure computation; emission goes through a
// Sink and sink failures are routed through a configurable failure handler
// instead of failing the caller outright.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// ReservedCompletionStatus is the one attribute name always accepted even
// when an event's schema does not declare it. Interceptors stamp it onto
// messages after the guarded operation finishes.
const ReservedCompletionStatus = "completionStatus"

// DefaultMaxNameLength bounds the event name carried in a message, mirroring
// the 32-character limit RFC 5424 places on structured-data IDs.
const DefaultMaxNameLength = 32

// Message is the validated, emission-ready audit record. It is built only
// after every validation stage passes and must be treated as read-only once
// handed to a sink.
type Message struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	CatalogID  string            `json:"catalogId,omitempty"`
	RequestID  string            `json:"requestId,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Attributes map[string]string `json:"attributes"`
}

// newMessage assembles a Message from validated inputs. The attribute map is
// copied so later caller mutations cannot reach the emitted record, and the
// event name is truncated to maxNameLength.
func newMessage(eventName, catalogID, requestID string, maxNameLength int, attributes map[string]string) Message {
	if maxNameLength > 0 && len(eventName) > maxNameLength {
		eventName = eventName[:maxNameLength]
	}
	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	return Message{
		ID:         uuid.NewString(),
		Name:       eventName,
		CatalogID:  catalogID,
		RequestID:  requestID,
		Timestamp:  time.Now(),
		Attributes: attrs,
	}
}
