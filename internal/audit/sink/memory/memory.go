// Package memory provides an in-memory audit sink. It backs the /events
// debug endpoint in single-node deployments and keeps unit tests free of
// infrastructure.
package memory

import (
	"context"
	"sync"

	"github.com/sullis/logging-log4j-audit/internal/audit"
)

type Sink struct {
	mu       sync.RWMutex
	messages []audit.Message
}

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Emit(_ context.Context, msg audit.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// List returns a copy of every recorded message in emission order.
func (s *Sink) List() []audit.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Message{}, s.messages...)
}

// ListRecent returns the most recent limit messages, newest last.
func (s *Sink) ListRecent(limit int) []audit.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.messages) - limit
	if start < 0 {
		start = 0
	}
	return append([]audit.Message{}, s.messages[start:]...)
}

func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
