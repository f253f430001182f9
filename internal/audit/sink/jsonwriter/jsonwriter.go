// Package jsonwriter emits audit messages as line-delimited JSON to an
// io.Writer, typically a log file or stdout collected by the platform's
// log shipper.
package jsonwriter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/sullis/logging-log4j-audit/internal/audit"
)

type Sink struct {
	mu     sync.Mutex
	writer io.Writer
}

func New(w io.Writer) *Sink {
	return &Sink{writer: w}
}

func (s *Sink) Emit(_ context.Context, msg audit.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal audit message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("write audit message: %w", err)
	}
	if _, err := s.writer.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write audit message: %w", err)
	}
	return nil
}
