// Package postgres persists audit messages to the audit_events table and
// serves the query endpoint. Inserts are idempotent on message ID so a
// fan-out retry can never duplicate a record.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sullis/logging-log4j-audit/internal/audit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Emit(ctx context.Context, msg audit.Message) error {
	attrs, err := json.Marshal(msg.Attributes)
	if err != nil {
		return fmt.Errorf("marshal audit attributes: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, name, catalog_id, request_id, timestamp, attributes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		msg.ID,
		msg.Name,
		msg.CatalogID,
		msg.RequestID,
		msg.Timestamp,
		attrs,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the limit most recent messages, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Message, error) {
	query := `
		SELECT id, name, catalog_id, request_id, timestamp, attributes
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var messages []audit.Message
	for rows.Next() {
		var msg audit.Message
		var attrs []byte
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.CatalogID, &msg.RequestID, &msg.Timestamp, &attrs); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if err := json.Unmarshal(attrs, &msg.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal audit attributes: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return messages, nil
}
