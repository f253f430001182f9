// Package postgres loads catalog documents from PostgreSQL. The catalog
// editor writes these tables; the audit service only reads them, once at
// startup, and indexes the result in memory.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sullis/logging-log4j-audit/internal/catalog"
)

// Store reads a catalog document from the catalog tables.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL catalog source.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load reads attribute definitions, their constraints, and event schemas.
// Constraint and event-attribute ordering follows the sort_order column so
// validation reports errors in catalog declaration order.
func (s *Store) Load(ctx context.Context) (*catalog.Catalog, error) {
	attributes, err := s.loadAttributes(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.loadEvents(ctx)
	if err != nil {
		return nil, err
	}
	return &catalog.Catalog{Attributes: attributes, Events: events}, nil
}

func (s *Store) loadAttributes(ctx context.Context) ([]catalog.Attribute, error) {
	query := `
		SELECT name, required, request_context
		FROM catalog_attributes
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog attributes: %w", err)
	}
	defer rows.Close()

	var attributes []catalog.Attribute
	index := make(map[string]int)
	for rows.Next() {
		var attr catalog.Attribute
		if err := rows.Scan(&attr.Name, &attr.Required, &attr.RequestContext); err != nil {
			return nil, fmt.Errorf("scan catalog attribute: %w", err)
		}
		index[attr.Name] = len(attributes)
		attributes = append(attributes, attr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog attributes: %w", err)
	}

	if err := s.loadConstraints(ctx, attributes, index); err != nil {
		return nil, err
	}
	return attributes, nil
}

func (s *Store) loadConstraints(ctx context.Context, attributes []catalog.Attribute, index map[string]int) error {
	query := `
		SELECT attribute_name, constraint_type, constraint_value
		FROM attribute_constraints
		ORDER BY attribute_name, sort_order
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query attribute constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var attrName string
		var constraint catalog.Constraint
		if err := rows.Scan(&attrName, &constraint.Type, &constraint.Value); err != nil {
			return fmt.Errorf("scan attribute constraint: %w", err)
		}
		i, ok := index[attrName]
		if !ok {
			// Constraint for a deleted attribute; the editor leaves these
			// behind, ignore them.
			continue
		}
		attributes[i].Constraints = append(attributes[i].Constraints, constraint)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate attribute constraints: %w", err)
	}
	return nil
}

func (s *Store) loadEvents(ctx context.Context) ([]catalog.Event, error) {
	query := `
		SELECT name, display_name, catalog_id
		FROM catalog_events
		ORDER BY catalog_id, name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog events: %w", err)
	}
	defer rows.Close()

	var events []catalog.Event
	type key struct{ name, catalogID string }
	index := make(map[key]int)
	for rows.Next() {
		var event catalog.Event
		if err := rows.Scan(&event.Name, &event.DisplayName, &event.CatalogID); err != nil {
			return nil, fmt.Errorf("scan catalog event: %w", err)
		}
		index[key{event.Name, event.CatalogID}] = len(events)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog events: %w", err)
	}

	refQuery := `
		SELECT event_name, catalog_id, attribute_name, required
		FROM event_attributes
		ORDER BY event_name, catalog_id, sort_order
	`
	refRows, err := s.db.QueryContext(ctx, refQuery)
	if err != nil {
		return nil, fmt.Errorf("query event attributes: %w", err)
	}
	defer refRows.Close()

	for refRows.Next() {
		var eventName, catalogID string
		var ref catalog.EventAttribute
		if err := refRows.Scan(&eventName, &catalogID, &ref.Name, &ref.Required); err != nil {
			return nil, fmt.Errorf("scan event attribute: %w", err)
		}
		i, ok := index[key{eventName, catalogID}]
		if !ok {
			continue
		}
		events[i].Attributes = append(events[i].Attributes, ref)
	}
	if err := refRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event attributes: %w", err)
	}
	return events, nil
}
