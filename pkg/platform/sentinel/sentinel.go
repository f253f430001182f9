package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Catalog sources and sinks return
// these (optionally wrapped) so callers can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: resource (catalog file, cached entry) does not exist
// - ErrExpired: cached entry has passed its TTL
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing attributes), use
// pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
