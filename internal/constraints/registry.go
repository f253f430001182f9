// Package constraints dispatches catalog constraint checks to pluggable
// validator functions keyed by constraint type. The set is open: deployments
// register additional validators at startup without recompiling the service.
package constraints

import (
	"log/slog"
	"sync"
)

// Validator checks a single constraint against an attribute value and returns
// zero or more violation messages. isRequestContext tells the validator
// whether the value came from the ambient request context or the caller's
// attribute map, so messages can say which.
type Validator func(isRequestContext bool, name, value, arg string) []string

// Registry maps constraint-type identifiers to validators. Registration
// happens at startup; validation is read-mostly, guarded by an RWMutex so
// concurrent validations never contend on the hot path.
//
// Catalogs are externally authored and may reference retired constraint
// types. An unregistered type is treated as passing, with a logged warning,
// rather than failing events that were valid before the type was retired.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]Validator
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		validators: make(map[string]Validator),
		logger:     logger,
	}
}

// Register installs a validator for a constraint type, replacing any
// previous registration.
func (r *Registry) Register(constraintType string, v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[constraintType] = v
}

// Validate dispatches one constraint check. Returns nil when the value passes
// or the constraint type is unknown.
func (r *Registry) Validate(isRequestContext bool, constraintType, name, value, arg string) []string {
	r.mu.RLock()
	v, ok := r.validators[constraintType]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("skipping unregistered constraint type",
			"constraint_type", constraintType,
			"attribute", name,
		)
		return nil
	}
	return v(isRequestContext, name, value, arg)
}
