package audit

import (
	dErrors "github.com/sullis/logging-log4j-audit/pkg/domain-errors"
)

// FailureHandler decides what a sink failure means to the caller. It receives
// the fully validated message and the sink's error; whatever it returns is
// what the logging call returns. Validation failures never reach a handler --
// only post-validation emission failures do.
type FailureHandler func(msg Message, cause error) error

// FatalFailureHandler converts a sink failure into a fatal audit error. This
// is the default: deployments that must not lose audit records want the
// guarded operation to fail when the record cannot be written.
func FatalFailureHandler(msg Message, cause error) error {
	return dErrors.Wrap(cause, dErrors.CodeSinkFailure, "error logging event "+msg.Name)
}

// NoopFailureHandler swallows sink failures. For deployments where audit is
// best-effort and the guarded operation must proceed regardless.
func NoopFailureHandler(Message, error) error { return nil }
