package commands

import (
	pkgerrors "simkernel/pkg/errors"
)

// CommitSessionCommand applies all pending draft pages to the session's
// graph in the fixed stage order and produces a new state hash
type CommitSessionCommand struct {
	SessionID string
}

// Validate checks command invariants before dispatch
func (c CommitSessionCommand) Validate() error {
	if c.SessionID == "" {
		return pkgerrors.NewValidationError("session ID is required")
	}
	return nil
}
