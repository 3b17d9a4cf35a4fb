package queries

import (
	pkgerrors "simkernel/pkg/errors"
)

// GetSessionStateQuery returns the full state of a session: mode,
// pending draft, committed graph, allocations and state hash
type GetSessionStateQuery struct {
	SessionID string
}

// Validate checks query invariants before dispatch
func (q GetSessionStateQuery) Validate() error {
	if q.SessionID == "" {
		return pkgerrors.NewValidationError("session ID is required")
	}
	return nil
}
