package queries

import (
	pkgerrors "simkernel/pkg/errors"
)

// ListMarkersQuery returns a session's replay marker chain in order,
// root first
type ListMarkersQuery struct {
	SessionID string
}

// Validate checks query invariants before dispatch
func (q ListMarkersQuery) Validate() error {
	if q.SessionID == "" {
		return pkgerrors.NewValidationError("session ID is required")
	}
	return nil
}

// VerifyChainQuery re-walks a session's marker chain from the root and
// reports whether every link is intact
type VerifyChainQuery struct {
	SessionID string
}

// Validate checks query invariants before dispatch
func (q VerifyChainQuery) Validate() error {
	if q.SessionID == "" {
		return pkgerrors.NewValidationError("session ID is required")
	}
	return nil
}
