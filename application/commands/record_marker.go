package commands

import (
	pkgerrors "simkernel/pkg/errors"
)

// RecordMarkerCommand appends a replay marker to a session's hash
// chain. PrevHash is the hash of the chain head the caller observed;
// on a non-empty chain it must match or the append is rejected.
type RecordMarkerCommand struct {
	SessionID string
	StateHash string
	PrevHash  *string
}

// Validate checks command invariants before dispatch
func (c RecordMarkerCommand) Validate() error {
	if c.SessionID == "" {
		return pkgerrors.NewValidationError("session ID is required")
	}
	if c.StateHash == "" {
		return pkgerrors.NewValidationError("state_hash is required")
	}
	return nil
}
