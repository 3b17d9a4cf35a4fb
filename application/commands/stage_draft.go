package commands

import (
	"simkernel/domain/core/validators"
	pkgerrors "simkernel/pkg/errors"
)

// ScalarsPatch is the page-1 payload: pointer fields so an omitted
// modifier leaves the pending value untouched
type ScalarsPatch struct {
	MassMod        *float64 `json:"mass_mod,omitempty"`
	VolumeOverride *float64 `json:"volume_override,omitempty"`
}

// StageDraftCommand merges a patch into one page of a session's draft
// buffer. Exactly one of Scalars, Ops, Allocations is consulted,
// selected by Page.
type StageDraftCommand struct {
	SessionID   string
	Page        int
	Scalars     *ScalarsPatch
	Ops         []validators.RawNodeOp
	Allocations map[string]float64
}

// Validate checks command invariants before dispatch
func (c StageDraftCommand) Validate() error {
	if c.SessionID == "" {
		return pkgerrors.NewValidationError("session ID is required")
	}
	if c.Page < 1 || c.Page > 3 {
		return pkgerrors.NewValidationError("page must be 1, 2 or 3")
	}
	return nil
}
