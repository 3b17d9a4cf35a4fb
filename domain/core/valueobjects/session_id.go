package valueobjects

import (
	"encoding/json"

	pkgerrors "simkernel/pkg/errors"
)

// MinSessionIDLength is the shortest session identifier the kernel accepts.
const MinSessionIDLength = 4

// SessionID is a value object representing an opaque session identifier
// Value objects are immutable and have no identity beyond their value
type SessionID struct {
	value string
}

// NewSessionID creates a SessionID from an untrusted string
func NewSessionID(id string) (SessionID, error) {
	if len(id) < MinSessionIDLength {
		return SessionID{}, pkgerrors.NewValidationError("session ID must be at least 4 characters").
			WithCode(pkgerrors.CodeBadSessionID)
	}
	return SessionID{value: id}, nil
}

// String returns the string representation of the SessionID
func (id SessionID) String() string {
	return id.value
}

// Equals checks if two SessionIDs are equal
func (id SessionID) Equals(other SessionID) bool {
	return id.value == other.value
}

// IsZero checks if the SessionID is the zero value
func (id SessionID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id SessionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}
