package models

// ChainReport is the result of re-walking a session's marker chain
type ChainReport struct {
	SessionID string `json:"session_id"`
	Length    int    `json:"length"`
	Intact    bool   `json:"intact"`
	// BrokenAt is the index of the first marker whose prev_hash does
	// not match its predecessor, nil when the chain is intact.
	BrokenAt *int `json:"broken_at,omitempty"`
	// HeadHash is the state hash of the current chain head, empty for
	// an empty chain.
	HeadHash string `json:"head_hash,omitempty"`
}
