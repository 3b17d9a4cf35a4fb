package entities

// ReplayMarker is an immutable checkpoint in a session's hash chain.
// PrevHash is nil only for the first marker of a chain; once written a
// marker is never mutated or deleted.
type ReplayMarker struct {
	ID        string  `json:"id"`
	StateHash string  `json:"state_hash"`
	PrevHash  *string `json:"prev_hash"`
	TMs       int64   `json:"t_ms"`
}

// VerifyChain walks markers from the root and confirms each marker's
// PrevHash equals the previous marker's StateHash. It returns the index
// of the first broken link, or -1 if the chain is intact. The root
// marker's PrevHash is unconstrained.
func VerifyChain(markers []ReplayMarker) int {
	for i := 1; i < len(markers); i++ {
		prev := markers[i].PrevHash
		if prev == nil || *prev != markers[i-1].StateHash {
			return i
		}
	}
	return -1
}
