package memory

import (
	"context"
	"sync"

	"simkernel/domain/core/entities"
	"simkernel/domain/core/valueobjects"
	pkgerrors "simkernel/pkg/errors"
)

// LedgerStore is the in-process hash-chain ledger. Append implements
// the compare-and-append contract with a guarded check under the store
// mutex; a multi-process implementation can substitute a real CAS
// primitive without changing callers.
type LedgerStore struct {
	mu     sync.RWMutex
	chains map[string][]entities.ReplayMarker
}

// NewLedgerStore creates an empty ledger store
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		chains: make(map[string][]entities.ReplayMarker),
	}
}

// Append adds a marker to the session's chain. On an empty chain any
// PrevHash (including nil) is accepted; otherwise PrevHash must equal
// the current head's StateHash.
func (s *LedgerStore) Append(ctx context.Context, sessionID valueobjects.SessionID, marker entities.ReplayMarker) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chain := s.chains[sessionID.String()]
	if len(chain) > 0 {
		head := chain[len(chain)-1]
		if marker.PrevHash == nil || *marker.PrevHash != head.StateHash {
			return pkgerrors.NewConflictError("prev_hash does not match current chain head").
				WithCode(pkgerrors.CodeHashChainMismatch).
				WithDetails(map[string]interface{}{
					"head_hash": head.StateHash,
				})
		}
	}

	s.chains[sessionID.String()] = append(chain, marker)
	return nil
}

// Head returns the current chain head, or nil for an empty chain
func (s *LedgerStore) Head(ctx context.Context, sessionID valueobjects.SessionID) (*entities.ReplayMarker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.chains[sessionID.String()]
	if len(chain) == 0 {
		return nil, nil
	}

	head := chain[len(chain)-1]
	return &head, nil
}

// List returns the session's chain in append order, root first
func (s *LedgerStore) List(ctx context.Context, sessionID valueobjects.SessionID) ([]entities.ReplayMarker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.chains[sessionID.String()]
	out := make([]entities.ReplayMarker, len(chain))
	copy(out, chain)
	return out, nil
}
