package memory

import (
	"context"
	"sync"

	"simkernel/domain/config"
	"simkernel/domain/core/aggregates"
	"simkernel/domain/core/validators"
	"simkernel/domain/core/valueobjects"
	"simkernel/domain/versioning"
)

// SessionRegistry is the in-process session store. Sessions are created
// lazily on first access and live for the process lifetime; durable
// persistence is a collaborator outside the kernel.
//
// The registry enforces the single-writer-per-session discipline: one
// mutex per session serializes all operations on it while leaving
// distinct sessions fully parallel.
type SessionRegistry struct {
	cfg       *config.DomainConfig
	validator *validators.OpValidator
	hasher    *versioning.StateHasher

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *aggregates.Session
}

// NewSessionRegistry creates an empty session registry
func NewSessionRegistry(
	cfg *config.DomainConfig,
	validator *validators.OpValidator,
	hasher *versioning.StateHasher,
) *SessionRegistry {
	return &SessionRegistry{
		cfg:       cfg,
		validator: validator,
		hasher:    hasher,
		sessions:  make(map[string]*sessionEntry),
	}
}

// WithSession runs fn with exclusive access to the named session,
// creating it on first access
func (r *SessionRegistry) WithSession(ctx context.Context, id valueobjects.SessionID, fn func(*aggregates.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry, err := r.entry(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return fn(entry.session)
}

// Len returns the number of sessions currently held
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) entry(id valueobjects.SessionID) (*sessionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, exists := r.sessions[id.String()]; exists {
		return entry, nil
	}

	session, err := aggregates.NewSession(id, r.cfg, r.validator, r.hasher)
	if err != nil {
		return nil, err
	}

	entry := &sessionEntry{session: session}
	r.sessions[id.String()] = entry
	return entry, nil
}
