package ports

import (
	"context"

	"simkernel/domain/core/aggregates"
	"simkernel/domain/core/entities"
	"simkernel/domain/core/valueobjects"
	"simkernel/domain/events"
)

// SessionRegistry owns the map from session id to session state. It is
// constructed once by the host process and injected everywhere; there
// is no ambient global registry.
type SessionRegistry interface {
	// WithSession runs fn with exclusive access to the named session,
	// creating the session lazily on first access. Calls for the same
	// session are serialized; distinct sessions proceed in parallel.
	WithSession(ctx context.Context, id valueobjects.SessionID, fn func(*aggregates.Session) error) error
}

// LedgerStore is the append-only store for a session's replay marker
// chain. Append carries an optimistic-concurrency contract: on a
// non-empty chain the marker's PrevHash must equal the current head's
// StateHash or the append is rejected with a conflict. The contract is
// compare-and-append, so a multi-process store can implement it with a
// real CAS primitive without changing callers.
type LedgerStore interface {
	Append(ctx context.Context, sessionID valueobjects.SessionID, marker entities.ReplayMarker) error
	Head(ctx context.Context, sessionID valueobjects.SessionID) (*entities.ReplayMarker, error)
	List(ctx context.Context, sessionID valueobjects.SessionID) ([]entities.ReplayMarker, error)
}

// EventPublisher delivers domain events raised by aggregates to
// in-process observers after the owning operation succeeds
type EventPublisher interface {
	Publish(ctx context.Context, domainEvents []events.DomainEvent) error
}
