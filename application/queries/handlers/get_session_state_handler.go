package handlers

import (
	"context"

	"simkernel/application/ports"
	"simkernel/application/queries"
	"simkernel/domain/core/aggregates"
	"simkernel/domain/core/valueobjects"

	"go.uber.org/zap"
)

// GetSessionStateHandler serves full-session reads
type GetSessionStateHandler struct {
	registry ports.SessionRegistry
	logger   *zap.Logger
}

// NewGetSessionStateHandler creates a new session state handler
func NewGetSessionStateHandler(registry ports.SessionRegistry, logger *zap.Logger) *GetSessionStateHandler {
	return &GetSessionStateHandler{
		registry: registry,
		logger:   logger,
	}
}

// Handle executes the query. Reading through the registry keeps reads
// serialized with writes on the same session, so a snapshot never
// observes a half-applied commit.
func (h *GetSessionStateHandler) Handle(ctx context.Context, query queries.GetSessionStateQuery) (aggregates.Snapshot, error) {
	sessionID, err := valueobjects.NewSessionID(query.SessionID)
	if err != nil {
		return aggregates.Snapshot{}, err
	}

	var snapshot aggregates.Snapshot
	err = h.registry.WithSession(ctx, sessionID, func(s *aggregates.Session) error {
		snapshot = s.StateSnapshot()
		return nil
	})
	if err != nil {
		return aggregates.Snapshot{}, err
	}

	return snapshot, nil
}
