package handlers

import (
	"context"

	"simkernel/application/commands"
	"simkernel/application/ports"
	"simkernel/domain/core/aggregates"
	"simkernel/domain/core/valueobjects"
	"simkernel/domain/events"

	"go.uber.org/zap"
)

// CommitSessionHandler runs the commit pipeline for a session
type CommitSessionHandler struct {
	registry  ports.SessionRegistry
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCommitSessionHandler creates a new commit session handler
func NewCommitSessionHandler(
	registry ports.SessionRegistry,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CommitSessionHandler {
	return &CommitSessionHandler{
		registry:  registry,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the commit command. Commit cannot fail on well-formed
// staged data; errors here indicate an internal fault, not bad input.
func (h *CommitSessionHandler) Handle(ctx context.Context, cmd commands.CommitSessionCommand) (aggregates.CommitResult, error) {
	sessionID, err := valueobjects.NewSessionID(cmd.SessionID)
	if err != nil {
		return aggregates.CommitResult{}, err
	}

	var result aggregates.CommitResult
	var pending []events.DomainEvent

	err = h.registry.WithSession(ctx, sessionID, func(s *aggregates.Session) error {
		var commitErr error
		result, commitErr = s.Commit()
		if commitErr != nil {
			return commitErr
		}

		pending = s.GetUncommittedEvents()
		s.MarkEventsAsCommitted()
		return nil
	})
	if err != nil {
		return aggregates.CommitResult{}, err
	}

	if err := h.publisher.Publish(ctx, pending); err != nil {
		h.logger.Warn("failed to publish commit events",
			zap.String("sessionID", cmd.SessionID),
			zap.Error(err),
		)
	}

	h.logger.Info("session committed",
		zap.String("sessionID", cmd.SessionID),
		zap.String("stateHash", result.StateHash),
	)

	return result, nil
}
