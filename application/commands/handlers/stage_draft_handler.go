package handlers

import (
	"context"
	"fmt"

	"simkernel/application/commands"
	"simkernel/application/ports"
	"simkernel/domain/core/aggregates"
	"simkernel/domain/core/valueobjects"
	"simkernel/domain/events"

	"go.uber.org/zap"
)

// StageDraftHandler merges patches into a session's draft buffer
type StageDraftHandler struct {
	registry  ports.SessionRegistry
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewStageDraftHandler creates a new stage draft handler
func NewStageDraftHandler(
	registry ports.SessionRegistry,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *StageDraftHandler {
	return &StageDraftHandler{
		registry:  registry,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the stage draft command
func (h *StageDraftHandler) Handle(ctx context.Context, cmd commands.StageDraftCommand) (aggregates.DraftView, error) {
	sessionID, err := valueobjects.NewSessionID(cmd.SessionID)
	if err != nil {
		return aggregates.DraftView{}, err
	}

	var view aggregates.DraftView
	var pending []events.DomainEvent

	err = h.registry.WithSession(ctx, sessionID, func(s *aggregates.Session) error {
		var stageErr error

		switch cmd.Page {
		case 1:
			if cmd.Scalars == nil {
				view = s.StageScalars(nil, nil)
			} else {
				view = s.StageScalars(cmd.Scalars.MassMod, cmd.Scalars.VolumeOverride)
			}
		case 2:
			view, stageErr = s.StageOps(cmd.Ops)
		case 3:
			patch := make(valueobjects.Allocations, len(cmd.Allocations))
			for key, weight := range cmd.Allocations {
				direction, parseErr := valueobjects.ParseDirection(key)
				if parseErr != nil {
					return parseErr
				}
				patch[direction] = weight
			}
			view, stageErr = s.StageAllocations(patch)
		default:
			stageErr = fmt.Errorf("unsupported page %d", cmd.Page)
		}

		if stageErr != nil {
			return stageErr
		}

		pending = s.GetUncommittedEvents()
		s.MarkEventsAsCommitted()
		return nil
	})
	if err != nil {
		return aggregates.DraftView{}, err
	}

	if err := h.publisher.Publish(ctx, pending); err != nil {
		// Staging already succeeded; observers are best-effort.
		h.logger.Warn("failed to publish draft events",
			zap.String("sessionID", cmd.SessionID),
			zap.Error(err),
		)
	}

	h.logger.Debug("draft staged",
		zap.String("sessionID", cmd.SessionID),
		zap.Int("page", cmd.Page),
	)

	return view, nil
}
