package handlers

import (
	"context"
	"time"

	"simkernel/application/commands"
	"simkernel/application/ports"
	"simkernel/domain/core/entities"
	"simkernel/domain/core/valueobjects"
	"simkernel/domain/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordMarkerHandler appends replay markers to the hash-chain ledger
type RecordMarkerHandler struct {
	ledger    ports.LedgerStore
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewRecordMarkerHandler creates a new record marker handler
func NewRecordMarkerHandler(
	ledger ports.LedgerStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *RecordMarkerHandler {
	return &RecordMarkerHandler{
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the record marker command. The store enforces the
// compare-and-append contract and returns a conflict when the supplied
// prev_hash does not match the current chain head.
func (h *RecordMarkerHandler) Handle(ctx context.Context, cmd commands.RecordMarkerCommand) (entities.ReplayMarker, error) {
	sessionID, err := valueobjects.NewSessionID(cmd.SessionID)
	if err != nil {
		return entities.ReplayMarker{}, err
	}

	marker := entities.ReplayMarker{
		ID:        uuid.New().String(),
		StateHash: cmd.StateHash,
		PrevHash:  cmd.PrevHash,
		TMs:       time.Now().UnixMilli(),
	}

	if err := h.ledger.Append(ctx, sessionID, marker); err != nil {
		return entities.ReplayMarker{}, err
	}

	event := events.NewMarkerRecorded(cmd.SessionID, marker.ID, marker.StateHash, time.Now())
	if err := h.publisher.Publish(ctx, []events.DomainEvent{event}); err != nil {
		h.logger.Warn("failed to publish marker event",
			zap.String("sessionID", cmd.SessionID),
			zap.Error(err),
		)
	}

	h.logger.Info("replay marker recorded",
		zap.String("sessionID", cmd.SessionID),
		zap.String("markerID", marker.ID),
		zap.String("stateHash", marker.StateHash),
	)

	return marker, nil
}
