package handlers

import (
	"context"

	"simkernel/application/ports"
	"simkernel/application/queries"
	"simkernel/application/queries/models"
	"simkernel/domain/core/entities"
	"simkernel/domain/core/valueobjects"

	"go.uber.org/zap"
)

// ListMarkersHandler serves reads of a session's marker chain
type ListMarkersHandler struct {
	ledger ports.LedgerStore
	logger *zap.Logger
}

// NewListMarkersHandler creates a new list markers handler
func NewListMarkersHandler(ledger ports.LedgerStore, logger *zap.Logger) *ListMarkersHandler {
	return &ListMarkersHandler{
		ledger: ledger,
		logger: logger,
	}
}

// Handle executes the query
func (h *ListMarkersHandler) Handle(ctx context.Context, query queries.ListMarkersQuery) ([]entities.ReplayMarker, error) {
	sessionID, err := valueobjects.NewSessionID(query.SessionID)
	if err != nil {
		return nil, err
	}

	return h.ledger.List(ctx, sessionID)
}

// VerifyChainHandler re-walks a marker chain and reports broken links
type VerifyChainHandler struct {
	ledger ports.LedgerStore
	logger *zap.Logger
}

// NewVerifyChainHandler creates a new verify chain handler
func NewVerifyChainHandler(ledger ports.LedgerStore, logger *zap.Logger) *VerifyChainHandler {
	return &VerifyChainHandler{
		ledger: ledger,
		logger: logger,
	}
}

// Handle executes the query
func (h *VerifyChainHandler) Handle(ctx context.Context, query queries.VerifyChainQuery) (models.ChainReport, error) {
	sessionID, err := valueobjects.NewSessionID(query.SessionID)
	if err != nil {
		return models.ChainReport{}, err
	}

	markers, err := h.ledger.List(ctx, sessionID)
	if err != nil {
		return models.ChainReport{}, err
	}

	report := models.ChainReport{
		SessionID: query.SessionID,
		Length:    len(markers),
		Intact:    true,
	}

	if broken := entities.VerifyChain(markers); broken >= 0 {
		report.Intact = false
		report.BrokenAt = &broken
		h.logger.Warn("marker chain broken",
			zap.String("sessionID", query.SessionID),
			zap.Int("brokenAt", broken),
		)
	}

	if len(markers) > 0 {
		report.HeadHash = markers[len(markers)-1].StateHash
	}

	return report, nil
}
