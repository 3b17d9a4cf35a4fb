package handlers

import (
	"encoding/json"
	"net/http"

	"simkernel/application/commands"
	"simkernel/application/commands/bus"
	"simkernel/application/queries"
	querybus "simkernel/application/queries/bus"
	"simkernel/pkg/common"
	pkgerrors "simkernel/pkg/errors"
	"simkernel/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LedgerHandler handles replay marker HTTP requests
type LedgerHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// RecordMarkerRequest is the request body for appending a replay marker
type RecordMarkerRequest struct {
	StateHash string  `json:"state_hash" validate:"required,len=64,hexadecimal"`
	PrevHash  *string `json:"prev_hash,omitempty" validate:"omitempty,len=64,hexadecimal"`
}

// RecordMarker handles POST /sessions/{sessionID}/markers
func (h *LedgerHandler) RecordMarker(w http.ResponseWriter, r *http.Request) {
	var req RecordMarkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cmd := commands.RecordMarkerCommand{
		SessionID: chi.URLParam(r, "sessionID"),
		StateHash: req.StateHash,
		PrevHash:  req.PrevHash,
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, result)
}

// ListMarkers handles GET /sessions/{sessionID}/markers
func (h *LedgerHandler) ListMarkers(w http.ResponseWriter, r *http.Request) {
	query := queries.ListMarkersQuery{
		SessionID: chi.URLParam(r, "sessionID"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// VerifyChain handles GET /sessions/{sessionID}/markers/verify
func (h *LedgerHandler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	query := queries.VerifyChainQuery{
		SessionID: chi.URLParam(r, "sessionID"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
