package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"simkernel/application/commands"
	"simkernel/application/commands/bus"
	"simkernel/application/queries"
	querybus "simkernel/application/queries/bus"
	"simkernel/domain/core/validators"
	"simkernel/pkg/common"
	pkgerrors "simkernel/pkg/errors"
	"simkernel/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionHandler handles session draft and commit HTTP requests
type SessionHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// StageScalarsRequest is the page-1 request body
type StageScalarsRequest struct {
	MassMod        *float64 `json:"mass_mod,omitempty"`
	VolumeOverride *float64 `json:"volume_override,omitempty"`
}

// StageOpsRequest is the page-2 request body
type StageOpsRequest struct {
	Ops []validators.RawNodeOp `json:"ops" validate:"required,min=1"`
}

// StageAllocationsRequest is the page-3 request body
type StageAllocationsRequest struct {
	Allocations map[string]float64 `json:"allocations" validate:"required,min=1"`
}

// StageDraft handles PUT /sessions/{sessionID}/draft/{page}
func (h *SessionHandler) StageDraft(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 || page > 3 {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "page must be 1, 2 or 3")
		return
	}

	cmd := commands.StageDraftCommand{
		SessionID: sessionID,
		Page:      page,
	}

	switch page {
	case 1:
		var req StageScalarsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		cmd.Scalars = &commands.ScalarsPatch{
			MassMod:        req.MassMod,
			VolumeOverride: req.VolumeOverride,
		}
	case 2:
		var req StageOpsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		cmd.Ops = req.Ops
	case 3:
		var req StageAllocationsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		cmd.Allocations = req.Allocations
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// CommitSession handles POST /sessions/{sessionID}/commit
func (h *SessionHandler) CommitSession(w http.ResponseWriter, r *http.Request) {
	cmd := commands.CommitSessionCommand{
		SessionID: chi.URLParam(r, "sessionID"),
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetSessionState handles GET /sessions/{sessionID}
func (h *SessionHandler) GetSessionState(w http.ResponseWriter, r *http.Request) {
	query := queries.GetSessionStateQuery{
		SessionID: chi.URLParam(r, "sessionID"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
