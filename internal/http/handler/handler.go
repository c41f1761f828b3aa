package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"covault/internal/core"
	"covault/internal/http/handler/middleware"
	"covault/internal/http/payload"

	"go.uber.org/zap"
)

var (
	CreateSession = "POST /v1/session"

	CreateVault       = "POST /v1/vaults"
	GetVault          = "GET /v1/vaults/{vaultId}"
	ListVaults        = "GET /v1/vaults"
	PrepareDeployment = "POST /v1/vaults/{vaultId}/deployment"
	ActivateVault     = "POST /v1/vaults/{vaultId}/activation"

	AddSigner       = "POST /v1/vaults/{vaultId}/signers"
	RemoveSigner    = "DELETE /v1/vaults/{vaultId}/signers/{address}"
	ListSigners     = "GET /v1/vaults/{vaultId}/signers"
	UpdateThreshold = "PUT /v1/vaults/{vaultId}/threshold"

	CreateProposal = "POST /v1/vaults/{vaultId}/proposals"
	ListProposals  = "GET /v1/vaults/{vaultId}/proposals"
	GetProposal    = "GET /v1/proposals/{proposalId}"

	VoteOnProposal   = "POST /v1/proposals/{proposalId}/votes"
	ListVotes        = "GET /v1/proposals/{proposalId}/votes"
	PrepareExecution = "POST /v1/proposals/{proposalId}/execution"
	MarkExecuted     = "POST /v1/proposals/{proposalId}/executed"

	ListActivity = "GET /v1/vaults/{vaultId}/activity"
)

type Response struct {
	Message string      `json:"message,omitempty"` // short message for humans
	Data    interface{} `json:"data,omitempty"`    // actual payload (can be nil)
	Error   string      `json:"error,omitempty"`   // error detail (if any)
}

type GovHandler struct {
	logs             *zap.SugaredLogger
	requestValidator RequestValidator
	governance       GovernanceService
	sessions         SessionIssuer
}

func NewGovHandler(logger *zap.SugaredLogger, requestValidator RequestValidator, governance GovernanceService, sessions SessionIssuer) *GovHandler {
	return &GovHandler{
		logs:             logger,
		requestValidator: requestValidator,
		governance:       governance,
		sessions:         sessions,
	}
}

func (h *GovHandler) respond(w http.ResponseWriter, data any, statusCode int, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logs.Errorw("failed to encode response", "error", err, "request_id", requestID)
	}
}

func (h *GovHandler) requestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func (h *GovHandler) actor(r *http.Request) string {
	if actor, ok := r.Context().Value(middleware.ActorKey).(string); ok {
		return actor
	}
	return ""
}

// statusForError maps the governance error taxonomy to HTTP status codes.
// Quorum and duplicate-vote failures are expected conditions, reported as
// conflicts rather than server errors.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, payload.ErrInvalidPayload),
		errors.Is(err, core.ErrInvalidConfiguration),
		errors.Is(err, core.ErrUnsupportedChain),
		errors.Is(err, core.ErrInvalidProposal):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, core.ErrVaultNotActive),
		errors.Is(err, core.ErrDuplicateVote),
		errors.Is(err, core.ErrInvalidState),
		errors.Is(err, core.ErrInsufficientSignatures):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *GovHandler) respondError(w http.ResponseWriter, r *http.Request, route, message string, err error) {
	requestID := h.requestID(r)
	statusCode := statusForError(err)

	resp := Response{Message: message}
	if statusCode == http.StatusInternalServerError {
		resp.Error = "unexpected error occurred"
	} else {
		resp.Error = err.Error()
	}

	h.respond(w, resp, statusCode, requestID)
	h.logs.Errorw("request failed",
		"error", err,
		"handler", route,
		"request_id", requestID)
}
