package handler

import (
	"net/http"

	"covault/internal/http/payload"
)

func (h *GovHandler) CreateProposalHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req payload.CreateProposalRequest
	if err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req); err != nil {
		h.respondError(w, r, CreateProposal, "invalid request payload", err)
		return
	}

	proposal, err := h.governance.CreateProposal(r.Context(), req.ToCoreConfig(r.PathValue("vaultId"), h.actor(r)))
	if err != nil {
		h.respondError(w, r, CreateProposal, "could not create proposal", err)
		return
	}

	h.respond(w, Response{Message: "proposal created", Data: proposal}, http.StatusCreated, requestID)
}

func (h *GovHandler) ListProposalsHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	proposals, err := h.governance.GetProposals(r.Context(), r.PathValue("vaultId"))
	if err != nil {
		h.respondError(w, r, ListProposals, "could not list proposals", err)
		return
	}

	h.respond(w, Response{Data: proposals}, http.StatusOK, requestID)
}

func (h *GovHandler) GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	proposal, err := h.governance.GetProposal(r.Context(), r.PathValue("proposalId"))
	if err != nil {
		h.respondError(w, r, GetProposal, "could not fetch proposal", err)
		return
	}

	h.respond(w, Response{Data: proposal}, http.StatusOK, requestID)
}

func (h *GovHandler) VoteOnProposalHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req payload.VoteRequest
	if err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req); err != nil {
		h.respondError(w, r, VoteOnProposal, "invalid request payload", err)
		return
	}

	result, err := h.governance.VoteOnProposal(r.Context(), r.PathValue("proposalId"), h.actor(r), req.Vote, req.Signature)
	if err != nil {
		h.respondError(w, r, VoteOnProposal, "could not record vote", err)
		return
	}

	h.respond(w, Response{Message: "vote recorded", Data: result}, http.StatusOK, requestID)
}

func (h *GovHandler) ListVotesHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	votes, err := h.governance.GetVotes(r.Context(), r.PathValue("proposalId"))
	if err != nil {
		h.respondError(w, r, ListVotes, "could not list votes", err)
		return
	}

	h.respond(w, Response{Data: votes}, http.StatusOK, requestID)
}

func (h *GovHandler) PrepareExecutionHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	pkg, err := h.governance.PrepareExecution(r.Context(), r.PathValue("proposalId"), h.actor(r))
	if err != nil {
		h.respondError(w, r, PrepareExecution, "could not prepare execution", err)
		return
	}

	h.respond(w, Response{Message: "execution prepared", Data: pkg}, http.StatusOK, requestID)
}

func (h *GovHandler) MarkExecutedHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req payload.MarkExecutedRequest
	if err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req); err != nil {
		h.respondError(w, r, MarkExecuted, "invalid request payload", err)
		return
	}

	proposal, err := h.governance.MarkExecuted(r.Context(), r.PathValue("proposalId"), h.actor(r), req.TxHash)
	if err != nil {
		h.respondError(w, r, MarkExecuted, "could not mark proposal executed", err)
		return
	}

	h.respond(w, Response{Message: "proposal executed", Data: proposal}, http.StatusOK, requestID)
}
