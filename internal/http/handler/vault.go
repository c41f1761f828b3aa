package handler

import (
	"net/http"
	"strconv"

	"covault/internal/http/payload"
)

func (h *GovHandler) CreateVaultHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req payload.CreateVaultRequest
	if err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req); err != nil {
		h.respondError(w, r, CreateVault, "invalid request payload", err)
		return
	}

	result, err := h.governance.CreateVault(r.Context(), req.ToCoreConfig(h.actor(r)))
	if err != nil {
		h.respondError(w, r, CreateVault, "could not create vault", err)
		return
	}

	h.respond(w, Response{Message: "vault created", Data: result}, http.StatusCreated, requestID)
}

func (h *GovHandler) GetVaultHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	vault, err := h.governance.GetVault(r.Context(), r.PathValue("vaultId"))
	if err != nil {
		h.respondError(w, r, GetVault, "could not fetch vault", err)
		return
	}

	h.respond(w, Response{Data: vault}, http.StatusOK, requestID)
}

// ListVaultsHandler returns the vaults the authenticated signer participates in.
func (h *GovHandler) ListVaultsHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	vaults, err := h.governance.GetVaultsBySigner(r.Context(), h.actor(r))
	if err != nil {
		h.respondError(w, r, ListVaults, "could not list vaults", err)
		return
	}

	h.respond(w, Response{Data: vaults}, http.StatusOK, requestID)
}

func (h *GovHandler) PrepareDeploymentHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	deployment, err := h.governance.PrepareDeployment(r.Context(), r.PathValue("vaultId"), h.actor(r))
	if err != nil {
		h.respondError(w, r, PrepareDeployment, "could not prepare deployment", err)
		return
	}

	h.respond(w, Response{Message: "deployment prepared", Data: deployment}, http.StatusOK, requestID)
}

func (h *GovHandler) ActivateVaultHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req payload.ActivateVaultRequest
	if err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req); err != nil {
		h.respondError(w, r, ActivateVault, "invalid request payload", err)
		return
	}

	vault, err := h.governance.ActivateVault(r.Context(), r.PathValue("vaultId"), req.TxHash)
	if err != nil {
		h.respondError(w, r, ActivateVault, "could not activate vault", err)
		return
	}

	h.respond(w, Response{Message: "vault activated", Data: vault}, http.StatusOK, requestID)
}

func (h *GovHandler) AddSignerHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req payload.AddSignerRequest
	if err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req); err != nil {
		h.respondError(w, r, AddSigner, "invalid request payload", err)
		return
	}

	cfg := req.Signer
	signer, err := h.governance.AddSigner(r.Context(), r.PathValue("vaultId"), cfg.ToCoreConfig(), h.actor(r))
	if err != nil {
		h.respondError(w, r, AddSigner, "could not add signer", err)
		return
	}

	h.respond(w, Response{Message: "signer added", Data: signer}, http.StatusCreated, requestID)
}

func (h *GovHandler) RemoveSignerHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	err := h.governance.RemoveSigner(r.Context(), r.PathValue("vaultId"), r.PathValue("address"), h.actor(r))
	if err != nil {
		h.respondError(w, r, RemoveSigner, "could not remove signer", err)
		return
	}

	h.respond(w, Response{Message: "signer removed"}, http.StatusOK, requestID)
}

func (h *GovHandler) ListSignersHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	signers, err := h.governance.GetSigners(r.Context(), r.PathValue("vaultId"))
	if err != nil {
		h.respondError(w, r, ListSigners, "could not list signers", err)
		return
	}

	h.respond(w, Response{Data: signers}, http.StatusOK, requestID)
}

func (h *GovHandler) UpdateThresholdHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req payload.UpdateThresholdRequest
	if err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req); err != nil {
		h.respondError(w, r, UpdateThreshold, "invalid request payload", err)
		return
	}

	vault, err := h.governance.UpdateThreshold(r.Context(), r.PathValue("vaultId"), req.NewThreshold, h.actor(r))
	if err != nil {
		h.respondError(w, r, UpdateThreshold, "could not update threshold", err)
		return
	}

	h.respond(w, Response{Message: "threshold updated", Data: vault}, http.StatusOK, requestID)
}

func (h *GovHandler) ListActivityHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respond(w, Response{Error: "limit must be an integer"}, http.StatusBadRequest, requestID)
			return
		}
		limit = parsed
	}

	activity, err := h.governance.GetActivity(r.Context(), r.PathValue("vaultId"), limit)
	if err != nil {
		h.respondError(w, r, ListActivity, "could not list activity", err)
		return
	}

	h.respond(w, Response{Data: activity}, http.StatusOK, requestID)
}
