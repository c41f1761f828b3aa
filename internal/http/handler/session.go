package handler

import (
	"net/http"

	"covault/internal/http/payload"
	tokenIssuer "covault/pkg/jwt"
)

const sessionTTLHours = 24

func (h *GovHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req payload.SessionRequest
	if err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req); err != nil {
		h.respondError(w, r, CreateSession, "invalid request payload", err)
		return
	}

	token := h.sessions.Generate(tokenIssuer.TokenInfo{
		Address:    req.Address,
		Expiration: sessionTTLHours,
	})

	signed, err := h.sessions.Sign(token)
	if err != nil {
		h.respondError(w, r, CreateSession, "could not issue session token", err)
		return
	}

	resp := Response{
		Message: "session created",
		Data: map[string]string{
			"token":   signed,
			"address": req.Address,
		},
	}
	h.respond(w, resp, http.StatusOK, requestID)
}
