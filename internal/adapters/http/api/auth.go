// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	deps Dependencies
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps Dependencies) *AuthHandler {
	return &AuthHandler{deps: deps}
}

// HandleRegister handles POST /register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", WrapKind(op, ErrBadRequest, err))
		return
	}

	u, err := h.deps.Register(r.Context(), req.Handle, req.Password)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{ID: u.ID, Handle: u.Handle})
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", WrapKind(op, ErrBadRequest, err))
		return
	}

	sess, err := h.deps.Login(r.Context(), req.Handle, req.Password)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, Handle: sess.Handle})
}
