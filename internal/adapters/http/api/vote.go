// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// VoteHandler handles vote submission requests.
type VoteHandler struct {
	deps Dependencies
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(deps Dependencies) *VoteHandler {
	return &VoteHandler{deps: deps}
}

// HandleSubmitVote handles POST /vote requests. The route is wrapped by
// RequireAuth, so the caller identity is always present in the context.
func (h *VoteHandler) HandleSubmitVote(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_vote"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", NewKind(op, ErrUnauthenticated))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Normalize once here so the response echoes the name the leaderboard
	// will show, not whatever padding the caller sent.
	teamName := strings.TrimSpace(req.TeamName)
	if err := h.deps.SubmitVotes(r.Context(), claims.UserID, teamName, req.Votes); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{
		Status:     "recorded",
		TeamName:   teamName,
		Categories: len(req.Votes),
	})
}
