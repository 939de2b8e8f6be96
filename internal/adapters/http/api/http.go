// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/podium/internal/app"
	identity "github.com/okian/podium/internal/domain/identity"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/token"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TokenVerifier

	// Register creates a user; Login resolves credentials to a session.
	Register(ctx context.Context, handle, password string) (model.User, error)
	Login(ctx context.Context, handle, password string) (identity.Session, error)

	// SubmitVotes persists one vote batch for the authenticated caller.
	SubmitVotes(ctx context.Context, userID, teamName string, votes map[string]float64) error

	// Results exposes the ranked leaderboard.
	Results(ctx context.Context) ([]model.TeamResult, error)
}

// TokenVerifier resolves bearer tokens to claims.
type TokenVerifier interface {
	VerifyToken(raw string) (*token.Claims, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	authHandler    *AuthHandler
	voteHandler    *VoteHandler
	resultsHandler *ResultsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		authHandler:    NewAuthHandler(deps),
		voteHandler:    NewVoteHandler(deps),
		resultsHandler: NewResultsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/register", MetricsMiddleware(s.authHandler.HandleRegister, "register"))
	mux.HandleFunc("/login", MetricsMiddleware(s.authHandler.HandleLogin, "login"))
	mux.HandleFunc("/vote", MetricsMiddleware(RequireAuth(deps, s.voteHandler.HandleSubmitVote), "vote"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandleGetResults, "results"))
}

// credentialsRequest is the body of POST /register and POST /login.
type credentialsRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

func (c credentialsRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Handle) == "":
		return errors.New("missing handle")
	case strings.TrimSpace(c.Password) == "":
		return errors.New("missing password")
	}
	return nil
}

// voteRequest mirrors the OpenAPI schema for POST /vote.
type voteRequest struct {
	TeamName string             `json:"teamName"`
	Votes    map[string]float64 `json:"votes"`
}

func (v voteRequest) validate() error {
	switch {
	case strings.TrimSpace(v.TeamName) == "":
		return errors.New("missing teamName")
	case len(v.Votes) == 0:
		return errors.New("missing votes")
	}
	return nil
}

type registerResponse struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Handle string `json:"handle"`
}

type voteResponse struct {
	Status     string `json:"status"`
	TeamName   string `json:"teamName"`
	Categories int    `json:"categories"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates known domain errors into stable status codes
// and machine-readable error codes; anything unknown becomes a generic 500.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, identity.ErrDuplicateHandle):
		writeError(w, http.StatusBadRequest, "duplicate_handle", Wrap(op, err))
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", Wrap(op, err))
	case errors.Is(err, identity.ErrBlankCredentials):
		writeError(w, http.StatusBadRequest, "validation_failed", Wrap(op, err))
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", Wrap(op, err))
	case errors.Is(err, service.ErrStorage):
		// Commit details stay in the logs; the caller just resubmits.
		writeError(w, http.StatusInternalServerError, "storage_failed", NewKind(op, service.ErrStorage))
	case errors.Is(err, token.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthenticated", NewKind(op, ErrUnauthenticated))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
