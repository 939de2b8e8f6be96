// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	repository "github.com/okian/podium/internal/adapters/repository"
	identity "github.com/okian/podium/internal/domain/identity"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
	"github.com/okian/podium/pkg/token"
)

// Service implements the API dependencies for the voting system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	identity *identity.Manager
	agg      *scoring.Aggregator
	issuer   *token.Issuer

	// Configuration
	dbPath        string
	tokenSecret   string
	tokenTTL      time.Duration
	bcryptCost    int
	weights       map[string]float64
	defaultWeight float64
	scoreMin      float64
	scoreMax      float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDBPath sets the SQLite database location.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithStore injects a pre-built store, bypassing Start's SQLite setup.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithTokenSecret sets the bearer token signing secret.
func WithTokenSecret(secret string) Option {
	return func(s *Service) {
		if secret != "" {
			s.tokenSecret = secret
		}
	}
}

// WithTokenTTL sets the bearer token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithBcryptCost sets the credential hashing work factor.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost > 0 {
			s.bcryptCost = cost
		}
	}
}

// WithCategoryWeights sets the category weights for the leaderboard.
func WithCategoryWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.weights = weights
	}
}

// WithDefaultCategoryWeight sets the weight for unlisted categories.
func WithDefaultCategoryWeight(weight float64) Option {
	return func(s *Service) {
		s.defaultWeight = weight
	}
}

// WithScoreBounds sets the accepted score range.
func WithScoreBounds(minScore, maxScore float64) Option {
	return func(s *Service) {
		if minScore < maxScore {
			s.scoreMin = minScore
			s.scoreMax = maxScore
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:        "podium.db",
		tokenSecret:   "podium-dev-secret",
		tokenTTL:      24 * time.Hour,
		bcryptCost:    10,
		weights:       map[string]float64{},
		defaultWeight: 1.0,
		scoreMin:      0,
		scoreMax:      10,
		logger:        nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting voting service...")

	if s.store == nil {
		store, err := repository.NewSQLiteStore(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using sqlite store", logger.String("dbPath", s.dbPath))
	}

	s.issuer = token.NewIssuer(s.tokenSecret, token.WithTTL(s.tokenTTL))
	s.identity = identity.NewManager(s.store, s.issuer,
		identity.WithBcryptCost(s.bcryptCost),
	)
	s.agg = scoring.NewAggregator(
		scoring.WithCategoryWeights(s.weights, s.defaultWeight),
	)

	s.started = true
	s.logger.Info(ctx, "voting service started",
		logger.Int("categoryWeights", len(s.weights)),
		logger.Duration("tokenTTL", s.tokenTTL),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping voting service...")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(context.Background(), "store close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "voting service stopped")
}

// Register creates a new user for the given handle.
func (s *Service) Register(ctx context.Context, handle, password string) (model.User, error) {
	u, err := s.identity.Register(ctx, handle, password)
	if err != nil {
		metrics.RecordAuthFailure()
		return model.User{}, err
	}
	metrics.RecordRegistration()
	s.logger.Info(ctx, "user registered", logger.String("handle", u.Handle))
	return u, nil
}

// Login verifies credentials and returns a signed session.
func (s *Service) Login(ctx context.Context, handle, password string) (identity.Session, error) {
	sess, err := s.identity.Login(ctx, handle, password)
	if err != nil {
		metrics.RecordAuthFailure()
		return identity.Session{}, err
	}
	metrics.RecordLogin()
	s.logger.Debug(ctx, "login succeeded", logger.String("handle", sess.Handle))
	return sess, nil
}

// VerifyToken resolves a bearer token to its claims.
func (s *Service) VerifyToken(raw string) (*token.Claims, error) {
	claims, err := s.issuer.Verify(raw)
	if err != nil {
		metrics.RecordAuthFailure()
		return nil, err
	}
	return claims, nil
}

// SubmitVotes validates and persists one vote batch for the caller. The
// batch is all-or-nothing: the first invalid input rejects the whole batch
// and nothing is persisted.
func (s *Service) SubmitVotes(ctx context.Context, userID, teamName string, votes map[string]float64) error {
	teamName = strings.TrimSpace(teamName)
	if err := s.validateBatch(teamName, votes); err != nil {
		metrics.RecordVoteBatchFailed()
		return err
	}

	if err := s.store.UpsertScores(ctx, userID, teamName, votes); err != nil {
		metrics.RecordVoteBatchFailed()
		s.logger.Error(ctx, "vote batch rejected by store",
			logger.String("teamName", teamName),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	metrics.RecordVoteBatch()
	s.logger.Info(ctx, "vote batch recorded",
		logger.String("teamName", teamName),
		logger.Int("categories", len(votes)),
	)
	return nil
}

// validateBatch checks a vote batch against the validation policy. The team
// name is already trimmed by the caller. Errors wrap ErrValidation and name
// the failing input.
func (s *Service) validateBatch(teamName string, votes map[string]float64) error {
	if teamName == "" {
		return fmt.Errorf("%w: missing team name", ErrValidation)
	}
	if len(votes) == 0 {
		return fmt.Errorf("%w: empty vote batch", ErrValidation)
	}
	for category, score := range votes {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("%w: empty category label", ErrValidation)
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return fmt.Errorf("%w: score for %q is not a number", ErrValidation, category)
		}
		if score < s.scoreMin || score > s.scoreMax {
			return fmt.Errorf("%w: score %.2f for %q outside [%.0f, %.0f]",
				ErrValidation, score, category, s.scoreMin, s.scoreMax)
		}
	}
	return nil
}

// Results computes the current leaderboard: one entry per team, sorted by
// total weighted score descending. Pure with respect to the score set.
func (s *Service) Results(ctx context.Context) ([]model.TeamResult, error) {
	start := time.Now()
	records, err := s.store.AllScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	results := make([]model.TeamResult, 0)
	for r := range s.agg.Results(records) {
		results = append(results, r)
	}

	metrics.RecordResultsComputeDuration(float64(time.Since(start).Milliseconds()))
	metrics.RecordResultsServed()
	return results, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}

	if s.started {
		st, err := s.store.Stats(context.Background())
		if err == nil {
			stats["totalUsers"] = st.Users
			stats["totalTeams"] = st.Teams
			stats["totalScores"] = st.Scores

			metrics.UpdateTotalUsers(st.Users)
			metrics.UpdateTotalTeams(st.Teams)
			metrics.UpdateTotalScores(st.Scores)
		}
	}

	return stats
}
