package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              TEXT PRIMARY KEY,
    handle          TEXT NOT NULL UNIQUE,
    credential_hash BLOB NOT NULL,
    created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS scores (
    id           TEXT PRIMARY KEY,
    team_name    TEXT NOT NULL,
    category     TEXT NOT NULL,
    score        REAL NOT NULL,
    user_id      TEXT NOT NULL REFERENCES users(id),
    submitted_at TIMESTAMP NOT NULL,
    UNIQUE (user_id, team_name, category)
);

CREATE INDEX IF NOT EXISTS idx_scores_team_name ON scores(team_name);
`

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithClock sets the timestamp source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at dsn, applies pragmas and
// the schema, and returns a ready store. Use ":memory:" for tests.
func NewSQLiteStore(ctx context.Context, dsn string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", dsn, err)
	}
	// SQLite allows a single writer; one connection sidesteps SQLITE_BUSY
	// and keeps :memory: databases on a single handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, stmt := range pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLiteStore{
		db:  db,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// CreateUser inserts a new user, translating the handle uniqueness
// violation into ErrDuplicateHandle.
func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, handle, credential_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.Handle, u.CredentialHash, u.CreatedAt)
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if isUniqueViolation(err, "users.handle") {
			return ErrDuplicateHandle
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByHandle looks up a user by handle.
func (s *SQLiteStore) UserByHandle(ctx context.Context, handle string) (model.User, error) {
	start := time.Now()
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, handle, credential_hash, created_at
		FROM users WHERE handle = ?
	`, handle).Scan(&u.ID, &u.Handle, &u.CredentialHash, &u.CreatedAt)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// UpsertScores writes one vote batch in a single transaction. The UNIQUE
// (user_id, team_name, category) constraint turns a resubmission into an
// in-place overwrite of score and submitted_at.
func (s *SQLiteStore) UpsertScores(ctx context.Context, userID, teamName string, scores map[string]float64) error {
	if len(scores) == 0 {
		return ErrEmptyBatch
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Deterministic write order keeps transactions from two batches of the
	// same user comparable in tests and logs.
	categories := make([]string, 0, len(scores))
	for category := range scores {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	at := s.now().UTC()
	for _, category := range categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scores (id, team_name, category, score, user_id, submitted_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, team_name, category)
			DO UPDATE SET score = excluded.score, submitted_at = excluded.submitted_at
		`, uuid.NewString(), teamName, category, scores[category], userID, at)
		if err != nil {
			return fmt.Errorf("upsert score for %q/%q: %w", teamName, category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit vote batch: %w", err)
	}
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordScoresUpserted(len(scores))
	return nil
}

// AllScores returns every score record.
func (s *SQLiteStore) AllScores(ctx context.Context) ([]model.ScoreRecord, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, team_name, category, score, user_id, submitted_at
		FROM scores
	`)
	if err != nil {
		return nil, fmt.Errorf("select scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]model.ScoreRecord, 0)
	for rows.Next() {
		var r model.ScoreRecord
		if err := rows.Scan(&r.ID, &r.TeamName, &r.Category, &r.Score, &r.UserID, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return records, nil
}

// Stats returns row counts for monitoring.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(DISTINCT team_name) FROM scores),
			(SELECT COUNT(*) FROM scores)
	`).Scan(&st.Users, &st.Teams, &st.Scores)
	if err != nil {
		return Stats{}, fmt.Errorf("count rows: %w", err)
	}
	return st, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on the
// given column. The driver exposes constraint errors as text only.
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
