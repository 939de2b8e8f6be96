// Package repository defines the durable store interface and errors.
package repository

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// Stats summarizes the store contents for the stats endpoint and gauges.
type Stats struct {
	Users  int
	Teams  int
	Scores int
}

// Store provides durable access to users and score records. The schema is
// the correctness backstop: handle uniqueness and the one-record-per
// (user, team, category) invariant are both enforced at this layer.
type Store interface {
	// CreateUser inserts a new user. Returns ErrDuplicateHandle if the
	// handle is already taken; the existing record is left untouched.
	CreateUser(ctx context.Context, u model.User) error

	// UserByHandle returns the user owning handle, or ErrNotFound.
	UserByHandle(ctx context.Context, handle string) (model.User, error)

	// UpsertScores applies one vote batch atomically: for each category,
	// insert a new record or overwrite the existing (userID, teamName,
	// category) record in place. Either the whole batch commits or none
	// of it does.
	UpsertScores(ctx context.Context, userID, teamName string, scores map[string]float64) error

	// AllScores returns a snapshot of every score record. Read-committed:
	// concurrent writers may land between calls but never corrupt a read.
	AllScores(ctx context.Context) ([]model.ScoreRecord, error)

	// Stats returns row counts for monitoring.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the underlying database handle.
	Close() error
}
