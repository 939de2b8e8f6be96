// Package model contains domain models passed between layers.
package model

import "time"

// User is a registered judge. The handle is unique and immutable; the
// credential hash is a bcrypt digest and never leaves the storage layer
// except for comparison during login.
type User struct {
	ID             string
	Handle         string
	CredentialHash []byte
	CreatedAt      time.Time
}

// ScoreRecord is one user's score for one team in one category.
// At most one record exists per (UserID, TeamName, Category) triple;
// resubmission overwrites Score and SubmittedAt in place.
type ScoreRecord struct {
	ID          string
	TeamName    string
	Category    string
	Score       float64
	UserID      string
	SubmittedAt time.Time
}

// TeamResult is the derived leaderboard row for one team. It is computed
// fresh on every read and never persisted.
type TeamResult struct {
	TeamName   string             `json:"teamName"`
	Scores     map[string]float64 `json:"scores"`
	TotalScore float64            `json:"totalScore"`
	VoterCount int                `json:"voterCount"`
}
