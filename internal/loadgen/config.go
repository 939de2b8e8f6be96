package loadgen

import "time"

// Config holds configuration for the voting load test
type Config struct {
	BaseURL       string        // Base URL of the service
	NumJudges     int           // Number of judges to register
	NumTeams      int           // Number of teams to vote on
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	OutputFile    string        // Output file for generated batches
	LogFile       string        // Log file for test output
	Verbose       bool          // Enable verbose logging
	ResubmitShare float64       // Fraction of batches submitted twice to exercise overwrites
}

// Judge represents a registered voter with an active session
type Judge struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
	UserID   string `json:"userId,omitempty"`
	Token    string `json:"-"`
}

// VoteBatch represents one batch to submit
type VoteBatch struct {
	JudgeIndex int                `json:"judgeIndex"`
	TeamName   string             `json:"teamName"`
	Votes      map[string]float64 `json:"votes"`
}

// TeamResult mirrors the leaderboard entry returned by /results
type TeamResult struct {
	TeamName   string             `json:"teamName"`
	Scores     map[string]float64 `json:"scores"`
	TotalScore float64            `json:"totalScore"`
	VoterCount int                `json:"voterCount"`
}

// Stats holds test statistics
type Stats struct {
	JudgesRegistered int
	JudgesLoggedIn   int
	BatchesGenerated int
	BatchesSubmitted int
	BatchesSuccess   int
	BatchesFailed    int
	Resubmissions    int
	ResultEntries    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
