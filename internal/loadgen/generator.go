package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/podium/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	profileDivisor     = 6
)

// Constants for score generation ranges.
const (
	avgScorerMin     = 3.0
	avgScorerRange   = 4.0
	highScorerMin    = 7.0
	highScorerRange  = 2.0
	lowScorerMin     = 0.1
	lowScorerRange   = 2.9
	topScorerMin     = 9.0
	topScorerRange   = 1.0
	harshScorerMin   = 0.1
	harshScorerRange = 0.9
	wideRangeMin     = 0.1
	wideRange        = 9.9
)

// Constants for scoring profile cases.
const (
	caseAverageScorer = 0
	caseHighScorer    = 1
	caseLowScorer     = 2
	caseTopScorer     = 3
	caseHarshScorer   = 4
	caseWideRange     = 5
)

// categories is the judging sheet used for generated batches.
var categories = []string{
	"Originality",
	"Design",
	"Usefulness",
	"Coded Project",
	"Market Product",
	"Feasibility",
	"Pitch",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateJudges creates judges with unique handles.
func generateJudges(ctx context.Context, config *Config) []Judge {
	logger.Get().Info(ctx, "generating judges with unique handles", logger.Int("numJudges", config.NumJudges))

	judges := make([]Judge, config.NumJudges)
	for i := range judges {
		judges[i] = Judge{
			Handle:   "judge-" + uuid.New().String(),
			Password: uuid.New().String(),
		}
	}
	return judges
}

// teamNames returns deterministic team names so repeated runs against the
// same database exercise the overwrite path.
func teamNames(numTeams int) []string {
	names := make([]string, numTeams)
	for i := range names {
		names[i] = fmt.Sprintf("team-%03d", i+1)
	}
	return names
}

// generateBatches creates one vote batch per (judge, team) pair.
func generateBatches(ctx context.Context, config *Config, judges []Judge, stats *Stats) []VoteBatch {
	teams := teamNames(config.NumTeams)
	batches := make([]VoteBatch, 0, len(judges)*len(teams))

	for j := range judges {
		for _, team := range teams {
			votes := make(map[string]float64, len(categories))
			for _, category := range categories {
				votes[category] = generateVariedScore()
			}
			batches = append(batches, VoteBatch{
				JudgeIndex: j,
				TeamName:   team,
				Votes:      votes,
			})
		}
	}

	stats.BatchesGenerated = len(batches)
	logger.Get().Info(ctx, "generated vote batches", logger.Int("count", len(batches)))
	return batches
}

// generateVariedScore creates a score with varied distribution so the
// leaderboard spreads out instead of clustering around the mean.
func generateVariedScore() float64 {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(profileDivisor))
	switch randNum.Int64() {
	case caseAverageScorer:
		return avgScorerMin + getRandomFloat()*avgScorerRange
	case caseHighScorer:
		return highScorerMin + getRandomFloat()*highScorerRange
	case caseLowScorer:
		return lowScorerMin + getRandomFloat()*lowScorerRange
	case caseTopScorer:
		return topScorerMin + getRandomFloat()*topScorerRange
	case caseHarshScorer:
		return harshScorerMin + getRandomFloat()*harshScorerRange
	case caseWideRange:
		return wideRangeMin + getRandomFloat()*wideRange
	default:
		return wideRangeMin + getRandomFloat()*wideRange
	}
}
