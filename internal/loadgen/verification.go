package loadgen

import (
	"fmt"
	"log"
)

// verifyResults checks the leaderboard against what the generated load
// implies: one entry per team, every judge counted, ordering intact.
func verifyResults(config *Config, results []TeamResult, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(results) == 0 {
		return fmt.Errorf("no results to verify")
	}

	if len(results) != config.NumTeams {
		return fmt.Errorf("expected %d teams in results, got %d", config.NumTeams, len(results))
	}

	if err := verifyOrdering(results); err != nil {
		return err
	}
	log.Println("✅ Leaderboard ordering verified")

	for _, r := range results {
		if r.VoterCount != config.NumJudges {
			return fmt.Errorf("team %s counts %d voters, expected %d", r.TeamName, r.VoterCount, config.NumJudges)
		}
	}
	log.Println("✅ Voter counts verified")

	displayTopTeams(results, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyOrdering checks total score descending with name-ascending ties.
func verifyOrdering(results []TeamResult) error {
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if cur.TotalScore > prev.TotalScore {
			return fmt.Errorf("results not sorted: %s (%.2f) ranks below %s (%.2f)",
				prev.TeamName, prev.TotalScore, cur.TeamName, cur.TotalScore)
		}
		if cur.TotalScore == prev.TotalScore && cur.TeamName < prev.TeamName {
			return fmt.Errorf("tie between %s and %s not broken by name", prev.TeamName, cur.TeamName)
		}
	}
	return nil
}

// displayTopTeams shows the top of the leaderboard.
func displayTopTeams(results []TeamResult, verbose bool) {
	topN := 10
	if len(results) < topN {
		topN = len(results)
	}

	log.Printf("🏆 Top %d teams:", topN)
	for i := 0; i < topN; i++ {
		entry := results[i]
		log.Printf("   %d. %s - Total: %.2f (voters: %d)", i+1, entry.TeamName, entry.TotalScore, entry.VoterCount)
	}

	if verbose {
		if len(results) > 0 {
			avgTotal := calculateAverageTotal(results)
			maxTotal := results[0].TotalScore
			minTotal := results[len(results)-1].TotalScore

			log.Printf(`📊 Total score statistics:
   Average: %.2f
   Maximum: %.2f
   Minimum: %.2f
`, avgTotal, maxTotal, minTotal)
		}
	}
}

// calculateAverageTotal calculates the average total score.
func calculateAverageTotal(results []TeamResult) float64 {
	if len(results) == 0 {
		return 0
	}

	sum := 0.0
	for _, entry := range results {
		sum += entry.TotalScore
	}

	return sum / float64(len(results))
}
