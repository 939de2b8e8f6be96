// Package scoring computes weighted team aggregates from score records.
package scoring

import (
	"iter"
	"math"
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// Default weight applied to categories absent from the weight table.
const defaultCategoryWeight = 1.0

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithCategoryWeights sets category weights from a configuration map.
// Non-positive entries are ignored and the category falls back to the
// default weight; a zero weight is not a way to exclude a category.
func WithCategoryWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(a *Aggregator) {
		// Copy the weights map to avoid external modifications
		a.weights = make(map[string]float64, len(weights))
		for category, weight := range weights {
			if weight > 0 {
				a.weights[category] = weight
			}
		}
		if defaultWeight > 0 {
			a.defaultWeight = defaultWeight
		}
	}
}

// Aggregator turns the current score record set into ranked team results.
// It holds only the fixed weight table; every computation is pure with
// respect to the records passed in.
type Aggregator struct {
	weights       map[string]float64
	defaultWeight float64
}

// NewAggregator creates an aggregator with configuration options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		weights:       make(map[string]float64),
		defaultWeight: defaultCategoryWeight,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Weight returns the configured weight for a category, falling back to the
// default for categories not in the table.
func (a *Aggregator) Weight(category string) float64 {
	if w, ok := a.weights[category]; ok {
		return w
	}
	return a.defaultWeight
}

// sums accumulates per-category totals for one team while records stream by.
type sums struct {
	total  map[string]float64
	count  map[string]int
	voters map[string]struct{}
}

// Results returns the ranked leaderboard as a restartable sequence: one
// TeamResult per distinct team, ordered by total weighted score descending,
// ties broken by team name ascending. Each range over the sequence
// recomputes nothing; the aggregation happens once per Results call, so
// callers that need a fresh view call Results again.
func (a *Aggregator) Results(records []model.ScoreRecord) iter.Seq[model.TeamResult] {
	byTeam := make(map[string]*sums)
	order := make([]string, 0)

	for _, r := range records {
		s, ok := byTeam[r.TeamName]
		if !ok {
			s = &sums{
				total:  make(map[string]float64),
				count:  make(map[string]int),
				voters: make(map[string]struct{}),
			}
			byTeam[r.TeamName] = s
			order = append(order, r.TeamName)
		}
		s.total[r.Category] += r.Score
		s.count[r.Category]++
		s.voters[r.UserID] = struct{}{}
	}

	results := make([]model.TeamResult, 0, len(order))
	for _, team := range order {
		s := byTeam[team]
		averages := make(map[string]float64, len(s.total))
		total := 0.0
		for category, sum := range s.total {
			avg := sum / float64(s.count[category])
			averages[category] = avg
			total += avg * a.Weight(category)
		}
		results = append(results, model.TeamResult{
			TeamName:   team,
			Scores:     averages,
			TotalScore: Round2(total),
			VoterCount: len(s.voters),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].TeamName < results[j].TeamName
	})

	return func(yield func(model.TeamResult) bool) {
		for _, r := range results {
			if !yield(r) {
				return
			}
		}
	}
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
