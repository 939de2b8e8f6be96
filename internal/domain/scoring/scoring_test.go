package scoring_test

import (
	"testing"

	"github.com/okian/podium/internal/domain/model"
	scoring "github.com/okian/podium/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func defaultWeights() map[string]float64 {
	return map[string]float64{
		"Originality":    1.5,
		"Design":         1.2,
		"Usefulness":     1.0,
		"Coded Project":  1.5,
		"Market Product": 1.3,
		"Feasibility":    1.4,
		"Pitch":          1.1,
	}
}

func collect(agg *scoring.Aggregator, records []model.ScoreRecord) []model.TeamResult {
	out := make([]model.TeamResult, 0)
	for r := range agg.Results(records) {
		out = append(out, r)
	}
	return out
}

func TestAggregator_Results(t *testing.T) {
	Convey("Given an aggregator with the standard weight table", t, func() {
		agg := scoring.NewAggregator(
			scoring.WithCategoryWeights(defaultWeights(), 1.0),
		)

		Convey("When two users score the same team", func() {
			records := []model.ScoreRecord{
				{TeamName: "Alpha", Category: "Design", Score: 8, UserID: "user-a"},
				{TeamName: "Alpha", Category: "Pitch", Score: 6, UserID: "user-a"},
				{TeamName: "Alpha", Category: "Design", Score: 10, UserID: "user-b"},
			}
			results := collect(agg, records)

			Convey("Then category averages and the weighted total should match", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].TeamName, ShouldEqual, "Alpha")
				So(results[0].Scores["Design"], ShouldEqual, 9.0)
				So(results[0].Scores["Pitch"], ShouldEqual, 6.0)
				// 9.0*1.2 + 6.0*1.1 = 17.4
				So(results[0].TotalScore, ShouldEqual, 17.4)
			})

			Convey("And the voter count should deduplicate across categories", func() {
				So(results[0].VoterCount, ShouldEqual, 2)
			})
		})

		Convey("When a user's score is overwritten by resubmission", func() {
			// The ledger keeps one record per triple; the aggregator only
			// ever sees the latest value.
			records := []model.ScoreRecord{
				{TeamName: "Alpha", Category: "Design", Score: 4, UserID: "user-a"},
				{TeamName: "Alpha", Category: "Design", Score: 10, UserID: "user-b"},
			}
			results := collect(agg, records)

			Convey("Then the average should reflect the replacement, not an addition", func() {
				So(results[0].Scores["Design"], ShouldEqual, 7.0)
			})
		})

		Convey("When a category is absent from the weight table", func() {
			records := []model.ScoreRecord{
				{TeamName: "Beta", Category: "Snacks", Score: 5, UserID: "user-a"},
			}
			results := collect(agg, records)

			Convey("Then it should contribute with weight 1.0", func() {
				So(results[0].TotalScore, ShouldEqual, 5.0)
			})
		})

		Convey("When several teams have different totals", func() {
			records := []model.ScoreRecord{
				{TeamName: "Low", Category: "Usefulness", Score: 2, UserID: "u1"},
				{TeamName: "High", Category: "Usefulness", Score: 9, UserID: "u1"},
				{TeamName: "Mid", Category: "Usefulness", Score: 5, UserID: "u2"},
			}
			results := collect(agg, records)

			Convey("Then results should be sorted by total score descending", func() {
				So(results, ShouldHaveLength, 3)
				So(results[0].TeamName, ShouldEqual, "High")
				So(results[1].TeamName, ShouldEqual, "Mid")
				So(results[2].TeamName, ShouldEqual, "Low")
			})
		})

		Convey("When two teams tie on total score", func() {
			records := []model.ScoreRecord{
				{TeamName: "Zebra", Category: "Usefulness", Score: 5, UserID: "u1"},
				{TeamName: "Aardvark", Category: "Usefulness", Score: 5, UserID: "u2"},
			}
			results := collect(agg, records)

			Convey("Then ties should break by team name ascending", func() {
				So(results[0].TeamName, ShouldEqual, "Aardvark")
				So(results[1].TeamName, ShouldEqual, "Zebra")
			})
		})

		Convey("When there are no records", func() {
			results := collect(agg, nil)

			Convey("Then the sequence should be empty", func() {
				So(results, ShouldBeEmpty)
			})
		})

		Convey("When the sequence is ranged twice", func() {
			records := []model.ScoreRecord{
				{TeamName: "Alpha", Category: "Design", Score: 8, UserID: "u1"},
			}
			seq := agg.Results(records)
			first := 0
			for range seq {
				first++
			}
			second := 0
			for range seq {
				second++
			}

			Convey("Then it should be restartable", func() {
				So(first, ShouldEqual, 1)
				So(second, ShouldEqual, 1)
			})
		})
	})
}

func TestRound2(t *testing.T) {
	Convey("Given the two-decimal rounding helper", t, func() {
		Convey("Then halves should round away from zero", func() {
			// 0.125 is exactly representable, so the half is a true half.
			So(scoring.Round2(0.125), ShouldEqual, 0.13)
			So(scoring.Round2(-0.125), ShouldEqual, -0.13)
		})

		Convey("And ordinary values should round to two decimals", func() {
			So(scoring.Round2(17.404), ShouldEqual, 17.4)
			So(scoring.Round2(17.4), ShouldEqual, 17.4)
		})
	})
}

func TestAggregator_Weight(t *testing.T) {
	Convey("Given an aggregator with a custom default weight", t, func() {
		agg := scoring.NewAggregator(
			scoring.WithCategoryWeights(map[string]float64{"Pitch": 1.1}, 2.0),
		)

		Convey("Then known categories should use the table", func() {
			So(agg.Weight("Pitch"), ShouldEqual, 1.1)
		})

		Convey("And unknown categories should use the default", func() {
			So(agg.Weight("Unknown"), ShouldEqual, 2.0)
		})
	})
}
