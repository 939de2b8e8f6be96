package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newUser(handle string) model.User {
	return model.User{
		ID:             uuid.NewString(),
		Handle:         handle,
		CredentialHash: []byte("$2a$10$fakefakefakefakefakefak"),
		CreatedAt:      time.Now().UTC(),
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := newStore(t)

		Convey("When creating and fetching a user", func() {
			u := newUser("alice")
			So(store.CreateUser(ctx, u), ShouldBeNil)

			got, err := store.UserByHandle(ctx, "alice")

			Convey("Then the record should round-trip", func() {
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, u.ID)
				So(got.Handle, ShouldEqual, "alice")
				So(string(got.CredentialHash), ShouldEqual, string(u.CredentialHash))
			})
		})

		Convey("When registering the same handle twice", func() {
			first := newUser("bob")
			So(store.CreateUser(ctx, first), ShouldBeNil)

			err := store.CreateUser(ctx, newUser("bob"))

			Convey("Then the second insert should fail with ErrDuplicateHandle", func() {
				So(err, ShouldEqual, repository.ErrDuplicateHandle)
			})

			Convey("And the original credential hash should be unchanged", func() {
				got, err := store.UserByHandle(ctx, "bob")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, first.ID)
				So(string(got.CredentialHash), ShouldEqual, string(first.CredentialHash))
			})
		})

		Convey("When fetching an unknown handle", func() {
			_, err := store.UserByHandle(ctx, "nobody")

			Convey("Then it should return ErrNotFound", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})
	})
}

func TestSQLiteStore_UpsertScores(t *testing.T) {
	Convey("Given a store with one user", t, func() {
		ctx := context.Background()
		store := newStore(t)
		u := newUser("judge")
		So(store.CreateUser(ctx, u), ShouldBeNil)

		Convey("When submitting a vote batch", func() {
			err := store.UpsertScores(ctx, u.ID, "Alpha", map[string]float64{
				"Design": 8,
				"Pitch":  6,
			})

			Convey("Then one record per category should exist", func() {
				So(err, ShouldBeNil)
				records, err := store.AllScores(ctx)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
			})
		})

		Convey("When resubmitting the same (team, category)", func() {
			So(store.UpsertScores(ctx, u.ID, "Alpha", map[string]float64{"Design": 8}), ShouldBeNil)
			So(store.UpsertScores(ctx, u.ID, "Alpha", map[string]float64{"Design": 4}), ShouldBeNil)

			records, err := store.AllScores(ctx)

			Convey("Then exactly one record should remain and the second score should win", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].Score, ShouldEqual, 4)
			})
		})

		Convey("When two users score the same team and category", func() {
			other := newUser("judge2")
			So(store.CreateUser(ctx, other), ShouldBeNil)
			So(store.UpsertScores(ctx, u.ID, "Alpha", map[string]float64{"Design": 8}), ShouldBeNil)
			So(store.UpsertScores(ctx, other.ID, "Alpha", map[string]float64{"Design": 10}), ShouldBeNil)

			records, err := store.AllScores(ctx)

			Convey("Then both records should coexist", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
			})
		})

		Convey("When the batch is empty", func() {
			err := store.UpsertScores(ctx, u.ID, "Alpha", nil)

			Convey("Then it should fail with ErrEmptyBatch", func() {
				So(err, ShouldEqual, repository.ErrEmptyBatch)
			})
		})
	})
}

func TestSQLiteStore_ConcurrentWriters(t *testing.T) {
	Convey("Given a store shared by several judges", t, func() {
		ctx := context.Background()
		store := newStore(t)

		const (
			numJudges = 6
			numTeams  = 4
		)

		judges := make([]model.User, numJudges)
		for i := range judges {
			judges[i] = newUser(fmt.Sprintf("judge-%d", i))
			So(store.CreateUser(ctx, judges[i]), ShouldBeNil)
		}

		Convey("When judges write concurrently while a reader polls", func() {
			var wg sync.WaitGroup
			writeErrs := make(chan error, numJudges*numTeams+20)

			for _, judge := range judges {
				wg.Add(1)
				go func(j model.User) {
					defer wg.Done()
					for team := 0; team < numTeams; team++ {
						err := store.UpsertScores(ctx, j.ID, fmt.Sprintf("team-%d", team), map[string]float64{
							"Design": 7,
							"Pitch":  5,
						})
						if err != nil {
							writeErrs <- err
						}
					}
				}(judge)
			}

			// Two goroutines race resubmissions for the same (user, team) pair.
			for _, score := range []float64{3, 9} {
				wg.Add(1)
				go func(score float64) {
					defer wg.Done()
					for i := 0; i < 10; i++ {
						err := store.UpsertScores(ctx, judges[0].ID, "team-0", map[string]float64{"Design": score})
						if err != nil {
							writeErrs <- err
						}
					}
				}(score)
			}

			readerDone := make(chan error, 1)
			stop := make(chan struct{})
			go func() {
				for {
					select {
					case <-stop:
						readerDone <- nil
						return
					default:
					}
					if _, err := store.AllScores(ctx); err != nil {
						readerDone <- err
						return
					}
				}
			}()

			wg.Wait()
			close(stop)
			readErr := <-readerDone
			close(writeErrs)

			Convey("Then no writer or reader should fail", func() {
				So(readErr, ShouldBeNil)
				for err := range writeErrs {
					So(err, ShouldBeNil)
				}
			})

			Convey("And exactly one row per (user, team, category) should remain", func() {
				records, err := store.AllScores(ctx)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, numJudges*numTeams*2)

				var raced []model.ScoreRecord
				for _, r := range records {
					if r.UserID == judges[0].ID && r.TeamName == "team-0" && r.Category == "Design" {
						raced = append(raced, r)
					}
				}
				So(raced, ShouldHaveLength, 1)
				So(raced[0].Score == 3 || raced[0].Score == 9, ShouldBeTrue)
			})
		})
	})
}

func TestSQLiteStore_Stats(t *testing.T) {
	Convey("Given a store with users and scores", t, func() {
		ctx := context.Background()
		store := newStore(t)

		a := newUser("a")
		b := newUser("b")
		So(store.CreateUser(ctx, a), ShouldBeNil)
		So(store.CreateUser(ctx, b), ShouldBeNil)
		So(store.UpsertScores(ctx, a.ID, "Alpha", map[string]float64{"Design": 8, "Pitch": 6}), ShouldBeNil)
		So(store.UpsertScores(ctx, b.ID, "Beta", map[string]float64{"Design": 5}), ShouldBeNil)

		Convey("When reading stats", func() {
			st, err := store.Stats(ctx)

			Convey("Then counts should reflect the rows", func() {
				So(err, ShouldBeNil)
				So(st.Users, ShouldEqual, 2)
				So(st.Teams, ShouldEqual, 2)
				So(st.Scores, ShouldEqual, 3)
			})
		})
	})
}
