package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// newTestService returns a started in-memory service and its stop func.
func newTestService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithDBPath(":memory:"),
		service.WithBcryptCost(bcrypt.MinCost),
	}
	svc := service.New(append(base, opts...)...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithDBPath(":memory:"),
			service.WithTokenSecret("test-secret"),
			service.WithTokenTTL(time.Hour),
			service.WithBcryptCost(bcrypt.MinCost),
			service.WithCategoryWeights(map[string]float64{"Design": 1.2}),
			service.WithDefaultCategoryWeight(1.0),
			service.WithScoreBounds(0, 10),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(
			service.WithDBPath(":memory:"),
			service.WithBcryptCost(bcrypt.MinCost),
		)
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
			})

			Convey("And a second start should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_VoteValidation(t *testing.T) {
	Convey("Given a started service with a registered judge", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		u, err := svc.Register(ctx, "judge-1", "s3cret")
		So(err, ShouldBeNil)

		Convey("When submitting a batch with no team name", func() {
			err := svc.SubmitVotes(ctx, u.ID, "   ", map[string]float64{"Design": 5})

			Convey("Then it should fail validation", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When submitting with a padded team name", func() {
			err := svc.SubmitVotes(ctx, u.ID, "  Team Pad  ", map[string]float64{"Design": 5})

			Convey("Then the stored name should be trimmed", func() {
				So(err, ShouldBeNil)
				results, err := svc.Results(ctx)
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)
				So(results[0].TeamName, ShouldEqual, "Team Pad")
			})
		})

		Convey("When submitting an empty batch", func() {
			err := svc.SubmitVotes(ctx, u.ID, "Team Rocket", map[string]float64{})

			Convey("Then it should fail validation", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When submitting a score above the bound", func() {
			err := svc.SubmitVotes(ctx, u.ID, "Team Rocket", map[string]float64{"Design": 10.5})

			Convey("Then it should fail validation", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When submitting a negative score", func() {
			err := svc.SubmitVotes(ctx, u.ID, "Team Rocket", map[string]float64{"Design": -1})

			Convey("Then it should fail validation", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When submitting a batch with an empty category label", func() {
			err := svc.SubmitVotes(ctx, u.ID, "Team Rocket", map[string]float64{" ": 5})

			Convey("Then it should fail validation", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When submitting a valid batch with boundary scores", func() {
			err := svc.SubmitVotes(ctx, u.ID, "Team Rocket", map[string]float64{
				"Design": 0,
				"Pitch":  10,
			})

			Convey("Then it should be accepted and nothing else recorded", func() {
				So(err, ShouldBeNil)

				results, err := svc.Results(ctx)
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 1)
				So(results[0].VoterCount, ShouldEqual, 1)
			})
		})

		Convey("When a batch contains one invalid score", func() {
			err := svc.SubmitVotes(ctx, u.ID, "Team Atomic", map[string]float64{
				"Design": 5,
				"Pitch":  99,
			})

			Convey("Then the whole batch should be rejected", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)

				results, rerr := svc.Results(ctx)
				So(rerr, ShouldBeNil)
				for _, r := range results {
					So(r.TeamName, ShouldNotEqual, "Team Atomic")
				}
			})
		})
	})

	Convey("Given a service with custom score bounds", t, func() {
		svc := newTestService(t, service.WithScoreBounds(1, 5))
		ctx := context.Background()

		u, err := svc.Register(ctx, "judge-bounds", "s3cret")
		So(err, ShouldBeNil)

		Convey("When submitting a score valid only for the default bounds", func() {
			err := svc.SubmitVotes(ctx, u.ID, "Team Rocket", map[string]float64{"Design": 8})

			Convey("Then it should fail validation", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestService_Auth(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t, service.WithTokenSecret("unit-test-secret"))
		ctx := context.Background()

		Convey("When registering and logging in", func() {
			u, err := svc.Register(ctx, "judge-auth", "s3cret")
			So(err, ShouldBeNil)
			So(u.ID, ShouldNotBeEmpty)

			sess, err := svc.Login(ctx, "judge-auth", "s3cret")

			Convey("Then the session token should verify back to the user", func() {
				So(err, ShouldBeNil)
				So(sess.Token, ShouldNotBeEmpty)

				claims, err := svc.VerifyToken(sess.Token)
				So(err, ShouldBeNil)
				So(claims.UserID, ShouldEqual, u.ID)
				So(claims.Handle, ShouldEqual, "judge-auth")
			})
		})

		Convey("When verifying a malformed token", func() {
			_, err := svc.VerifyToken("not-a-token")

			Convey("Then verification should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestService_ConcurrentSubmissions(t *testing.T) {
	Convey("Given a started service with two judges", t, func() {
		ctx := context.Background()
		svc := newTestService(t)

		alice, err := svc.Register(ctx, "alice", "secret")
		So(err, ShouldBeNil)
		bob, err := svc.Register(ctx, "bob", "secret")
		So(err, ShouldBeNil)

		Convey("When both submit concurrently while results are read", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 32)

			for _, judge := range []string{alice.ID, bob.ID} {
				wg.Add(1)
				go func(userID string) {
					defer wg.Done()
					for team := 0; team < 3; team++ {
						err := svc.SubmitVotes(ctx, userID, fmt.Sprintf("Team %d", team), map[string]float64{"Design": 6})
						if err != nil {
							errs <- err
						}
					}
				}(judge)
			}

			// Alice races herself on one team; one row must remain.
			for _, score := range []float64{2, 8} {
				wg.Add(1)
				go func(score float64) {
					defer wg.Done()
					for i := 0; i < 5; i++ {
						if err := svc.SubmitVotes(ctx, alice.ID, "Team 0", map[string]float64{"Pitch": score}); err != nil {
							errs <- err
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
					if _, err := svc.Results(ctx); err != nil {
						readerDone <- err
						return
					}
				}
			}()

			wg.Wait()
			close(stop)
			readErr := <-readerDone
			close(errs)

			Convey("Then nothing should fail and each judge counts once per team", func() {
				So(readErr, ShouldBeNil)
				for err := range errs {
					So(err, ShouldBeNil)
				}

				results, err := svc.Results(ctx)
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 3)
				for _, r := range results {
					So(r.VoterCount, ShouldEqual, 2)
				}
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service with data", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		u, err := svc.Register(ctx, "judge-stats", "s3cret")
		So(err, ShouldBeNil)
		So(svc.SubmitVotes(ctx, u.ID, "Team Rocket", map[string]float64{"Design": 7, "Pitch": 8}), ShouldBeNil)

		Convey("When fetching stats", func() {
			stats := svc.GetStats()

			Convey("Then counters should reflect the stored data", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["totalUsers"], ShouldEqual, 1)
				So(stats["totalTeams"], ShouldEqual, 1)
				So(stats["totalScores"], ShouldEqual, 2)
			})
		})
	})
}
