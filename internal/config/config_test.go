package config_test

import (
	"testing"

	"github.com/okian/podium/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.DBPath, convey.ShouldEqual, "podium.db")
			convey.So(cfg.TokenTTLMinutes, convey.ShouldEqual, 24*60)
			convey.So(cfg.BcryptCost, convey.ShouldEqual, 10)
			convey.So(cfg.ScoreMin, convey.ShouldEqual, 0.0)
			convey.So(cfg.ScoreMax, convey.ShouldEqual, 10.0)
			convey.So(cfg.DefaultCategoryWeight, convey.ShouldEqual, 1.0)
		})

		convey.Convey("Then the weight table should match the judging sheet", func() {
			convey.So(cfg.CategoryWeights["Originality"], convey.ShouldEqual, 1.5)
			convey.So(cfg.CategoryWeights["Design"], convey.ShouldEqual, 1.2)
			convey.So(cfg.CategoryWeights["Usefulness"], convey.ShouldEqual, 1.0)
			convey.So(cfg.CategoryWeights["Coded Project"], convey.ShouldEqual, 1.5)
			convey.So(cfg.CategoryWeights["Market Product"], convey.ShouldEqual, 1.3)
			convey.So(cfg.CategoryWeights["Feasibility"], convey.ShouldEqual, 1.4)
			convey.So(cfg.CategoryWeights["Pitch"], convey.ShouldEqual, 1.1)
		})
	})
}
