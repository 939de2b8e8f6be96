package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/podium/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"PODIUM_CONFIG",
		"PODIUM_ADDR",
		"PODIUM_DB_PATH",
		"PODIUM_TOKEN_SECRET",
		"PODIUM_TOKEN_TTL_MINUTES",
		"PODIUM_BCRYPT_COST",
		"PODIUM_SCORE_MIN",
		"PODIUM_SCORE_MAX",
		"PODIUM_DEFAULT_CATEGORY_WEIGHT",
		"PODIUM_LOG_LEVEL",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "podium-*.yaml")
	if err != nil {
		t.Fatalf("create temp config: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp config: %v", err)
	}
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "podium.db")
				convey.So(cfg.ScoreMax, convey.ShouldEqual, 10.0)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_ADDR", ":9090")
			_ = os.Setenv("PODIUM_DB_PATH", "/tmp/votes.db")
			_ = os.Setenv("PODIUM_BCRYPT_COST", "12")
			_ = os.Setenv("PODIUM_SCORE_MAX", "5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/votes.db")
				convey.So(cfg.BcryptCost, convey.ShouldEqual, 12)
				convey.So(cfg.ScoreMax, convey.ShouldEqual, 5.0)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars()
			yamlContent := `
addr: ":7070"
token_ttl_minutes: 60
category_weights:
  Design: 2.0
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.TokenTTLMinutes, convey.ShouldEqual, 60)
				convey.So(cfg.CategoryWeights["Design"], convey.ShouldEqual, 2.0)
			})
		})

		convey.Convey("When env overrides both file and defaults", func() {
			clearConfigEnvVars()
			tmpFile := createTempConfigFile(t, "addr: \":7070\"\n")
			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			_ = os.Setenv("PODIUM_ADDR", ":6060")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When a category weight is zero", func() {
			clearConfigEnvVars()
			yamlContent := `
category_weights:
  Design: 0
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail instead of silently using the default weight", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Design")
			})
		})

		convey.Convey("When the default category weight is not positive", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_DEFAULT_CATEGORY_WEIGHT", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When validation fails", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_SCORE_MIN", "10")
			_ = os.Setenv("PODIUM_SCORE_MAX", "5")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then an error should surface", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
