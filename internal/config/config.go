// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database location. ":memory:" keeps everything
	// in-process, which is only useful for tests.
	DBPath string `koanf:"db_path"`

	// TokenSecret signs bearer tokens. Must be overridden outside dev.
	TokenSecret string `koanf:"token_secret"`

	// TokenTTLMinutes bounds bearer token validity.
	TokenTTLMinutes int `koanf:"token_ttl_minutes"`

	// BcryptCost sets the credential hashing work factor.
	BcryptCost int `koanf:"bcrypt_cost"`

	// ScoreMin and ScoreMax bound accepted score values.
	ScoreMin float64 `koanf:"score_min"`
	ScoreMax float64 `koanf:"score_max"`

	// CategoryWeights maps category labels to their leaderboard weights.
	CategoryWeights map[string]float64 `koanf:"category_weights"`

	// DefaultCategoryWeight is used for categories absent from the table.
	DefaultCategoryWeight float64 `koanf:"default_category_weight"`
}

// New creates a Config with defaults. The weight table mirrors the judging
// sheet handed to the jury; anything not listed counts with weight 1.0.
func New() *Config {
	c := &Config{
		LogLevel:        "info",
		Addr:            ":8080",
		DBPath:          "podium.db",
		TokenSecret:     "podium-dev-secret",
		TokenTTLMinutes: 24 * 60,
		BcryptCost:      10,
		ScoreMin:        0,
		ScoreMax:        10,
		CategoryWeights: map[string]float64{
			"Originality":    1.5,
			"Design":         1.2,
			"Usefulness":     1.0,
			"Coded Project":  1.5,
			"Market Product": 1.3,
			"Feasibility":    1.4,
			"Pitch":          1.1,
		},
		DefaultCategoryWeight: 1.0,
	}
	return c
}
