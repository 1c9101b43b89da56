package pairwise

import (
	"errors"
	"fmt"
	"time"
)

// ============================================================================
// Timing Configuration Model
// ============================================================================
//
// The engine uses two independent clocks to decide when a round may run:
//
//	• MatchInterval: time since the LAST SUCCESSFUL round. A successful
//	  round advances the completion time; the next round becomes due one
//	  interval later.
//	• RetryBackoff: time since the LAST FAILED round. A failed round never
//	  advances the completion time — the round stays due — but the backoff
//	  prevents a hot retry loop against a broken store.
//
// Execution flow example (interval 24h, backoff 5m):
//
//	T+0:      Round succeeds (lastCompleted = T+0)
//	T+12h:    CheckAndTrigger → not due, skipped
//	T+24h:    CheckAndTrigger → due, round runs and FAILS (lastFailed = T+24h)
//	T+24h02m: CheckAndTrigger → due, but inside backoff → skipped
//	T+24h05m: CheckAndTrigger → due, backoff elapsed → retry runs, succeeds
//	T+48h05m: next round due
//
// ============================================================================

// Config is the configuration for the Engine.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h"
// when loaded from YAML.
type Config struct {
	// MatchInterval is the period between successful matching rounds.
	// Recommended: 24 hours (one round per day).
	MatchInterval time.Duration `yaml:"matchInterval"`

	// RecencyWindow is how far back persisted matches exclude re-pairing.
	// Users matched within the window are hard-removed from each other's
	// candidate pools. Recommended: 28 days.
	RecencyWindow time.Duration `yaml:"recencyWindow"`

	// RetryBackoff is the minimum wait before retrying after a failed round.
	// A failed round does not advance the interval clock.
	// Recommended: 5 minutes.
	RetryBackoff time.Duration `yaml:"retryBackoff"`

	// OperationTimeout is the timeout applied to each store call
	// (questions, submissions, recency, persist). Recommended: 10 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// MinSharedAnswers is the minimum number of mutually answered questions
	// required before a directional score is meaningful. Subjects below the
	// threshold score the candidate as unrankable. Minimum and default: 1.
	MinSharedAnswers int `yaml:"minSharedAnswers"`

	// ShadowCandidateThreshold controls when the shadow joins a user's
	// preference list: only when the user has fewer real candidates than
	// this. Zero keeps the shadow out of every real user's list (it can
	// still be patched in for side parity). Default: 2.
	ShadowCandidateThreshold int `yaml:"shadowCandidateThreshold"`

	// ShadowID is the reserved shadow participant id. Must not collide with
	// any real user id. Default: "shadow".
	ShadowID string `yaml:"shadowId"`

	// ShadowSeed fixes the shadow's answer roll for reproducible rounds.
	// Zero (the default) derives the seed from each round's start time, so
	// the shadow re-rolls every round.
	ShadowSeed uint64 `yaml:"shadowSeed"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		MatchInterval:            24 * time.Hour,
		RecencyWindow:            28 * 24 * time.Hour,
		RetryBackoff:             5 * time.Minute,
		OperationTimeout:         10 * time.Second,
		MinSharedAnswers:         1,
		ShadowCandidateThreshold: 2,
		ShadowID:                 "shadow",
		ShadowSeed:               0, // re-roll per round
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.MatchInterval == 0 {
		cfg.MatchInterval = defaults.MatchInterval
	}
	if cfg.RecencyWindow == 0 {
		cfg.RecencyWindow = defaults.RecencyWindow
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = defaults.RetryBackoff
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.MinSharedAnswers == 0 {
		cfg.MinSharedAnswers = defaults.MinSharedAnswers
	}
	if cfg.ShadowID == "" {
		cfg.ShadowID = defaults.ShadowID
	}
	// Note: ShadowCandidateThreshold of 0 is valid (shadow only for parity),
	// and ShadowSeed of 0 means per-round re-roll, so neither gets a default.
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - MatchInterval > 0
//   - RecencyWindow >= 0
//   - RetryBackoff > 0 and <= MatchInterval (a retry gate longer than the
//     interval would starve rounds)
//   - OperationTimeout > 0
//   - MinSharedAnswers >= 1
//   - ShadowCandidateThreshold >= 0
//   - ShadowID non-empty
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.MatchInterval <= 0 {
		return fmt.Errorf("MatchInterval must be > 0, got %v", cfg.MatchInterval)
	}

	if cfg.RecencyWindow < 0 {
		return fmt.Errorf("RecencyWindow must be >= 0, got %v", cfg.RecencyWindow)
	}

	if cfg.RetryBackoff <= 0 {
		return fmt.Errorf("RetryBackoff must be > 0, got %v", cfg.RetryBackoff)
	}
	if cfg.RetryBackoff > cfg.MatchInterval {
		return fmt.Errorf(
			"RetryBackoff (%v) must be <= MatchInterval (%v) to avoid starving rounds",
			cfg.RetryBackoff, cfg.MatchInterval,
		)
	}

	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("OperationTimeout must be > 0, got %v", cfg.OperationTimeout)
	}

	if cfg.MinSharedAnswers < 1 {
		return fmt.Errorf("MinSharedAnswers must be >= 1, got %d", cfg.MinSharedAnswers)
	}

	if cfg.ShadowCandidateThreshold < 0 {
		return fmt.Errorf("ShadowCandidateThreshold must be >= 0, got %d", cfg.ShadowCandidateThreshold)
	}

	if cfg.ShadowID == "" {
		return errors.New("ShadowID must not be empty")
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewEngine() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// Warn if the recency window cannot cover even one interval: users could
	// be re-matched on consecutive rounds.
	if cfg.RecencyWindow > 0 && cfg.RecencyWindow < cfg.MatchInterval {
		logger.Warn(
			"RecencyWindow is shorter than MatchInterval, consecutive re-matches are possible",
			"recencyWindow", cfg.RecencyWindow,
			"matchInterval", cfg.MatchInterval,
		)
	}

	// Warn if RetryBackoff is very short
	if cfg.RetryBackoff < time.Minute {
		logger.Warn(
			"RetryBackoff is very short, failed rounds may hammer the store",
			"retryBackoff", cfg.RetryBackoff,
			"recommended", "5m or higher",
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-100x faster than production defaults to enable
// rapid iteration without sacrificing test coverage. Use DefaultConfig()
// for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := pairwise.TestConfig()
//	engine, err := pairwise.NewEngine(&cfg, st, strategy.NewStable())
func TestConfig() Config {
	cfg := DefaultConfig()

	// Fast timings for test execution
	cfg.MatchInterval = 100 * time.Millisecond
	cfg.RetryBackoff = 50 * time.Millisecond
	cfg.OperationTimeout = 2 * time.Second
	cfg.RecencyWindow = time.Hour

	return cfg
}
