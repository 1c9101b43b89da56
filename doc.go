// Package pairwise provides a periodic one-to-one user matching engine.
//
// The engine scores pairwise compatibility over a bank of binary A-or-B
// questions, builds per-user preference rankings, and runs an interchangeable
// matching strategy (stable matching or local search) to pair the whole
// population once per configured interval. A reserved shadow participant
// absorbs users who cannot be paired, so every round produces a total
// assignment.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import (
//	    "github.com/arloliu/pairwise"
//	    "github.com/arloliu/pairwise/store"
//	    "github.com/arloliu/pairwise/strategy"
//	)
//
//	cfg := pairwise.DefaultConfig()
//	st := store.NewMemory()
//
//	engine, err := pairwise.NewEngine(&cfg, st, strategy.NewStable())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close(context.Background())
//
//	// Call from any goroutine, as often as you like; at most one round
//	// runs at a time and rounds fire once per MatchInterval.
//	engine.CheckAndTrigger(time.Now())
//
// # Key Features
//
//   - Variance-weighted compatibility scoring over shared answers
//   - Seek-similar and seek-complementary matching schemes per user
//   - Interchangeable strategies: deferred-acceptance stable matching and
//     greedy local search with pairwise-swap improvement
//   - Shadow participant so rounds always produce a total assignment
//   - Recency exclusion: no re-matching within the configured window
//   - Single-flight trigger: concurrent checks admit at most one round
//   - All-or-nothing round persistence (in-memory or NATS JetStream KV)
//
// # Architecture
//
// The engine cycles between two states for the lifetime of the process:
//
//	Idle → Running → Idle
//
// CheckAndTrigger performs an atomic check-and-set; the winning caller runs
// the round asynchronously: snapshot fetch, shadow roll, preference ranking,
// strategy matching, invariant validation, persistence. A failed round
// leaves the last completion time untouched and retries after RetryBackoff.
//
// See the examples/ directory for complete working examples.
package pairwise
