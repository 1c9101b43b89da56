package types

import "context"

// Hooks defines callbacks for engine lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// so they never block the trigger hot path or the round itself. Hooks
// receive the engine's lifecycle context, which is cancelled on Close.
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Make hooks idempotent (a hook may fire for retried rounds)
//   - Handle errors gracefully (returned errors are logged, nothing more)
type Hooks struct {
	// OnRoundCompleted is called after a round persisted successfully.
	OnRoundCompleted func(ctx context.Context, result RoundResult) error

	// OnRoundFailed is called when a round aborts (fetch, strategy,
	// validation, or persistence failure). The round's records were not
	// written; the engine retries after the configured backoff.
	OnRoundFailed func(ctx context.Context, err error) error

	// OnStatusChanged is called when the round status transitions.
	OnStatusChanged func(ctx context.Context, from, to RoundStatus) error
}
