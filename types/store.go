package types

import (
	"context"
	"time"
)

// Store is the persistence collaborator consumed by the engine.
//
// The engine owns no wire protocol or schema; everything it reads or writes
// goes through this interface. The bundled implementations live in the
// store package (in-memory and NATS JetStream KV).
type Store interface {
	// FetchQuestions returns the question bank with externally maintained
	// population means. The shadow participant is excluded from the means.
	//
	// Returns:
	//   - map[string]Question: Question bank keyed by question id
	//   - error: Fetch error
	FetchQuestions(ctx context.Context) (map[string]Question, error)

	// FetchSubmissions returns the current snapshot of eligible users.
	// Eligibility rules (e.g. minimum answered-question count) are the
	// store's decision, not the engine's.
	//
	// Returns:
	//   - Submissions: Per-user answer vector, primary question, and scheme
	//   - error: Fetch error
	FetchSubmissions(ctx context.Context) (Submissions, error)

	// FetchRecencyExclusion returns, per user, the set of partners matched
	// within the window. Excluded pairs are hard-removed from candidacy.
	//
	// Parameters:
	//   - window: Recency window (28 days in the reference configuration)
	//
	// Returns:
	//   - RecencyExclusion: Per-user exclusion sets
	//   - error: Fetch error
	FetchRecencyExclusion(ctx context.Context, window time.Duration) (RecencyExclusion, error)

	// PersistMarriage writes the symmetric MatchRecord rows for the round
	// in one all-or-nothing transaction: either every row is committed or
	// none are. Partial pairings must never be observable.
	//
	// Parameters:
	//   - marriage: Validated assignment to persist
	//   - matchedAt: Round start time stamped on every record
	//
	// Returns:
	//   - error: Persistence error; the engine fails the round and retries
	//     from a fresh snapshot after the configured backoff
	PersistMarriage(ctx context.Context, marriage Marriage, matchedAt time.Time) error
}
