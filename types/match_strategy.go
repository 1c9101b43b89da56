package types

// MatchSnapshot is the immutable input handed to an assignment strategy.
//
// The engine builds one snapshot per round: submissions (with the freshly
// rolled shadow participant patched in) plus the per-user preference lists
// produced by the ranker. Strategies must not mutate the snapshot.
type MatchSnapshot struct {
	// Submissions holds every participant of the round, shadow included.
	Submissions Submissions

	// Preferences maps each user id to its ranked, eligibility-filtered
	// candidate list. The shadow's own list covers the full population.
	Preferences map[string]PreferenceList

	// ShadowID is the reserved shadow participant id.
	ShadowID string
}

// MatchStrategy turns a round snapshot into a Marriage.
//
// The library bundles two interchangeable strategies:
//   - strategy.Stable: deferred-acceptance stable matching over the two
//     primary-question sides (no blocking pair in the result)
//   - strategy.LocalSearch: greedy seeding plus pairwise-swap improvement
//     to a local optimum (scales better, weaker guarantee)
//
// Strategy implementations should:
//   - Be deterministic (same snapshot → same marriage)
//   - Handle edge cases (empty population, exhausted preference lists)
//   - Be stateless across rounds (no side effects)
//   - Produce marriages that pass Marriage.Validate
type MatchStrategy interface {
	// Match computes a pairing for the snapshot.
	//
	// Users that cannot be matched are simply absent from the result, never
	// an error.
	//
	// Parameters:
	//   - snapshot: Round input built by the engine
	//
	// Returns:
	//   - Marriage: The produced assignment
	//   - error: Strategy error (e.g. nil snapshot); empty input is not an error
	Match(snapshot *MatchSnapshot) (Marriage, error)
}
