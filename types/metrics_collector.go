package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods may be called from the request hot path or from the round
// goroutine and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better
// modularity.
type MetricsCollector interface {
	TriggerMetrics
	RoundMetrics
	StoreMetrics
}

// TriggerMetrics defines metrics for the trigger/state machine.
type TriggerMetrics interface {
	// RecordTriggerCheck records one CheckAndTrigger invocation.
	//
	// Parameters:
	//   - fired: true if this check started a round
	RecordTriggerCheck(fired bool)

	// RecordStatusTransition records a round status transition.
	RecordStatusTransition(from, to RoundStatus)

	// RecordStatusChangeDropped records a status notification dropped
	// because a subscriber was slow.
	RecordStatusChangeDropped()
}

// RoundMetrics defines metrics for matching round execution.
type RoundMetrics interface {
	// RecordRoundDuration records the wall-clock time of a round.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	//   - success: true if the round persisted, false otherwise
	RecordRoundDuration(duration float64, success bool)

	// RecordRoundAttempt records a round attempt outcome.
	RecordRoundAttempt(success bool)

	// RecordPopulationSize sets the real-user population of the last
	// snapshot (gauge metric).
	RecordPopulationSize(count int)

	// RecordMatchedPairs sets the number of real pairs produced by the
	// last successful round (gauge metric).
	RecordMatchedPairs(count int)

	// RecordShadowAbsorptions sets the number of shadow absorptions in the
	// last successful round (gauge metric).
	RecordShadowAbsorptions(count int)

	// RecordUnmatchedUsers sets the number of users left unmatched by the
	// last successful round (gauge metric).
	RecordUnmatchedUsers(count int)
}

// StoreMetrics defines metrics for store collaborator calls.
type StoreMetrics interface {
	// RecordStoreOperationDuration records store call latency.
	//
	// Parameters:
	//   - operation: Operation name ("questions", "submissions", "recency", "persist")
	//   - duration: Time taken in seconds
	RecordStoreOperationDuration(operation string, duration float64)
}
