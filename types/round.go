package types

import "time"

// RoundStatus represents the matching round lifecycle state.
//
// The machine cycles for the lifetime of the process:
//
//	StatusIdle → StatusRunning → StatusIdle
//
// There is no terminal state. The Idle → Running transition happens only
// inside a single atomic check-and-set shared by all request-handling
// goroutines; Running → Idle is performed by the round completion handler
// regardless of success or failure, so the engine can never get stuck.
type RoundStatus int

const (
	// StatusIdle indicates no round is in progress.
	StatusIdle RoundStatus = iota

	// StatusRunning indicates a matching round is in progress.
	StatusRunning
)

// String returns the string representation of the status.
func (s RoundStatus) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// RoundResult summarizes a successfully completed matching round.
type RoundResult struct {
	// StartedAt is the round start time; lastCompletedAt advances to it.
	StartedAt time.Time

	// Duration is the wall-clock time the round took.
	Duration time.Duration

	// Population is the number of real users in the snapshot.
	Population int

	// MatchedPairs is the number of distinct real pairs produced.
	MatchedPairs int

	// ShadowAbsorbed is the number of users paired with the shadow.
	ShadowAbsorbed int

	// Unmatched is the number of real users left without any partner.
	Unmatched int

	// Marriage is the produced assignment.
	Marriage Marriage
}
