package types

import (
	"errors"
	"strings"
)

// Sentinel errors for the pairwise library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). Components wrap external errors with context using
// fmt.Errorf("...: %w", err).

// Engine errors - Public API errors returned by the Engine.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStoreRequired is returned when the store collaborator is nil.
	ErrStoreRequired = errors.New("store is required")

	// ErrMatchStrategyRequired is returned when the match strategy is nil.
	ErrMatchStrategyRequired = errors.New("match strategy is required")

	// ErrEngineClosed is returned when operations are attempted on a
	// closed engine.
	ErrEngineClosed = errors.New("engine closed")
)

// Round errors - Errors surfaced through OnRoundFailed and logs.
var (
	// ErrInvariantViolation indicates an assignment that breaks a marriage
	// invariant (self-match, asymmetry, shadow as subject). This is a
	// programming error in a strategy; such a marriage is never persisted.
	ErrInvariantViolation = errors.New("marriage invariant violation")

	// ErrSnapshotRequired is returned by strategies given a nil snapshot.
	ErrSnapshotRequired = errors.New("match snapshot is required")

	// ErrPersistFailed is returned when writing match records fails. The
	// round aborts with no rows written.
	ErrPersistFailed = errors.New("failed to persist marriage")
)

// IsNoKeysFoundError checks if an error indicates an empty NATS KV bucket.
//
// The KV-backed store treats an empty round log or submission bucket as a
// normal condition, not a failure. NATS reports it as:
//   - Direct error: "nats: no keys found"
//   - Wrapped error: "failed to list KV keys: nats: no keys found"
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error indicates no keys were found
func IsNoKeysFoundError(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(err.Error(), "no keys found")
}
