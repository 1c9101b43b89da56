package pairwise

import "github.com/arloliu/pairwise/types"

// Sentinel errors returned by the Engine.
//
// These alias the types package sentinels so errors.Is works whether callers
// import the root package or types.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrStoreRequired is returned when the store collaborator is nil.
	ErrStoreRequired = types.ErrStoreRequired

	// ErrMatchStrategyRequired is returned when the match strategy is nil.
	ErrMatchStrategyRequired = types.ErrMatchStrategyRequired

	// ErrEngineClosed is returned when operations are attempted on a closed engine.
	ErrEngineClosed = types.ErrEngineClosed

	// ErrInvariantViolation indicates a strategy produced an invalid marriage.
	ErrInvariantViolation = types.ErrInvariantViolation

	// ErrPersistFailed is returned when writing match records fails.
	ErrPersistFailed = types.ErrPersistFailed
)
