// Package hooks provides the default no-op hook implementations.
package hooks

import (
	"context"

	"github.com/arloliu/pairwise/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.RoundResult) error                    = (*NopHooks)(nil).OnRoundCompleted
	_ func(context.Context, error) error                                = (*NopHooks)(nil).OnRoundFailed
	_ func(context.Context, types.RoundStatus, types.RoundStatus) error = (*NopHooks)(nil).OnStatusChanged
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnRoundCompleted: h.OnRoundCompleted,
		OnRoundFailed:    h.OnRoundFailed,
		OnStatusChanged:  h.OnStatusChanged,
	}
}

// OnRoundCompleted is a no-op implementation.
func (h *NopHooks) OnRoundCompleted(ctx context.Context, result types.RoundResult) error {
	return nil
}

// OnRoundFailed is a no-op implementation.
func (h *NopHooks) OnRoundFailed(ctx context.Context, err error) error {
	return nil
}

// OnStatusChanged is a no-op implementation.
func (h *NopHooks) OnStatusChanged(ctx context.Context, from, to types.RoundStatus) error {
	return nil
}
