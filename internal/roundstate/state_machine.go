// Package roundstate provides the trigger state machine for matching rounds.
package roundstate

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/pairwise/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// StateMachine manages round trigger state transitions.
//
// Implements a validated state machine with these states:
//   - Idle: Ready to start a round when one is due
//   - Running: A round is executing; concurrent triggers are rejected
//
// The Idle -> Running transition is a single compare-and-swap, so any number
// of concurrent trigger checks admit at most one round.
type StateMachine struct {
	current atomic.Int32 // types.RoundStatus
	mu      sync.Mutex

	lastCompleted time.Time
	lastFailed    time.Time

	logger  types.Logger
	metrics types.TriggerMetrics

	// Fan-out to subscribers
	subscribers      *xsync.Map[uint64, *statusSubscriber]
	nextSubscriberID atomic.Uint64
}

// NewStateMachine creates a new state machine starting in Idle state.
//
// Parameters:
//   - logger: Logger for state transitions
//   - metrics: Metrics collector for trigger operations
//
// Returns:
//   - *StateMachine: A new state machine instance
func NewStateMachine(logger types.Logger, metrics types.TriggerMetrics) *StateMachine {
	sm := &StateMachine{
		logger:      logger,
		metrics:     metrics,
		subscribers: xsync.NewMap[uint64, *statusSubscriber](),
	}
	sm.current.Store(int32(types.StatusIdle))

	return sm
}

// Status returns the current round status.
//
// This method is thread-safe and can be called concurrently.
//
// Returns:
//   - types.RoundStatus: Current status (Idle or Running)
func (sm *StateMachine) Status() types.RoundStatus {
	return types.RoundStatus(sm.current.Load())
}

// Snapshot returns the current status together with the completion time of
// the last successful round. The zero time means no round has completed yet.
//
// Returns:
//   - types.RoundStatus: Current status
//   - time.Time: Last successful completion time
func (sm *StateMachine) Snapshot() (types.RoundStatus, time.Time) {
	sm.mu.Lock()
	last := sm.lastCompleted
	sm.mu.Unlock()

	return sm.Status(), last
}

// TryBegin attempts the Idle -> Running transition for a round due at now.
//
// A round is due when the interval has elapsed since the last successful
// completion and the backoff has elapsed since the last failure. A failed
// round never advances the completion time; backoff alone gates the retry.
//
// At most one caller wins for any due round: the due check runs under the
// mutex and the status flip is a compare-and-swap.
//
// Parameters:
//   - now: Trigger evaluation time
//   - interval: Period between successful rounds
//   - backoff: Minimum wait after a failed round
//
// Returns:
//   - bool: true if the caller owns the round and must run it
func (sm *StateMachine) TryBegin(now time.Time, interval, backoff time.Duration) bool {
	// Fast path: a running round rejects all triggers without locking.
	if types.RoundStatus(sm.current.Load()) != types.StatusIdle {
		return false
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.lastCompleted.IsZero() && now.Before(sm.lastCompleted.Add(interval)) {
		return false
	}
	if !sm.lastFailed.IsZero() && now.Before(sm.lastFailed.Add(backoff)) {
		return false
	}

	if !sm.current.CompareAndSwap(int32(types.StatusIdle), int32(types.StatusRunning)) {
		return false
	}

	sm.logger.Info("round triggered", "now", now)
	sm.notify(types.StatusIdle, types.StatusRunning)

	return true
}

// Complete records a successful round and returns to Idle.
//
// Parameters:
//   - completedAt: Completion time; becomes the base of the next interval
func (sm *StateMachine) Complete(completedAt time.Time) {
	sm.mu.Lock()
	sm.lastCompleted = completedAt
	sm.lastFailed = time.Time{}
	sm.mu.Unlock()

	sm.returnToIdle()
}

// Fail records a failed round and returns to Idle.
//
// The completion time is left untouched so the round stays due; the failure
// time gates the retry via the backoff.
//
// Parameters:
//   - failedAt: Failure time
func (sm *StateMachine) Fail(failedAt time.Time) {
	sm.mu.Lock()
	sm.lastFailed = failedAt
	sm.mu.Unlock()

	sm.returnToIdle()
}

// Subscribe returns a channel that receives status change notifications.
//
// The returned channel is buffered (size 4) to allow rapid transitions
// without blocking the state machine. The subscriber receives the current
// status immediately upon subscription.
//
// Returns:
//   - <-chan types.RoundStatus: Channel that receives status updates
//   - func(): Unsubscribe function to clean up resources
//
// Example:
//
//	ch, unsubscribe := sm.Subscribe()
//	defer unsubscribe()
//	for status := range ch {
//	    fmt.Printf("Status changed to: %s\n", status)
//	}
func (sm *StateMachine) Subscribe() (<-chan types.RoundStatus, func()) {
	id := sm.nextSubscriberID.Add(1)

	sub := &statusSubscriber{ch: make(chan types.RoundStatus, 4)}
	sm.subscribers.Store(id, sub)

	// Immediately send the current status
	sub.trySend(sm.Status(), sm.metrics)

	unsubscribe := func() {
		sm.removeSubscriber(id)
	}

	return sub.ch, unsubscribe
}

// Close closes all subscriber channels.
func (sm *StateMachine) Close() {
	sm.subscribers.Range(func(id uint64, _ *statusSubscriber) bool {
		sm.removeSubscriber(id)
		return true
	})
}

// removeSubscriber removes a subscriber and closes its channel.
func (sm *StateMachine) removeSubscriber(id uint64) {
	if sub, ok := sm.subscribers.LoadAndDelete(id); ok {
		sub.close()
	}
}

// returnToIdle flips Running -> Idle and notifies subscribers.
func (sm *StateMachine) returnToIdle() {
	if !sm.current.CompareAndSwap(int32(types.StatusRunning), int32(types.StatusIdle)) {
		sm.logger.Warn("attempted to return to idle from non-running state",
			"current_status", sm.Status().String())

		return
	}

	sm.notify(types.StatusRunning, types.StatusIdle)
}

// notify records the transition and fans it out to subscribers.
func (sm *StateMachine) notify(from, to types.RoundStatus) {
	sm.logger.Info("status transition", "from", from, "to", to)
	sm.metrics.RecordStatusTransition(from, to)

	sm.subscribers.Range(func(_ uint64, sub *statusSubscriber) bool {
		sub.trySend(to, sm.metrics)
		return true
	})
}
