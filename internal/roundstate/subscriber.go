package roundstate

import (
	"sync"

	"github.com/arloliu/pairwise/types"
)

// statusSubscriber is a helper for managing status change subscriptions.
type statusSubscriber struct {
	ch     chan types.RoundStatus
	mu     sync.Mutex
	closed bool
}

// trySend sends a status update to the subscriber's channel without blocking.
func (s *statusSubscriber) trySend(status types.RoundStatus, metrics types.TriggerMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- status:
	default:
		// Subscriber is slow or not ready; they will get the next update.
		metrics.RecordStatusChangeDropped()
	}
}

// close safely closes the subscriber's channel.
func (s *statusSubscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
