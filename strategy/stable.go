package strategy

import (
	"sort"

	"github.com/arloliu/pairwise/types"
)

// Stable implements deferred-acceptance stable matching.
type Stable struct {
	maxSkew  float64
	fallback types.MatchStrategy
}

var _ types.MatchStrategy = (*Stable)(nil)

// StableOption configures a Stable strategy.
type StableOption func(*Stable)

// NewStable creates a new stable-matching strategy.
//
// The population is partitioned into two sides by each user's answer to its
// own primary question; side A proposes, side B holds the best proposal
// seen so far. The result is stable: no two users both prefer each other
// over their assigned partners.
//
// Parameters:
//   - opts: Optional configuration (WithMaxSkew, WithSkewFallback)
//
// Returns:
//   - *Stable: Initialized stable strategy
//
// Example:
//
//	matcher := strategy.NewStable(
//	    strategy.WithMaxSkew(0.8),
//	    strategy.WithSkewFallback(strategy.NewLocalSearch()),
//	)
func NewStable(opts ...StableOption) *Stable {
	s := &Stable{
		maxSkew: 1.0, // disabled by default
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithMaxSkew sets the side-imbalance ratio |A-B|/(A+B) above which the
// round is delegated to the fallback strategy. Only effective together with
// WithSkewFallback. Default 1.0 (never delegate).
//
// Parameters:
//   - ratio: Maximum tolerated skew in [0, 1]
//
// Returns:
//   - StableOption: Configuration option
func WithMaxSkew(ratio float64) StableOption {
	return func(s *Stable) {
		s.maxSkew = ratio
	}
}

// WithSkewFallback sets the strategy that handles rounds whose
// primary-question partition is too skewed for a meaningful two-sided split.
//
// Parameters:
//   - next: Strategy receiving the whole snapshot on delegation
//
// Returns:
//   - StableOption: Configuration option
func WithSkewFallback(next types.MatchStrategy) StableOption {
	return func(s *Stable) {
		s.fallback = next
	}
}

// Match computes a stable pairing for the snapshot.
//
// The algorithm:
//  1. Partition real users into side A (primary answered A) and side B
//     (primary answered B). Users whose primary question is unanswered are
//     distributed to the smaller side, by ascending id for determinism.
//  2. If the sides are too skewed and a fallback is configured, delegate.
//  3. Patch the shadow into the smaller side when sizes differ.
//  4. Run deferred acceptance: every side-A user proposes down its
//     preference list (restricted to side B); a side-B user holds the best
//     proposal by its own list and rejects the rest; rejected proposers
//     continue down their lists.
//
// A user whose list is exhausted stays unmatched; an empty side leaves the
// other side unmatched. Neither is an error.
//
// Parameters:
//   - snapshot: Round input built by the engine
//
// Returns:
//   - types.Marriage: Stable assignment
//   - error: types.ErrSnapshotRequired for nil input
func (s *Stable) Match(snapshot *types.MatchSnapshot) (types.Marriage, error) {
	if snapshot == nil {
		return nil, types.ErrSnapshotRequired
	}

	sideA, sideB := partitionSides(snapshot)

	if s.fallback != nil && sideSkew(len(sideA), len(sideB)) > s.maxSkew {
		return s.fallback.Match(snapshot)
	}

	// Parity patch: the shadow joins the smaller side so every real user
	// has at least a theoretical counterpart.
	if len(sideA) != len(sideB) {
		if len(sideA) < len(sideB) {
			sideA = append(sideA, snapshot.ShadowID)
			sort.Strings(sideA)
		} else {
			sideB = append(sideB, snapshot.ShadowID)
			sort.Strings(sideB)
		}
	}

	return propose(snapshot, sideA, sideB), nil
}

// partitionSides splits real users by their answer to their own primary
// question. Unanswered primaries go to the smaller side at that moment,
// iterated in ascending id order so the split is reproducible.
func partitionSides(snapshot *types.MatchSnapshot) (sideA, sideB []string) {
	ids := make([]string, 0, len(snapshot.Submissions))
	for id := range snapshot.Submissions {
		if id != snapshot.ShadowID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var unanswered []string
	for _, id := range ids {
		sub := snapshot.Submissions[id]
		switch sub.Answers[sub.PrimaryQuestion] {
		case types.AnswerA:
			sideA = append(sideA, id)
		case types.AnswerB:
			sideB = append(sideB, id)
		default:
			unanswered = append(unanswered, id)
		}
	}

	for _, id := range unanswered {
		if len(sideA) <= len(sideB) {
			sideA = append(sideA, id)
		} else {
			sideB = append(sideB, id)
		}
	}
	sort.Strings(sideA)
	sort.Strings(sideB)

	return sideA, sideB
}

// sideSkew returns |a-b|/(a+b), the imbalance ratio of the two sides.
func sideSkew(a, b int) float64 {
	if a+b == 0 {
		return 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}

	return float64(diff) / float64(a+b)
}

// propose runs the deferred-acceptance loop with sideA proposing.
//
// Terminates in at most O(n²) proposals: every proposer walks its
// preference list at most once.
func propose(snapshot *types.MatchSnapshot, sideA, sideB []string) types.Marriage {
	members := make(map[string]struct{}, len(sideB))
	holderPos := make(map[string]map[string]int, len(sideB))
	for _, b := range sideB {
		members[b] = struct{}{}
		holderPos[b] = snapshot.Preferences[b].Positions()
	}

	holderOf := make(map[string]string, len(sideB)) // side-B user -> accepted proposer
	next := make(map[string]int, len(sideA))        // proposer -> next list index

	free := make([]string, len(sideA))
	copy(free, sideA)

	for len(free) > 0 {
		a := free[0]
		free = free[1:]
		list := snapshot.Preferences[a]

		for next[a] < len(list) {
			candidate := list[next[a]].UserID
			next[a]++

			if _, onSide := members[candidate]; !onSide {
				continue // list entry is not on the opposite side
			}
			rank, listed := holderPos[candidate][a]
			if !listed {
				continue // holder does not consider this proposer eligible
			}

			current, held := holderOf[candidate]
			if !held {
				holderOf[candidate] = a

				break
			}
			if rank < holderPos[candidate][current] {
				holderOf[candidate] = a
				free = append(free, current) // displaced proposer re-enters

				break
			}
			// Rejected; try the next candidate on the list.
		}
	}

	marriage := make(types.Marriage, 2*len(holderOf))
	for b, a := range holderOf {
		switch {
		case a == snapshot.ShadowID:
			marriage[b] = snapshot.ShadowID
		case b == snapshot.ShadowID:
			marriage[a] = snapshot.ShadowID
		default:
			marriage[a] = b
			marriage[b] = a
		}
	}

	return marriage
}
