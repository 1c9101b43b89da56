package strategy

import (
	"math"
	"sort"

	"github.com/arloliu/pairwise/types"
)

// improvementEpsilon guards the swap loop against floating-point churn:
// a swap must improve the score sum by more than this to be applied.
const improvementEpsilon = 1e-12

// LocalSearch implements greedy matching with pairwise-swap improvement.
type LocalSearch struct {
	maxPasses int
}

var _ types.MatchStrategy = (*LocalSearch)(nil)

// LocalSearchOption configures a LocalSearch strategy.
type LocalSearchOption func(*LocalSearch)

// NewLocalSearch creates a new local-search strategy.
//
// The strategy seeds a matching greedily from the highest-scoring eligible
// pairs, absorbs leftovers into the shadow, then hill-climbs by re-pairing
// two committed pairs whenever that strictly increases the total score.
// The result is a local optimum, not a global one — the explicit trade-off
// against Stable's guarantee, chosen for scale and for populations whose
// primary-question split is too skewed for two sides.
//
// Parameters:
//   - opts: Optional configuration (WithMaxPasses)
//
// Returns:
//   - *LocalSearch: Initialized local-search strategy
//
// Example:
//
//	matcher := strategy.NewLocalSearch(strategy.WithMaxPasses(64))
func NewLocalSearch(opts ...LocalSearchOption) *LocalSearch {
	ls := &LocalSearch{
		maxPasses: 32,
	}

	for _, opt := range opts {
		opt(ls)
	}

	if ls.maxPasses < 1 {
		ls.maxPasses = 1
	}

	return ls
}

// WithMaxPasses sets the swap-scan budget: the improvement loop stops after
// this many full passes even if improving swaps remain. This is the only
// bound on the runtime of an otherwise unbounded climb. Default 32.
//
// Parameters:
//   - n: Maximum number of full improvement passes (min 1)
//
// Returns:
//   - LocalSearchOption: Configuration option
func WithMaxPasses(n int) LocalSearchOption {
	return func(ls *LocalSearch) {
		ls.maxPasses = n
	}
}

// Match computes a locally optimal pairing for the snapshot.
//
// Parameters:
//   - snapshot: Round input built by the engine
//
// Returns:
//   - types.Marriage: Locally optimal assignment
//   - error: types.ErrSnapshotRequired for nil input
func (ls *LocalSearch) Match(snapshot *types.MatchSnapshot) (types.Marriage, error) {
	if snapshot == nil {
		return nil, types.ErrSnapshotRequired
	}

	scores := newPairScores(snapshot)
	pairs := greedySeed(snapshot, scores)
	ls.improve(pairs, scores, snapshot.ShadowID)

	marriage := make(types.Marriage, 2*len(pairs))
	for _, p := range pairs {
		u, v := p[0], p[1]
		switch {
		case u == snapshot.ShadowID && v == snapshot.ShadowID:
			// Emptied by a swap; nothing to record.
		case v == snapshot.ShadowID:
			marriage[u] = snapshot.ShadowID
		case u == snapshot.ShadowID:
			marriage[v] = snapshot.ShadowID
		default:
			marriage[u] = v
			marriage[v] = u
		}
	}

	return marriage, nil
}

// pairScores caches the symmetric score of every scoreable pair.
//
// A real pair is eligible only when each member appears on the other's
// preference list (mutual eligibility); its score is the mean of the two
// directional scores. Pairs with the shadow are always eligible (the shadow
// is absorbing) and use the mean of whichever directions exist.
type pairScores struct {
	directional map[string]map[string]float64
	shadowID    string
}

func newPairScores(snapshot *types.MatchSnapshot) *pairScores {
	directional := make(map[string]map[string]float64, len(snapshot.Preferences))
	for subject, list := range snapshot.Preferences {
		m := make(map[string]float64, len(list))
		for _, c := range list {
			m[c.UserID] = c.Score
		}
		directional[subject] = m
	}

	return &pairScores{directional: directional, shadowID: snapshot.ShadowID}
}

// score returns the symmetric pair score and whether the pair is eligible.
func (ps *pairScores) score(u, v string) (float64, bool) {
	if u == ps.shadowID && v == ps.shadowID {
		return 0, true // an empty slot, contributes nothing
	}
	forward, fok := ps.directional[u][v]
	backward, bok := ps.directional[v][u]

	if u == ps.shadowID || v == ps.shadowID {
		// A MinScore direction carries no information; treat it like a
		// missing one so an absorbed user never drags the sum to -Inf.
		if fok && math.IsInf(forward, -1) {
			fok = false
		}
		if bok && math.IsInf(backward, -1) {
			bok = false
		}
		switch {
		case fok && bok:
			return (forward + backward) / 2, true
		case fok:
			return forward, true
		case bok:
			return backward, true
		default:
			return 0, true // absorbing even with no usable overlap
		}
	}

	if !fok || !bok {
		return 0, false
	}
	score := (forward + backward) / 2
	if math.IsInf(score, -1) {
		return 0, false
	}

	return score, true
}

// greedySeed builds the initial matching: commit the highest-scoring
// unmatched pair until none remains, then absorb leftovers into the shadow.
func greedySeed(snapshot *types.MatchSnapshot, scores *pairScores) [][2]string {
	ids := make([]string, 0, len(snapshot.Submissions))
	for id := range snapshot.Submissions {
		if id != snapshot.ShadowID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	type scoredPair struct {
		u, v  string
		score float64
	}
	candidates := make([]scoredPair, 0, len(ids)*(len(ids)-1)/2)
	for i, u := range ids {
		for _, v := range ids[i+1:] {
			if score, ok := scores.score(u, v); ok {
				candidates = append(candidates, scoredPair{u: u, v: v, score: score})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].u != candidates[j].u {
			return candidates[i].u < candidates[j].u
		}

		return candidates[i].v < candidates[j].v
	})

	committed := make(map[string]struct{}, len(ids))
	pairs := make([][2]string, 0, len(ids)/2+1)
	for _, c := range candidates {
		if _, taken := committed[c.u]; taken {
			continue
		}
		if _, taken := committed[c.v]; taken {
			continue
		}
		committed[c.u] = struct{}{}
		committed[c.v] = struct{}{}
		pairs = append(pairs, [2]string{c.u, c.v})
	}

	// Leftovers (odd parity, or ineligible with every remaining user)
	// absorb into the shadow.
	for _, id := range ids {
		if _, taken := committed[id]; !taken {
			pairs = append(pairs, [2]string{id, snapshot.ShadowID})
		}
	}

	return pairs
}

// improve hill-climbs the matching in place.
//
// Every pass scans all pairs of committed pairs (a,b),(c,d), evaluates the
// two re-pairings (a,c)+(b,d) and (a,d)+(b,c), and applies the better one
// when it strictly increases the score sum. The loop ends on the first
// clean pass or when the pass budget runs out, so the total score is
// non-decreasing and termination is guaranteed.
func (ls *LocalSearch) improve(pairs [][2]string, scores *pairScores, shadowID string) {
	for pass := 0; pass < ls.maxPasses; pass++ {
		dirty := false

		for i := range pairs {
			for j := i + 1; j < len(pairs); j++ {
				a, b := pairs[i][0], pairs[i][1]
				c, d := pairs[j][0], pairs[j][1]

				currentAB, _ := scores.score(a, b)
				currentCD, _ := scores.score(c, d)
				current := currentAB + currentCD

				best := current
				var bestI, bestJ [2]string

				if s, ok := swapSum(scores, a, c, b, d); ok && s > best+improvementEpsilon {
					best = s
					bestI = orient(a, c, shadowID)
					bestJ = orient(b, d, shadowID)
				}
				if s, ok := swapSum(scores, a, d, b, c); ok && s > best+improvementEpsilon {
					best = s
					bestI = orient(a, d, shadowID)
					bestJ = orient(b, c, shadowID)
				}

				if best > current+improvementEpsilon {
					pairs[i] = bestI
					pairs[j] = bestJ
					dirty = true
				}
			}
		}

		if !dirty {
			return
		}
	}
}

// swapSum returns the combined score of the two re-paired couples, or
// ok=false when either new pair is ineligible.
func swapSum(scores *pairScores, u1, v1, u2, v2 string) (float64, bool) {
	first, ok := scores.score(u1, v1)
	if !ok {
		return 0, false
	}
	second, ok := scores.score(u2, v2)
	if !ok {
		return 0, false
	}

	return first + second, true
}

// orient normalizes a pair so the shadow (if present) sits second and real
// pairs are ordered by id, keeping the pair list deterministic.
func orient(u, v, shadowID string) [2]string {
	if u == shadowID && v != shadowID {
		return [2]string{v, u}
	}
	if u != shadowID && v != shadowID && v < u {
		return [2]string{v, u}
	}

	return [2]string{u, v}
}
