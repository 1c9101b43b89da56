// Package ranking builds per-user preference lists from pairwise scores.
package ranking

import (
	"math"
	"sort"

	"github.com/arloliu/pairwise/scoring"
	"github.com/arloliu/pairwise/types"
)

// Ranker turns a submission snapshot into ranked candidate lists.
//
// Candidate rules per subject:
//   - every other user in the snapshot, minus self
//   - minus users in the subject's recency-exclusion set
//   - minus pairs the scorer marks ineligible (insufficient shared answers)
//   - plus the shadow as a perpetual lowest-priority candidate, unless the
//     real candidate list already reaches the configured threshold
//
// The shadow is never recency-excluded: it is the fallback of last resort.
type Ranker struct {
	scorer          *scoring.Scorer
	shadowID        string
	shadowThreshold int
}

// New creates a ranker.
//
// Parameters:
//   - scorer: Pairwise scorer over the round's question bank
//   - shadowID: Reserved shadow participant id
//   - shadowThreshold: Real-candidate count at which the shadow is omitted
//
// Returns:
//   - *Ranker: Initialized ranker
func New(scorer *scoring.Scorer, shadowID string, shadowThreshold int) *Ranker {
	return &Ranker{
		scorer:          scorer,
		shadowID:        shadowID,
		shadowThreshold: shadowThreshold,
	}
}

// Build computes preference lists for every user in the snapshot.
//
// Lists are sorted by descending score with exact ties broken by ascending
// user id, so identical input always yields identical lists. The shadow's
// own list covers the full population with no threshold clipping; the
// stable matcher needs it when the shadow is patched into a side.
//
// Parameters:
//   - subs: Round snapshot including the rolled shadow submission
//   - exclusions: Recency-exclusion sets
//
// Returns:
//   - map[string]types.PreferenceList: Per-user ranked candidate lists
func (r *Ranker) Build(subs types.Submissions, exclusions types.RecencyExclusion) map[string]types.PreferenceList {
	prefs := make(map[string]types.PreferenceList, len(subs))
	for subject := range subs {
		prefs[subject] = r.buildFor(subject, subs, exclusions)
	}

	return prefs
}

// buildFor computes one subject's preference list.
func (r *Ranker) buildFor(subject string, subs types.Submissions, exclusions types.RecencyExclusion) types.PreferenceList {
	own := subs[subject]

	list := make(types.PreferenceList, 0, len(subs)-1)
	shadowScore := scoring.MinScore
	shadowPresent := false

	for candidate, sub := range subs {
		if candidate == subject {
			continue
		}
		if candidate == r.shadowID {
			shadowPresent = true
			shadowScore = r.scorer.Score(own.Answers, sub.Answers, own.Scheme)

			continue
		}
		if subject != r.shadowID && exclusions.Excluded(subject, candidate) {
			continue
		}

		score := r.scorer.Score(own.Answers, sub.Answers, own.Scheme)
		if math.IsInf(score, -1) {
			continue // no usable overlap, maximally incompatible
		}
		list = append(list, types.RankedCandidate{UserID: candidate, Score: score})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}

		return list[i].UserID < list[j].UserID
	})

	// The shadow ranks last regardless of its score: it is a parity and
	// cold-start fallback, not a preferred partner. Subjects with enough
	// real candidates do not list it at all.
	if shadowPresent && subject != r.shadowID && len(list) < r.shadowThreshold {
		list = append(list, types.RankedCandidate{UserID: r.shadowID, Score: shadowScore})
	}

	return list
}
