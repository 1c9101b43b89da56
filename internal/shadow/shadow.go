// Package shadow implements the synthetic filler participant.
//
// The shadow participant guarantees every real user a candidate: it absorbs
// one side of an odd-parity or skewed population and serves brand-new users
// whose answer overlap with everyone else is empty. Its id is configuration
// owned by the matching core; it is deliberately NOT tied to any
// administrative principal of the embedding application.
package shadow

import (
	"math"
	"sort"
	"time"

	"github.com/arloliu/pairwise/types"
	"github.com/zeebo/xxh3"
)

// DefaultID is the default reserved shadow participant id.
const DefaultID = "shadow"

// SeedFromTime derives a roll seed from the round start time.
//
// Used when no fixed seed is configured, so each round re-rolls the shadow
// while runs replayed with the same start time stay reproducible.
//
// Parameters:
//   - t: Round start time
//
// Returns:
//   - uint64: Derived seed
func SeedFromTime(t time.Time) uint64 {
	return xxh3.HashString(t.UTC().Format(time.RFC3339Nano))
}

// Roll regenerates the shadow's submission for one round.
//
// Each question is answered B with probability equal to its population mean,
// decided by an xxh3 hash of the question id under the given seed. The roll
// is fully deterministic per (bank, seed) pair and is resampled every round
// so a static shadow vector cannot bias similarity aggregates.
//
// The shadow's primary question is the bank's most controversial one (mean
// closest to 0.5, ties by ascending id) and its scheme is seek-similar.
//
// Parameters:
//   - questions: Question bank with population means
//   - seed: Roll seed (see SeedFromTime)
//
// Returns:
//   - types.Submission: The shadow's submission for this round
func Roll(questions map[string]types.Question, seed uint64) types.Submission {
	ids := make([]string, 0, len(questions))
	for id := range questions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	answers := make(types.AnswerVector, len(ids))
	primary := ""
	bestDistance := math.Inf(1)

	for _, id := range ids {
		q := questions[id]

		// Uniform draw in [0, 1) from the hash of (seed, question id).
		draw := float64(xxh3.HashStringSeed(id, seed)) / float64(math.MaxUint64)
		if draw < q.Mean {
			answers[id] = types.AnswerB
		} else {
			answers[id] = types.AnswerA
		}

		if distance := math.Abs(q.Mean - 0.5); distance < bestDistance {
			bestDistance = distance
			primary = id
		}
	}

	return types.Submission{
		Answers:         answers,
		PrimaryQuestion: primary,
		Scheme:          types.SchemeSimilar,
	}
}
