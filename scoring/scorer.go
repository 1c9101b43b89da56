package scoring

import (
	"math"
	"sort"

	"github.com/arloliu/pairwise/types"
)

// MinScore is the sentinel for maximally incompatible pairs: users sharing
// fewer answered questions than the configured minimum. Rankers drop
// candidates at this score, effectively excluding the pair.
var MinScore = math.Inf(-1)

// Scorer computes directional compatibility scores over a question bank.
//
// Scorers are immutable after construction and safe for concurrent use.
type Scorer struct {
	questions map[string]types.Question
	minShared int
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithMinSharedAnswers sets the minimum number of questions both users must
// have answered before the pair is scoreable. Below the minimum the pair
// scores MinScore. Values below 1 are clamped to 1.
//
// Parameters:
//   - n: Minimum shared answered question count
//
// Returns:
//   - Option: Functional option for NewScorer
func WithMinSharedAnswers(n int) Option {
	return func(s *Scorer) {
		s.minShared = n
	}
}

// NewScorer creates a scorer for the given question bank.
//
// Parameters:
//   - questions: Question bank with externally maintained means
//   - opts: Optional configuration (WithMinSharedAnswers)
//
// Returns:
//   - *Scorer: Initialized scorer
//
// Example:
//
//	scorer := scoring.NewScorer(questions, scoring.WithMinSharedAnswers(3))
//	score := scorer.Score(a.Answers, b.Answers, a.Scheme)
func NewScorer(questions map[string]types.Question, opts ...Option) *Scorer {
	s := &Scorer{
		questions: questions,
		minShared: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.minShared < 1 {
		s.minShared = 1
	}

	return s
}

// Score computes the directional compatibility score of candidate for
// subject, under the subject's scheme.
//
// The algorithm:
//  1. Collect questions answered by both users.
//  2. If fewer than the minimum shared count, return MinScore.
//  3. Per shared question, contribute +variance when the agreement test of
//     the directive holds (equal answers for seek-similar, differing for
//     seek-complementary), -variance otherwise.
//  4. Normalize by the shared count, so sparse overlap is not penalized for
//     volume but is rewarded less confidently.
//
// The score is directional: when the two users' schemes differ,
// Score(a, b, schemeOfA) need not equal Score(b, a, schemeOfB). With equal
// schemes the score is symmetric.
//
// Parameters:
//   - subject: Subject user's answer vector
//   - candidate: Candidate user's answer vector
//   - directive: Subject's association scheme
//
// Returns:
//   - float64: Mean contribution per shared question, or MinScore
func (s *Scorer) Score(subject, candidate types.AnswerVector, directive types.Scheme) float64 {
	shared := make([]string, 0, len(subject))
	for id, a := range subject {
		if a != types.AnswerA && a != types.AnswerB {
			continue
		}
		b := candidate[id]
		if b != types.AnswerA && b != types.AnswerB {
			continue
		}
		if _, ok := s.questions[id]; !ok {
			continue // answer to a question no longer in the bank
		}
		shared = append(shared, id)
	}

	if len(shared) < s.minShared {
		return MinScore
	}

	// Accumulate in sorted question order. Float addition is not
	// associative, so summing in map-iteration order would make the score
	// differ between calls on identical input.
	sort.Strings(shared)

	sum := 0.0
	for _, id := range shared {
		agrees := subject[id] == candidate[id]
		if directive == types.SchemeComplementary {
			agrees = !agrees
		}
		if agrees {
			sum += s.questions[id].Variance()
		} else {
			sum -= s.questions[id].Variance()
		}
	}

	return sum / float64(len(shared))
}

// PairScore computes the single symmetric score of a pair by combining the
// two directional scores with their arithmetic mean.
//
// This is the pinned combination rule for mixed-scheme pairs: neither
// user's directive wins, both weigh equally. With identical schemes the
// directional scores coincide and the mean is that score. If either
// direction is MinScore the pair is ineligible and MinScore is returned.
//
// Parameters:
//   - a: First user's submission
//   - b: Second user's submission
//
// Returns:
//   - float64: Symmetric pair score, or MinScore for ineligible pairs
func (s *Scorer) PairScore(a, b types.Submission) float64 {
	forward := s.Score(a.Answers, b.Answers, a.Scheme)
	backward := s.Score(b.Answers, a.Answers, b.Scheme)
	if math.IsInf(forward, -1) || math.IsInf(backward, -1) {
		return MinScore
	}

	return (forward + backward) / 2
}
