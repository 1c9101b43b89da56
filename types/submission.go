package types

// Scheme is a per-user directive controlling how agreement maps to
// compatibility.
//
// A seek-similar user scores agreement positively; a seek-complementary user
// scores disagreement positively. Preference lists are always built with the
// subject user's own scheme, so each list is internally consistent even when
// two users' schemes differ.
type Scheme int

const (
	// SchemeSimilar rewards matching answers on shared questions.
	SchemeSimilar Scheme = iota

	// SchemeComplementary rewards differing answers on shared questions.
	SchemeComplementary
)

// String returns the string representation of the scheme.
func (s Scheme) String() string {
	switch s {
	case SchemeSimilar:
		return "Similar"
	case SchemeComplementary:
		return "Complementary"
	default:
		return "Unknown"
	}
}

// Submission is one user's matching input for a round.
type Submission struct {
	// Answers is the user's answer vector over the question bank.
	Answers AnswerVector `json:"answers"`

	// PrimaryQuestion is the question id used to partition the population
	// into two matching sides for the stable matcher.
	PrimaryQuestion string `json:"primaryQuestion"`

	// Scheme is the user's association directive.
	Scheme Scheme `json:"scheme"`
}

// Submissions is a point-in-time snapshot mapping user id to submission.
//
// The snapshot is taken once at round start; concurrent answer updates do
// not affect a running round. Eligibility filtering (e.g. a minimum answered
// question count) is the store's responsibility.
type Submissions map[string]Submission

// RecencyExclusion maps each user id to the set of user ids it was matched
// with inside the recency window. Excluded users are hard-removed from
// candidacy for the current round.
type RecencyExclusion map[string]map[string]struct{}

// Excluded reports whether candidate is recency-excluded for subject.
func (r RecencyExclusion) Excluded(subject, candidate string) bool {
	set, ok := r[subject]
	if !ok {
		return false
	}
	_, excluded := set[candidate]

	return excluded
}

// Add records that subject and candidate were matched recently, in both
// directions.
func (r RecencyExclusion) Add(subject, candidate string) {
	if r[subject] == nil {
		r[subject] = make(map[string]struct{})
	}
	if r[candidate] == nil {
		r[candidate] = make(map[string]struct{})
	}
	r[subject][candidate] = struct{}{}
	r[candidate][subject] = struct{}{}
}

// RankedCandidate is one entry of a preference list.
type RankedCandidate struct {
	// UserID identifies the candidate.
	UserID string `json:"userId"`

	// Score is the directional compatibility score from the list owner's
	// point of view (computed with the owner's scheme).
	Score float64 `json:"score"`
}

// PreferenceList is a total order over a user's eligible candidates, best
// first. Exact score ties are broken by ascending user id so runs with
// identical input are reproducible.
type PreferenceList []RankedCandidate

// Positions returns a map from candidate id to list position (0 = most
// preferred). Holders in the stable matcher use it for O(1) comparisons.
//
// Returns:
//   - map[string]int: Candidate id to rank position
func (p PreferenceList) Positions() map[string]int {
	pos := make(map[string]int, len(p))
	for i, c := range p {
		pos[c.UserID] = i
	}

	return pos
}
