package types

// Answer is a user's response to a binary A-or-B question.
//
// AnswerNone marks an unanswered question. Unanswered questions are excluded
// from similarity computation entirely; they are never treated as a third
// preference value.
type Answer int

const (
	// AnswerNone indicates the question has not been answered.
	AnswerNone Answer = iota

	// AnswerA indicates the first option was chosen.
	AnswerA

	// AnswerB indicates the second option was chosen.
	AnswerB
)

// String returns the string representation of the answer.
func (a Answer) String() string {
	switch a {
	case AnswerNone:
		return "None"
	case AnswerA:
		return "A"
	case AnswerB:
		return "B"
	default:
		return "Unknown"
	}
}

// Question represents a binary survey item with two labeled options.
//
// Mean is the fraction of the population that chose option B. It is
// maintained by the embedding application and treated as read-only input
// here; the shadow participant is excluded from it.
type Question struct {
	// ID uniquely identifies the question.
	ID string `json:"id"`

	// OptionA is the label of the first option.
	OptionA string `json:"optionA"`

	// OptionB is the label of the second option.
	OptionB string `json:"optionB"`

	// Mean is the fraction of users answering OptionB, in [0, 1].
	Mean float64 `json:"mean"`
}

// Variance returns the Bernoulli variance of the question, Mean*(1-Mean).
//
// Controversial questions (mean near 0.5) have maximal variance and dominate
// similarity scores; near-unanimous questions contribute little.
//
// Returns:
//   - float64: Variance in [0, 0.25]
func (q Question) Variance() float64 {
	return q.Mean * (1 - q.Mean)
}

// AnswerVector maps question ids to a user's answers.
//
// A missing key and AnswerNone are equivalent: both mean unanswered.
type AnswerVector map[string]Answer

// Answered reports whether the question with the given id has been answered.
func (v AnswerVector) Answered(questionID string) bool {
	return v[questionID] == AnswerA || v[questionID] == AnswerB
}
