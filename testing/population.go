package testing

import (
	"fmt"
	"math/rand"

	"github.com/arloliu/pairwise/types"
)

// PopulationConfig controls GeneratePopulation.
type PopulationConfig struct {
	// Users is the number of real users to generate.
	Users int

	// Questions is the number of questions in the bank.
	Questions int

	// AnswerRate is the probability that a user answered any given question.
	// Defaults to 1.0 (everyone answers everything).
	AnswerRate float64

	// ComplementaryRate is the fraction of users seeking complementary
	// partners instead of similar ones. Defaults to 0.
	ComplementaryRate float64

	// Seed drives the deterministic random source.
	Seed int64
}

// GeneratePopulation builds a deterministic random question bank and
// submission set for matching tests and benchmarks.
//
// User ids are "user-0001".., question ids "q-001"... Question means are
// drawn uniformly from (0.1, 0.9) so no question is degenerate. Each user's
// primary question is picked uniformly from the questions they answered.
//
// Parameters:
//   - cfg: Generation parameters
//
// Returns:
//   - map[string]types.Question: Generated question bank
//   - types.Submissions: Generated submissions (real users only)
func GeneratePopulation(cfg PopulationConfig) (map[string]types.Question, types.Submissions) {
	if cfg.AnswerRate <= 0 {
		cfg.AnswerRate = 1.0
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic test data

	questions := make(map[string]types.Question, cfg.Questions)
	ids := make([]string, 0, cfg.Questions)
	for i := 0; i < cfg.Questions; i++ {
		id := fmt.Sprintf("q-%03d", i)
		questions[id] = types.Question{
			ID:      id,
			OptionA: fmt.Sprintf("option A of %s", id),
			OptionB: fmt.Sprintf("option B of %s", id),
			Mean:    0.1 + 0.8*rng.Float64(),
		}
		ids = append(ids, id)
	}

	submissions := make(types.Submissions, cfg.Users)
	for i := 0; i < cfg.Users; i++ {
		answers := make(types.AnswerVector)
		var answered []string
		for _, qid := range ids {
			if rng.Float64() >= cfg.AnswerRate {
				continue
			}
			answer := types.AnswerA
			if rng.Float64() < questions[qid].Mean {
				answer = types.AnswerB
			}
			answers[qid] = answer
			answered = append(answered, qid)
		}

		primary := ""
		if len(answered) > 0 {
			primary = answered[rng.Intn(len(answered))]
		} else if len(ids) > 0 {
			primary = ids[rng.Intn(len(ids))]
		}

		scheme := types.SchemeSimilar
		if rng.Float64() < cfg.ComplementaryRate {
			scheme = types.SchemeComplementary
		}

		submissions[fmt.Sprintf("user-%04d", i)] = types.Submission{
			Answers:         answers,
			PrimaryQuestion: primary,
			Scheme:          scheme,
		}
	}

	return questions, submissions
}
