package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pairtest "github.com/arloliu/pairwise/testing"
	"github.com/arloliu/pairwise/types"
)

func newTestNATSKV(t *testing.T) *NATSKV {
	t.Helper()

	_, nc := pairtest.StartEmbeddedNATS(t)
	s, err := NewNATSKV(t.Context(), nc, NATSKVConfig{
		QuestionsBucket:   "test-questions",
		SubmissionsBucket: "test-submissions",
		RoundsBucket:      "test-rounds",
	})
	require.NoError(t, err)

	return s
}

func TestNATSKV(t *testing.T) {
	t.Run("empty buckets fetch as empty, not as errors", func(t *testing.T) {
		s := newTestNATSKV(t)
		ctx := t.Context()

		questions, err := s.FetchQuestions(ctx)
		require.NoError(t, err)
		require.Empty(t, questions)

		subs, err := s.FetchSubmissions(ctx)
		require.NoError(t, err)
		require.Empty(t, subs)

		exclusions, err := s.FetchRecencyExclusion(ctx, 28*24*time.Hour)
		require.NoError(t, err)
		require.Empty(t, exclusions)
	})

	t.Run("questions round-trip", func(t *testing.T) {
		s := newTestNATSKV(t)
		ctx := t.Context()

		q := types.Question{ID: "q1", OptionA: "cats", OptionB: "dogs", Mean: 0.42}
		require.NoError(t, s.PutQuestion(ctx, q))

		questions, err := s.FetchQuestions(ctx)
		require.NoError(t, err)
		require.Len(t, questions, 1)
		require.Equal(t, q, questions["q1"])
	})

	t.Run("submissions round-trip", func(t *testing.T) {
		s := newTestNATSKV(t)
		ctx := t.Context()

		sub := types.Submission{
			Answers:         types.AnswerVector{"q1": types.AnswerA, "q2": types.AnswerB},
			PrimaryQuestion: "q1",
			Scheme:          types.SchemeComplementary,
		}
		require.NoError(t, s.PutSubmission(ctx, "alice", sub))

		subs, err := s.FetchSubmissions(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		require.Equal(t, sub, subs["alice"])
	})

	t.Run("put overwrites an existing submission", func(t *testing.T) {
		s := newTestNATSKV(t)
		ctx := t.Context()

		first := types.Submission{PrimaryQuestion: "q1", Scheme: types.SchemeSimilar}
		second := types.Submission{PrimaryQuestion: "q2", Scheme: types.SchemeSimilar}
		require.NoError(t, s.PutSubmission(ctx, "alice", first))
		require.NoError(t, s.PutSubmission(ctx, "alice", second))

		subs, err := s.FetchSubmissions(ctx)
		require.NoError(t, err)
		require.Equal(t, "q2", subs["alice"].PrimaryQuestion)
	})

	t.Run("persisted round feeds the recency exclusion", func(t *testing.T) {
		s := newTestNATSKV(t)
		ctx := t.Context()

		marriage := types.Marriage{
			"alice": "bob",
			"bob":   "alice",
			"carol": "shadow",
		}
		require.NoError(t, s.PersistMarriage(ctx, marriage, time.Now()))

		exclusions, err := s.FetchRecencyExclusion(ctx, 28*24*time.Hour)
		require.NoError(t, err)
		require.True(t, exclusions.Excluded("alice", "bob"))
		require.True(t, exclusions.Excluded("bob", "alice"))
		require.True(t, exclusions.Excluded("carol", "shadow"))
		require.False(t, exclusions.Excluded("alice", "carol"))
	})

	t.Run("rounds outside the window are ignored", func(t *testing.T) {
		s := newTestNATSKV(t)
		ctx := t.Context()

		old := time.Now().Add(-40 * 24 * time.Hour)
		recent := time.Now()
		require.NoError(t, s.PersistMarriage(ctx, types.Marriage{"alice": "bob", "bob": "alice"}, old))
		require.NoError(t, s.PersistMarriage(ctx, types.Marriage{"carol": "dave", "dave": "carol"}, recent))

		exclusions, err := s.FetchRecencyExclusion(ctx, 28*24*time.Hour)
		require.NoError(t, err)
		require.False(t, exclusions.Excluded("alice", "bob"))
		require.True(t, exclusions.Excluded("carol", "dave"))
	})

	t.Run("rounds accumulate under distinct keys", func(t *testing.T) {
		s := newTestNATSKV(t)
		ctx := t.Context()

		base := time.Now()
		require.NoError(t, s.PersistMarriage(ctx, types.Marriage{"alice": "bob", "bob": "alice"}, base))
		require.NoError(t, s.PersistMarriage(ctx, types.Marriage{"alice": "carol", "carol": "alice"}, base.Add(time.Hour)))

		exclusions, err := s.FetchRecencyExclusion(ctx, 28*24*time.Hour)
		require.NoError(t, err)
		require.True(t, exclusions.Excluded("alice", "bob"))
		require.True(t, exclusions.Excluded("alice", "carol"))
	})
}
