package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuestion_Variance(t *testing.T) {
	t.Run("controversial question has maximal variance", func(t *testing.T) {
		q := Question{ID: "q1", Mean: 0.5}
		require.InDelta(t, 0.25, q.Variance(), 1e-12)
	})

	t.Run("unanimous question has zero variance", func(t *testing.T) {
		q := Question{ID: "q2", Mean: 1.0}
		require.Zero(t, q.Variance())
	})
}

func TestAnswerVector_Answered(t *testing.T) {
	v := AnswerVector{"q1": AnswerA, "q2": AnswerNone}

	require.True(t, v.Answered("q1"))
	require.False(t, v.Answered("q2"))
	require.False(t, v.Answered("missing"))
}

func TestRecencyExclusion_Add(t *testing.T) {
	r := make(RecencyExclusion)
	r.Add("alice", "bob")

	require.True(t, r.Excluded("alice", "bob"))
	require.True(t, r.Excluded("bob", "alice"))
	require.False(t, r.Excluded("alice", "carol"))
}
