package store

import (
	"testing"
	"time"

	"github.com/arloliu/pairwise/types"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := t.Context()

	t.Run("starts empty", func(t *testing.T) {
		m := NewMemory()

		questions, err := m.FetchQuestions(ctx)
		require.NoError(t, err)
		require.Empty(t, questions)

		subs, err := m.FetchSubmissions(ctx)
		require.NoError(t, err)
		require.Empty(t, subs)

		exclusions, err := m.FetchRecencyExclusion(ctx, 28*24*time.Hour)
		require.NoError(t, err)
		require.Empty(t, exclusions)
	})

	t.Run("returns copies, not internal state", func(t *testing.T) {
		m := NewMemory()
		m.SetQuestions(map[string]types.Question{"q1": {ID: "q1", Mean: 0.5}})

		questions, err := m.FetchQuestions(ctx)
		require.NoError(t, err)
		questions["q2"] = types.Question{ID: "q2"}

		again, err := m.FetchQuestions(ctx)
		require.NoError(t, err)
		require.Len(t, again, 1)
	})

	t.Run("persisted rounds feed the recency exclusion", func(t *testing.T) {
		m := NewMemory()
		marriage := types.Marriage{
			"alice": "bob",
			"bob":   "alice",
			"carol": "shadow",
		}

		require.NoError(t, m.PersistMarriage(ctx, marriage, time.Now()))
		require.Equal(t, 1, m.Rounds())

		exclusions, err := m.FetchRecencyExclusion(ctx, 28*24*time.Hour)
		require.NoError(t, err)
		require.True(t, exclusions.Excluded("alice", "bob"))
		require.True(t, exclusions.Excluded("bob", "alice"))
		require.True(t, exclusions.Excluded("carol", "shadow"))
		require.False(t, exclusions.Excluded("alice", "carol"))
	})

	t.Run("rounds outside the window are ignored", func(t *testing.T) {
		m := NewMemory()
		marriage := types.Marriage{"alice": "bob", "bob": "alice"}

		old := time.Now().Add(-40 * 24 * time.Hour)
		require.NoError(t, m.PersistMarriage(ctx, marriage, old))

		exclusions, err := m.FetchRecencyExclusion(ctx, 28*24*time.Hour)
		require.NoError(t, err)
		require.False(t, exclusions.Excluded("alice", "bob"))
	})

	t.Run("records both rows of every pair", func(t *testing.T) {
		m := NewMemory()
		matchedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		marriage := types.Marriage{"alice": "bob", "bob": "alice", "carol": "shadow"}

		require.NoError(t, m.PersistMarriage(ctx, marriage, matchedAt))

		records := m.LastRecords()
		require.Len(t, records, 4)
		for _, rec := range records {
			require.Equal(t, matchedAt, rec.MatchedAt)
		}
	})

	t.Run("fail toggle aborts persistence", func(t *testing.T) {
		m := NewMemory()
		m.SetFailPersist(true)

		err := m.PersistMarriage(ctx, types.Marriage{"alice": "bob", "bob": "alice"}, time.Now())
		require.ErrorIs(t, err, types.ErrPersistFailed)
		require.Equal(t, 0, m.Rounds())

		m.SetFailPersist(false)
		require.NoError(t, m.PersistMarriage(ctx, types.Marriage{"alice": "bob", "bob": "alice"}, time.Now()))
		require.Equal(t, 1, m.Rounds())
	})
}
