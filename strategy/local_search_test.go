package strategy

import (
	"math"
	"testing"

	"github.com/arloliu/pairwise/types"
	"github.com/stretchr/testify/require"
)

// mutual builds symmetric preference lists from an undirected score table so
// every listed pair is mutually eligible.
func mutual(scores map[[2]string]float64, ids ...string) map[string]types.PreferenceList {
	prefs := make(map[string]types.PreferenceList, len(ids)+1)
	for _, u := range ids {
		var l types.PreferenceList
		for _, v := range ids {
			if u == v {
				continue
			}
			key := [2]string{u, v}
			if v < u {
				key = [2]string{v, u}
			}
			if score, ok := scores[key]; ok {
				l = append(l, types.RankedCandidate{UserID: v, Score: score})
			}
		}
		prefs[u] = l
	}

	var shadowList types.PreferenceList
	for _, u := range ids {
		shadowList = append(shadowList, types.RankedCandidate{UserID: u, Score: 0})
	}
	prefs[shadowID] = shadowList

	return prefs
}

func localSnapshot(prefs map[string]types.PreferenceList) *types.MatchSnapshot {
	subs := make(types.Submissions, len(prefs))
	for id := range prefs {
		subs[id] = types.Submission{
			Answers:         types.AnswerVector{"q1": types.AnswerA},
			PrimaryQuestion: "q1",
			Scheme:          types.SchemeSimilar,
		}
	}

	return &types.MatchSnapshot{
		Submissions: subs,
		Preferences: prefs,
		ShadowID:    shadowID,
	}
}

func TestLocalSearch_Match(t *testing.T) {
	t.Run("rejects nil snapshot", func(t *testing.T) {
		_, err := NewLocalSearch().Match(nil)
		require.ErrorIs(t, err, types.ErrSnapshotRequired)
	})

	t.Run("greedy seed pairs the best-scoring couples", func(t *testing.T) {
		prefs := mutual(map[[2]string]float64{
			{"alice", "bob"}:   0.9,
			{"alice", "carol"}: 0.3,
			{"bob", "dave"}:    0.2,
			{"carol", "dave"}:  0.8,
		}, "alice", "bob", "carol", "dave")

		marriage, err := NewLocalSearch().Match(localSnapshot(prefs))
		require.NoError(t, err)

		require.Equal(t, "bob", marriage["alice"])
		require.Equal(t, "dave", marriage["carol"])
		require.NoError(t, marriage.Validate(shadowID))
	})

	t.Run("swap pass escapes a greedy trap", func(t *testing.T) {
		// Greedy commits a-b (0.9) first, forcing c-d (0.1): total 1.0.
		// The swap a-c (0.6) + b-d (0.6) totals 1.2 and must win.
		prefs := mutual(map[[2]string]float64{
			{"a", "b"}: 0.9,
			{"c", "d"}: 0.1,
			{"a", "c"}: 0.6,
			{"b", "d"}: 0.6,
		}, "a", "b", "c", "d")

		marriage, err := NewLocalSearch().Match(localSnapshot(prefs))
		require.NoError(t, err)

		require.Equal(t, "c", marriage["a"])
		require.Equal(t, "d", marriage["b"])
		require.NoError(t, marriage.Validate(shadowID))
	})

	t.Run("absorbs the odd user into the shadow", func(t *testing.T) {
		prefs := mutual(map[[2]string]float64{
			{"alice", "bob"}:   0.9,
			{"alice", "carol"}: 0.2,
			{"bob", "carol"}:   0.1,
		}, "alice", "bob", "carol")

		marriage, err := NewLocalSearch().Match(localSnapshot(prefs))
		require.NoError(t, err)

		require.Equal(t, "bob", marriage["alice"])
		require.Equal(t, shadowID, marriage["carol"])
		require.NoError(t, marriage.Validate(shadowID))
	})

	t.Run("ignores one-sided listings between real users", func(t *testing.T) {
		// bob never lists alice, so the pair is ineligible despite alice's
		// high directional score; both fall through to the shadow.
		prefs := map[string]types.PreferenceList{
			"alice":  {{UserID: "bob", Score: 0.9}},
			"bob":    {},
			shadowID: {{UserID: "alice", Score: 0}, {UserID: "bob", Score: 0}},
		}

		marriage, err := NewLocalSearch().Match(localSnapshot(prefs))
		require.NoError(t, err)

		require.Equal(t, shadowID, marriage["alice"])
		require.Equal(t, shadowID, marriage["bob"])
	})

	t.Run("honors the pass budget", func(t *testing.T) {
		prefs := mutual(map[[2]string]float64{
			{"a", "b"}: 0.9,
			{"c", "d"}: 0.1,
			{"a", "c"}: 0.6,
			{"b", "d"}: 0.6,
		}, "a", "b", "c", "d")

		// Budget of one pass still applies the single improving swap found
		// during that pass.
		marriage, err := NewLocalSearch(WithMaxPasses(1)).Match(localSnapshot(prefs))
		require.NoError(t, err)
		require.Equal(t, "c", marriage["a"])
	})

	t.Run("is deterministic across runs", func(t *testing.T) {
		prefs := mutual(map[[2]string]float64{
			{"a", "b"}: 0.5,
			{"a", "c"}: 0.5,
			{"a", "d"}: 0.5,
			{"b", "c"}: 0.5,
			{"b", "d"}: 0.5,
			{"c", "d"}: 0.5,
		}, "a", "b", "c", "d")

		matcher := NewLocalSearch()
		first, err := matcher.Match(localSnapshot(prefs))
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			again, err := matcher.Match(localSnapshot(prefs))
			require.NoError(t, err)
			require.Equal(t, first, again)
		}
	})

	t.Run("treats unrankable shadow directions as neutral", func(t *testing.T) {
		// A brand-new user lists the shadow at MinScore (no shared answers).
		// The shadow pair must stay absorbing at score 0, not -Inf, or the
		// swap pass would treat every re-pairing away from it as improving.
		prefs := map[string]types.PreferenceList{
			"alice":  {{UserID: shadowID, Score: math.Inf(-1)}},
			shadowID: {},
		}
		scores := newPairScores(localSnapshot(prefs))

		score, ok := scores.score("alice", shadowID)
		require.True(t, ok)
		require.Zero(t, score)

		marriage, err := NewLocalSearch().Match(localSnapshot(prefs))
		require.NoError(t, err)
		require.Equal(t, shadowID, marriage["alice"])
	})

	t.Run("never emits a self-match or shadow subject", func(t *testing.T) {
		prefs := mutual(map[[2]string]float64{
			{"a", "b"}: 0.4,
			{"b", "c"}: 0.6,
			{"a", "c"}: 0.5,
		}, "a", "b", "c")

		marriage, err := NewLocalSearch().Match(localSnapshot(prefs))
		require.NoError(t, err)

		_, hasShadowKey := marriage[shadowID]
		require.False(t, hasShadowKey)
		for subject, partner := range marriage {
			require.NotEqual(t, subject, partner)
		}
		require.NoError(t, marriage.Validate(shadowID))
	})
}
