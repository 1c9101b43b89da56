package pairwise

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pairwise/store"
	"github.com/arloliu/pairwise/strategy"
	pairtest "github.com/arloliu/pairwise/testing"
	"github.com/arloliu/pairwise/types"
)

func testQuestions() map[string]Question {
	return map[string]Question{
		"q1": {ID: "q1", OptionA: "a", OptionB: "b", Mean: 0.5},
		"q2": {ID: "q2", OptionA: "a", OptionB: "b", Mean: 0.5},
	}
}

// fourUserPopulation pairs cleanly: alice-carol and bob-dave are the unique
// mutually preferred couples across the primary-question sides.
func fourUserPopulation() Submissions {
	answers := func(a1, a2 Answer) AnswerVector {
		return AnswerVector{"q1": a1, "q2": a2}
	}

	return Submissions{
		"alice": {Answers: answers(AnswerA, AnswerA), PrimaryQuestion: "q1", Scheme: SchemeSimilar},
		"bob":   {Answers: answers(AnswerA, AnswerB), PrimaryQuestion: "q1", Scheme: SchemeSimilar},
		"carol": {Answers: answers(AnswerB, AnswerA), PrimaryQuestion: "q1", Scheme: SchemeSimilar},
		"dave":  {Answers: answers(AnswerB, AnswerB), PrimaryQuestion: "q1", Scheme: SchemeSimilar},
	}
}

func newTestStore() *store.Memory {
	m := store.NewMemory()
	m.SetQuestions(testQuestions())
	m.SetSubmissions(fourUserPopulation())

	return m
}

// roundHooks returns hooks and channels delivering round outcomes.
func roundHooks() (*Hooks, chan RoundResult, chan error) {
	completed := make(chan RoundResult, 8)
	failed := make(chan error, 8)

	return &Hooks{
		OnRoundCompleted: func(_ context.Context, result RoundResult) error {
			completed <- result
			return nil
		},
		OnRoundFailed: func(_ context.Context, err error) error {
			failed <- err
			return nil
		},
	}, completed, failed
}

func waitResult(t *testing.T, completed chan RoundResult) RoundResult {
	t.Helper()

	select {
	case result := <-completed:
		return result
	case <-time.After(5 * time.Second):
		t.Fatal("round did not complete in time")
		return RoundResult{}
	}
}

func waitFailure(t *testing.T, failed chan error) error {
	t.Helper()

	select {
	case err := <-failed:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("round did not fail in time")
		return nil
	}
}

func TestNewEngine(t *testing.T) {
	cfg := TestConfig()

	t.Run("rejects nil config", func(t *testing.T) {
		_, err := NewEngine(nil, newTestStore(), strategy.NewStable())
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects nil store", func(t *testing.T) {
		_, err := NewEngine(&cfg, nil, strategy.NewStable())
		require.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("rejects nil strategy", func(t *testing.T) {
		_, err := NewEngine(&cfg, newTestStore(), nil)
		require.ErrorIs(t, err, ErrMatchStrategyRequired)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		bad := TestConfig()
		bad.MinSharedAnswers = -1
		_, err := NewEngine(&bad, newTestStore(), strategy.NewStable())
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("applies defaults to a zero config", func(t *testing.T) {
		var zero Config
		engine, err := NewEngine(&zero, newTestStore(), strategy.NewStable())
		require.NoError(t, err)
		require.Equal(t, 24*time.Hour, zero.MatchInterval)
		require.NoError(t, engine.Close(t.Context()))
	})
}

func TestEngine_Round(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("runs a full round and persists it", func(t *testing.T) {
		cfg := TestConfig()
		st := newTestStore()
		hooks, completed, _ := roundHooks()

		engine, err := NewEngine(&cfg, st, strategy.NewStable(),
			WithHooks(hooks),
			WithLogger(pairtest.NewTestLogger(t)),
		)
		require.NoError(t, err)
		defer engine.Close(t.Context())

		require.True(t, engine.CheckAndTrigger(now))
		result := waitResult(t, completed)

		require.Equal(t, now, result.StartedAt)
		require.Equal(t, 4, result.Population)
		require.Equal(t, 2, result.MatchedPairs)
		require.Zero(t, result.ShadowAbsorbed)
		require.Zero(t, result.Unmatched)
		require.Equal(t, "carol", result.Marriage["alice"])
		require.Equal(t, "dave", result.Marriage["bob"])
		require.NoError(t, result.Marriage.Validate(cfg.ShadowID))

		require.Equal(t, 1, st.Rounds())
		_, last := engine.CurrentStatus()
		require.Equal(t, now, last)
	})

	t.Run("odd population absorbs into the shadow", func(t *testing.T) {
		cfg := TestConfig()
		cfg.ShadowCandidateThreshold = 10
		st := newTestStore()
		subs := fourUserPopulation()
		delete(subs, "dave")
		st.SetSubmissions(subs)
		hooks, completed, _ := roundHooks()

		engine, err := NewEngine(&cfg, st, strategy.NewStable(), WithHooks(hooks))
		require.NoError(t, err)
		defer engine.Close(t.Context())

		require.True(t, engine.CheckAndTrigger(now))
		result := waitResult(t, completed)

		require.Equal(t, 3, result.Population)
		require.Equal(t, 1, result.MatchedPairs)
		require.Equal(t, 1, result.ShadowAbsorbed)
		require.Zero(t, result.Unmatched)
	})

	t.Run("ignores a stored submission under the shadow id", func(t *testing.T) {
		cfg := TestConfig()
		st := newTestStore()
		subs := fourUserPopulation()
		subs[cfg.ShadowID] = Submission{PrimaryQuestion: "q1", Scheme: SchemeSimilar}
		st.SetSubmissions(subs)
		hooks, completed, _ := roundHooks()

		engine, err := NewEngine(&cfg, st, strategy.NewStable(), WithHooks(hooks))
		require.NoError(t, err)
		defer engine.Close(t.Context())

		require.True(t, engine.CheckAndTrigger(now))
		result := waitResult(t, completed)
		require.Equal(t, 4, result.Population)
	})

	t.Run("works with the local search strategy", func(t *testing.T) {
		cfg := TestConfig()
		st := newTestStore()
		hooks, completed, _ := roundHooks()

		engine, err := NewEngine(&cfg, st, strategy.NewLocalSearch(), WithHooks(hooks))
		require.NoError(t, err)
		defer engine.Close(t.Context())

		require.True(t, engine.CheckAndTrigger(now))
		result := waitResult(t, completed)

		require.Equal(t, 2, result.MatchedPairs)
		require.NoError(t, result.Marriage.Validate(cfg.ShadowID))
	})
}

func TestEngine_Trigger(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("only one concurrent trigger wins", func(t *testing.T) {
		cfg := TestConfig()
		hooks, completed, _ := roundHooks()
		engine, err := NewEngine(&cfg, newTestStore(), strategy.NewStable(), WithHooks(hooks))
		require.NoError(t, err)
		defer engine.Close(t.Context())

		const numGoroutines = 50
		var fired atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < numGoroutines; i++ {
			wg.Go(func() {
				if engine.CheckAndTrigger(now) {
					fired.Add(1)
				}
			})
		}
		wg.Wait()

		require.Equal(t, int32(1), fired.Load())
		waitResult(t, completed)
	})

	t.Run("next round fires one interval after success", func(t *testing.T) {
		cfg := TestConfig()
		hooks, completed, _ := roundHooks()
		engine, err := NewEngine(&cfg, newTestStore(), strategy.NewStable(), WithHooks(hooks))
		require.NoError(t, err)
		defer engine.Close(t.Context())

		require.True(t, engine.CheckAndTrigger(now))
		waitResult(t, completed)

		require.False(t, engine.CheckAndTrigger(now.Add(cfg.MatchInterval/2)))
		require.True(t, engine.CheckAndTrigger(now.Add(cfg.MatchInterval)))
		waitResult(t, completed)
	})

	t.Run("failed round retries after backoff without advancing the clock", func(t *testing.T) {
		cfg := TestConfig()
		st := newTestStore()
		st.SetFailPersist(true)
		hooks, completed, failed := roundHooks()

		engine, err := NewEngine(&cfg, st, strategy.NewStable(), WithHooks(hooks))
		require.NoError(t, err)
		defer engine.Close(t.Context())

		require.True(t, engine.CheckAndTrigger(now))
		err = waitFailure(t, failed)
		require.ErrorIs(t, err, ErrPersistFailed)

		// The failure must not look like a completion.
		_, last := engine.CurrentStatus()
		require.True(t, last.IsZero())
		require.Equal(t, 0, st.Rounds())

		// The backoff is measured from when the failure was observed, which
		// is after the round ran, so one backoff past the trigger time is
		// still inside the window.
		require.False(t, engine.CheckAndTrigger(now.Add(cfg.RetryBackoff/2)))
		require.False(t, engine.CheckAndTrigger(now.Add(cfg.RetryBackoff)))

		// Well past the backoff the round is still due and succeeds.
		st.SetFailPersist(false)
		require.True(t, engine.CheckAndTrigger(now.Add(10*cfg.RetryBackoff)))
		waitResult(t, completed)
		require.Equal(t, 1, st.Rounds())
	})

	t.Run("strategy errors fail the round", func(t *testing.T) {
		cfg := TestConfig()
		hooks, _, failed := roundHooks()
		engine, err := NewEngine(&cfg, newTestStore(), failingStrategy{}, WithHooks(hooks))
		require.NoError(t, err)
		defer engine.Close(t.Context())

		require.True(t, engine.CheckAndTrigger(now))
		require.Error(t, waitFailure(t, failed))
	})
}

func TestEngine_Close(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("closed engine rejects triggers", func(t *testing.T) {
		cfg := TestConfig()
		engine, err := NewEngine(&cfg, newTestStore(), strategy.NewStable())
		require.NoError(t, err)

		require.NoError(t, engine.Close(t.Context()))
		require.False(t, engine.CheckAndTrigger(now))
	})

	t.Run("double close returns ErrEngineClosed", func(t *testing.T) {
		cfg := TestConfig()
		engine, err := NewEngine(&cfg, newTestStore(), strategy.NewStable())
		require.NoError(t, err)

		require.NoError(t, engine.Close(t.Context()))
		require.ErrorIs(t, engine.Close(t.Context()), ErrEngineClosed)
	})

	t.Run("waits for the in-flight round", func(t *testing.T) {
		cfg := TestConfig()
		st := newTestStore()
		hooks, completed, _ := roundHooks()
		engine, err := NewEngine(&cfg, st, strategy.NewStable(), WithHooks(hooks))
		require.NoError(t, err)

		require.True(t, engine.CheckAndTrigger(now))
		require.NoError(t, engine.Close(t.Context()))

		// The round that was in flight at Close time persisted.
		require.Equal(t, 1, st.Rounds())
		waitResult(t, completed)
	})

	t.Run("no round starts after close returns", func(t *testing.T) {
		cfg := TestConfig()
		st := newTestStore()
		engine, err := NewEngine(&cfg, st, strategy.NewStable())
		require.NoError(t, err)

		// Hammer the trigger with ever-later synthetic times while Close
		// races it; every round Close lets through must be drained by the
		// time it returns, and none may begin afterwards.
		stop := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Go(func() {
				at := now
				for {
					select {
					case <-stop:
						return
					default:
						engine.CheckAndTrigger(at)
						at = at.Add(cfg.MatchInterval)
					}
				}
			})
		}

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, engine.Close(t.Context()))
		rounds := st.Rounds()

		require.False(t, engine.CheckAndTrigger(now.Add(time.Hour)))
		time.Sleep(20 * time.Millisecond)
		require.Equal(t, rounds, st.Rounds())

		close(stop)
		wg.Wait()
	})

	t.Run("closes status subscribers", func(t *testing.T) {
		cfg := TestConfig()
		engine, err := NewEngine(&cfg, newTestStore(), strategy.NewStable())
		require.NoError(t, err)

		ch, _ := engine.SubscribeStatus()
		require.NoError(t, engine.Close(t.Context()))

		for range ch {
			// Drain until closed.
		}
	})
}

func TestEngine_SubscribeStatus(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cfg := TestConfig()
	hooks, completed, _ := roundHooks()
	engine, err := NewEngine(&cfg, newTestStore(), strategy.NewStable(), WithHooks(hooks))
	require.NoError(t, err)
	defer engine.Close(t.Context())

	ch, unsubscribe := engine.SubscribeStatus()
	defer unsubscribe()

	require.Equal(t, StatusIdle, <-ch)

	require.True(t, engine.CheckAndTrigger(now))
	require.Equal(t, StatusRunning, <-ch)
	require.Equal(t, StatusIdle, <-ch)

	waitResult(t, completed)
}

// failingStrategy always errors, driving the round failure path.
type failingStrategy struct{}

func (failingStrategy) Match(_ *types.MatchSnapshot) (types.Marriage, error) {
	return nil, types.ErrSnapshotRequired
}
