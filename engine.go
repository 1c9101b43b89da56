package pairwise

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/pairwise/internal/hooks"
	"github.com/arloliu/pairwise/internal/logging"
	"github.com/arloliu/pairwise/internal/metrics"
	"github.com/arloliu/pairwise/internal/ranking"
	"github.com/arloliu/pairwise/internal/roundstate"
	"github.com/arloliu/pairwise/internal/shadow"
	"github.com/arloliu/pairwise/scoring"
	"github.com/arloliu/pairwise/types"
)

// Engine runs periodic one-to-one matching rounds over a user population.
//
// Engine is the main entry point of the pairwise library. It handles:
//   - Trigger gating: one round per MatchInterval, single-flight under
//     concurrent CheckAndTrigger calls
//   - Snapshot assembly: questions, submissions, recency exclusions
//   - Shadow participant rolling per round
//   - Preference ranking and strategy matching
//   - Invariant validation and all-or-nothing persistence
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - The Idle -> Running transition is atomic and linearizable
//
// Lifecycle:
//   - Create with NewEngine()
//   - Call CheckAndTrigger() from request handlers or a ticker
//   - Use hooks to react to completed or failed rounds
//   - Call Close() for graceful shutdown
//
// Testing:
// Consumers can define minimal interfaces for mocking:
//
//	type RoundTrigger interface {
//	    CheckAndTrigger(now time.Time) bool
//	}
type Engine struct {
	cfg      Config
	store    Store
	strategy MatchStrategy

	// Optional dependencies
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger

	// Internal components
	sm *roundstate.StateMachine

	// Lifecycle management. closeMu serializes the trigger's begin+Add
	// against Close, so no round can slip in after Close starts waiting.
	closeMu sync.Mutex
	closed  atomic.Bool
	wg      sync.WaitGroup
}

// NewEngine creates a new Engine instance with the provided configuration.
//
// Returns a concrete *Engine struct following the "accept interfaces, return
// structs" principle. Consumers can define their own interfaces for testing
// if needed.
//
// Parameters:
//   - cfg: Runtime configuration with parsed durations
//   - store: Persistence collaborator for questions, submissions, and matches
//   - strategy: Matching strategy (recommended: strategy.NewStable())
//   - opts: Optional configuration (hooks, metrics, logger)
//
// Returns:
//   - *Engine: Initialized engine instance
//   - error: Validation error if configuration or collaborators are invalid
//
// Example:
//
//	cfg := pairwise.DefaultConfig()
//	st := store.NewMemory()
//	matcher := strategy.NewStable(strategy.WithSkewFallback(strategy.NewLocalSearch()))
//	engine, err := pairwise.NewEngine(&cfg, st, matcher)
func NewEngine(cfg *Config, store Store, strategy MatchStrategy, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if strategy == nil {
		return nil, ErrMatchStrategyRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Apply options
	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	// Validate with warnings after logger is available
	cfg.ValidateWithWarnings(loggerInstance)

	hooksInstance := options.hooks
	if hooksInstance == nil {
		nopHooks := hooks.NewNop()
		hooksInstance = &nopHooks
	}

	e := &Engine{
		cfg:      *cfg,
		store:    store,
		strategy: strategy,
		hooks:    hooksInstance,
		metrics:  metricsCollector,
		logger:   loggerInstance,
	}
	e.sm = roundstate.NewStateMachine(loggerInstance, metricsCollector)

	return e, nil
}

// CheckAndTrigger starts a matching round if one is due at now.
//
// Safe to call from any number of goroutines at any rate, e.g. on every
// incoming request. The due check and the Idle -> Running flip are one
// atomic operation; at most one caller wins and the round runs on a
// background goroutine. All other callers return false immediately.
//
// Parameters:
//   - now: Trigger evaluation time, also stamped on persisted matches
//
// Returns:
//   - bool: true if this call started a round
func (e *Engine) CheckAndTrigger(now time.Time) bool {
	if e.closed.Load() {
		return false
	}

	// The transition and the WaitGroup slot are taken under closeMu: once
	// Close has flipped closed, no later trigger can begin a round, and a
	// trigger that won first has its slot registered before Close waits.
	e.closeMu.Lock()
	if e.closed.Load() {
		e.closeMu.Unlock()

		return false
	}
	fired := e.sm.TryBegin(now, e.cfg.MatchInterval, e.cfg.RetryBackoff)
	if fired {
		e.wg.Add(1)
	}
	e.closeMu.Unlock()

	e.metrics.RecordTriggerCheck(fired)
	if !fired {
		return false
	}

	e.emitStatusChange(StatusIdle, StatusRunning)

	go func() {
		defer e.wg.Done()
		e.runRound(now)
	}()

	return true
}

// CurrentStatus returns the round status and last successful completion time.
//
// Returns:
//   - RoundStatus: StatusIdle or StatusRunning
//   - time.Time: Completion time of the last successful round (zero if none)
func (e *Engine) CurrentStatus() (RoundStatus, time.Time) {
	return e.sm.Snapshot()
}

// SubscribeStatus returns a channel receiving round status changes.
//
// The channel is buffered; a slow subscriber drops notifications instead of
// blocking rounds. The current status is delivered immediately.
//
// Returns:
//   - <-chan RoundStatus: Status update channel
//   - func(): Unsubscribe function
func (e *Engine) SubscribeStatus() (<-chan RoundStatus, func()) {
	return e.sm.Subscribe()
}

// Close shuts the engine down, waiting for an in-flight round to finish.
//
// After Close returns, CheckAndTrigger always returns false and all status
// subscriber channels are closed. A round running at Close time completes
// normally (including persistence) unless ctx expires first.
//
// Parameters:
//   - ctx: Deadline for waiting on the in-flight round
//
// Returns:
//   - error: ErrEngineClosed if already closed, ctx.Err() on timeout
func (e *Engine) Close(ctx context.Context) error {
	e.closeMu.Lock()
	if !e.closed.CompareAndSwap(false, true) {
		e.closeMu.Unlock()

		return ErrEngineClosed
	}
	e.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.sm.Close()
	e.logger.Info("engine closed")

	return nil
}

// runRound executes one full matching round.
//
// The round owns the Running state: it always hands the machine back to
// Idle through Complete or Fail, so a panic-free round can never wedge the
// trigger.
func (e *Engine) runRound(startedAt time.Time) {
	began := time.Now()

	result, err := e.executeRound(startedAt)
	duration := time.Since(began)

	e.metrics.RecordRoundDuration(duration.Seconds(), err == nil)
	e.metrics.RecordRoundAttempt(err == nil)

	if err != nil {
		e.logger.Error("matching round failed", "error", err, "duration", duration)
		// The backoff runs from when the failure was observed, not from the
		// round start, or a slow round could retry with no wait at all.
		e.sm.Fail(startedAt.Add(duration))
		e.emitStatusChange(StatusRunning, StatusIdle)
		e.runHook(func(ctx context.Context) error {
			if e.hooks.OnRoundFailed == nil {
				return nil
			}

			return e.hooks.OnRoundFailed(ctx, err)
		})

		return
	}

	result.Duration = duration
	e.metrics.RecordPopulationSize(result.Population)
	e.metrics.RecordMatchedPairs(result.MatchedPairs)
	e.metrics.RecordShadowAbsorptions(result.ShadowAbsorbed)
	e.metrics.RecordUnmatchedUsers(result.Unmatched)

	e.logger.Info("matching round completed",
		"duration", duration,
		"population", result.Population,
		"matched_pairs", result.MatchedPairs,
		"shadow_absorbed", result.ShadowAbsorbed,
		"unmatched", result.Unmatched,
	)

	e.sm.Complete(startedAt)
	e.emitStatusChange(StatusRunning, StatusIdle)
	e.runHook(func(ctx context.Context) error {
		if e.hooks.OnRoundCompleted == nil {
			return nil
		}

		return e.hooks.OnRoundCompleted(ctx, *result)
	})
}

// executeRound performs the fetch -> rank -> match -> persist pipeline.
func (e *Engine) executeRound(startedAt time.Time) (*RoundResult, error) {
	questions, err := e.fetchQuestions()
	if err != nil {
		return nil, err
	}

	submissions, err := e.fetchSubmissions()
	if err != nil {
		return nil, err
	}
	// The shadow id is reserved; a real submission under it would corrupt
	// the round, so it is dropped before the shadow is rolled in.
	delete(submissions, e.cfg.ShadowID)
	population := len(submissions)

	exclusions, err := e.fetchRecencyExclusion()
	if err != nil {
		return nil, err
	}

	// Roll the shadow for this round and add it to the population.
	seed := e.cfg.ShadowSeed
	if seed == 0 {
		seed = shadow.SeedFromTime(startedAt)
	}
	submissions[e.cfg.ShadowID] = shadow.Roll(questions, seed)

	scorer := scoring.NewScorer(questions, scoring.WithMinSharedAnswers(e.cfg.MinSharedAnswers))
	ranker := ranking.New(scorer, e.cfg.ShadowID, e.cfg.ShadowCandidateThreshold)
	preferences := ranker.Build(submissions, exclusions)

	snapshot := &types.MatchSnapshot{
		Submissions: submissions,
		Preferences: preferences,
		ShadowID:    e.cfg.ShadowID,
	}

	marriage, err := e.strategy.Match(snapshot)
	if err != nil {
		return nil, fmt.Errorf("strategy failed: %w", err)
	}
	if err := marriage.Validate(e.cfg.ShadowID); err != nil {
		return nil, err
	}

	if err := e.persistMarriage(marriage, startedAt); err != nil {
		return nil, err
	}

	absorbed := marriage.ShadowAbsorptions(e.cfg.ShadowID)

	return &RoundResult{
		StartedAt:      startedAt,
		Population:     population,
		MatchedPairs:   (len(marriage) - absorbed) / 2,
		ShadowAbsorbed: absorbed,
		Unmatched:      population - len(marriage),
		Marriage:       marriage,
	}, nil
}

func (e *Engine) fetchQuestions() (map[string]Question, error) {
	ctx, cancel := e.operationContext()
	defer cancel()

	start := time.Now()
	questions, err := e.store.FetchQuestions(ctx)
	e.metrics.RecordStoreOperationDuration("questions", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}

	return questions, nil
}

func (e *Engine) fetchSubmissions() (Submissions, error) {
	ctx, cancel := e.operationContext()
	defer cancel()

	start := time.Now()
	submissions, err := e.store.FetchSubmissions(ctx)
	e.metrics.RecordStoreOperationDuration("submissions", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}
	if submissions == nil {
		submissions = make(Submissions)
	}

	return submissions, nil
}

func (e *Engine) fetchRecencyExclusion() (RecencyExclusion, error) {
	ctx, cancel := e.operationContext()
	defer cancel()

	start := time.Now()
	exclusions, err := e.store.FetchRecencyExclusion(ctx, e.cfg.RecencyWindow)
	e.metrics.RecordStoreOperationDuration("recency", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recency exclusion: %w", err)
	}

	return exclusions, nil
}

func (e *Engine) persistMarriage(marriage Marriage, matchedAt time.Time) error {
	ctx, cancel := e.operationContext()
	defer cancel()

	start := time.Now()
	err := e.store.PersistMarriage(ctx, marriage, matchedAt)
	e.metrics.RecordStoreOperationDuration("persist", time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	return nil
}

func (e *Engine) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.cfg.OperationTimeout)
}

// emitStatusChange runs the OnStatusChanged hook asynchronously.
func (e *Engine) emitStatusChange(from, to RoundStatus) {
	e.runHook(func(ctx context.Context) error {
		if e.hooks.OnStatusChanged == nil {
			return nil
		}

		return e.hooks.OnStatusChanged(ctx, from, to)
	})
}

// runHook invokes a hook callback on a tracked goroutine. Hook errors are
// logged, never propagated: hooks observe rounds, they don't steer them.
func (e *Engine) runHook(fn func(ctx context.Context) error) {
	e.wg.Go(func() {
		ctx, cancel := e.operationContext()
		defer cancel()

		if err := fn(ctx); err != nil {
			e.logger.Warn("hook returned error", "error", err)
		}
	})
}
