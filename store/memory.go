package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/pairwise/internal/shadow"
	"github.com/arloliu/pairwise/types"
)

// Memory is an in-process Store implementation.
//
// All methods are safe for concurrent use. Rounds persisted via
// PersistMarriage accumulate in memory and feed FetchRecencyExclusion,
// which makes Memory suitable for multi-round engine tests.
type Memory struct {
	mu sync.RWMutex

	shadowID    string
	questions   map[string]types.Question
	submissions types.Submissions
	rounds      []roundDocument

	failPersist bool
}

// Compile-time assertion that Memory implements Store.
var _ types.Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
//
// Returns:
//   - *Memory: A new store with no questions, submissions, or rounds
func NewMemory() *Memory {
	return &Memory{
		shadowID:    shadow.DefaultID,
		questions:   make(map[string]types.Question),
		submissions: make(types.Submissions),
	}
}

// SetShadowID overrides the shadow participant id used when expanding
// marriages into match records. Must match the engine configuration.
func (m *Memory) SetShadowID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shadowID = id
}

// SetQuestions replaces the question bank.
func (m *Memory) SetQuestions(questions map[string]types.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.questions = make(map[string]types.Question, len(questions))
	for id, q := range questions {
		m.questions[id] = q
	}
}

// SetSubmissions replaces the submission snapshot.
func (m *Memory) SetSubmissions(submissions types.Submissions) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.submissions = make(types.Submissions, len(submissions))
	for id, sub := range submissions {
		m.submissions[id] = sub
	}
}

// SetFailPersist makes subsequent PersistMarriage calls fail. Used by tests
// to drive the failed-round path.
func (m *Memory) SetFailPersist(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failPersist = fail
}

// Rounds returns the number of persisted rounds.
func (m *Memory) Rounds() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rounds)
}

// LastRecords returns the records of the most recent round, nil if none.
func (m *Memory) LastRecords() []types.MatchRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.rounds) == 0 {
		return nil
	}
	last := m.rounds[len(m.rounds)-1]
	records := make([]types.MatchRecord, len(last.Records))
	copy(records, last.Records)

	return records
}

// FetchQuestions returns a copy of the question bank.
func (m *Memory) FetchQuestions(_ context.Context) (map[string]types.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	questions := make(map[string]types.Question, len(m.questions))
	for id, q := range m.questions {
		questions[id] = q
	}

	return questions, nil
}

// FetchSubmissions returns a copy of the submission snapshot.
func (m *Memory) FetchSubmissions(_ context.Context) (types.Submissions, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	submissions := make(types.Submissions, len(m.submissions))
	for id, sub := range m.submissions {
		submissions[id] = sub
	}

	return submissions, nil
}

// FetchRecencyExclusion derives the exclusion sets from persisted rounds
// whose timestamp falls inside the window.
func (m *Memory) FetchRecencyExclusion(_ context.Context, window time.Duration) (types.RecencyExclusion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := time.Now().Add(-window)
	exclusions := make(types.RecencyExclusion)
	for _, round := range m.rounds {
		if round.MatchedAt.Before(cutoff) {
			continue
		}
		for _, rec := range round.Records {
			exclusions.Add(rec.UserID, rec.PartnerID)
		}
	}

	return exclusions, nil
}

// PersistMarriage appends the round's records as one atomic in-memory write.
func (m *Memory) PersistMarriage(_ context.Context, marriage types.Marriage, matchedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPersist {
		return fmt.Errorf("%w: persistence disabled", types.ErrPersistFailed)
	}

	m.rounds = append(m.rounds, roundDocument{
		MatchedAt: matchedAt,
		Records:   marriage.Records(m.shadowID, matchedAt),
	})

	return nil
}
