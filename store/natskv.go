package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/pairwise/internal/kvutil"
	"github.com/arloliu/pairwise/internal/shadow"
	"github.com/arloliu/pairwise/types"
)

// Default bucket names for the NATS KV store.
const (
	DefaultQuestionsBucket   = "pairwise-questions"
	DefaultSubmissionsBucket = "pairwise-submissions"
	DefaultRoundsBucket      = "pairwise-rounds"
)

// roundDocument is the persisted form of one completed round.
//
// The whole round is one KV entry, so a round is either fully visible or
// absent; there is no partially written state to observe.
type roundDocument struct {
	MatchedAt time.Time           `json:"matchedAt"`
	Records   []types.MatchRecord `json:"records"`
}

// NATSKVConfig configures the NATS JetStream KV-backed store.
type NATSKVConfig struct {
	// QuestionsBucket holds the question bank, one JSON entry per question
	// keyed by question id. Defaults to DefaultQuestionsBucket.
	QuestionsBucket string

	// SubmissionsBucket holds the submission snapshot, one JSON entry per
	// user keyed by user id. Defaults to DefaultSubmissionsBucket.
	SubmissionsBucket string

	// RoundsBucket holds one JSON roundDocument per completed round keyed
	// by the round start time. Defaults to DefaultRoundsBucket.
	RoundsBucket string

	// ShadowID is the reserved shadow participant id, used when expanding
	// marriages into records. Must match the engine configuration.
	// Defaults to "shadow".
	ShadowID string

	// Replicas is the JetStream replica count for created buckets.
	// Defaults to 1.
	Replicas int
}

// SetDefaults fills in default values for unset fields.
func (c *NATSKVConfig) SetDefaults() {
	if c.QuestionsBucket == "" {
		c.QuestionsBucket = DefaultQuestionsBucket
	}
	if c.SubmissionsBucket == "" {
		c.SubmissionsBucket = DefaultSubmissionsBucket
	}
	if c.RoundsBucket == "" {
		c.RoundsBucket = DefaultRoundsBucket
	}
	if c.ShadowID == "" {
		c.ShadowID = shadow.DefaultID
	}
	if c.Replicas <= 0 {
		c.Replicas = 1
	}
}

// NATSKV is a Store backed by NATS JetStream KeyValue buckets.
//
// Persistence is all-or-nothing by construction: PersistMarriage writes the
// entire round as a single KV entry. The recency exclusion is derived by
// scanning round entries whose timestamp falls inside the window.
type NATSKV struct {
	cfg         NATSKVConfig
	questions   jetstream.KeyValue
	submissions jetstream.KeyValue
	rounds      jetstream.KeyValue
}

// Compile-time assertion that NATSKV implements Store.
var _ types.Store = (*NATSKV)(nil)

// NewNATSKV creates a KV-backed store, creating or opening its buckets.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - nc: Connected NATS client with JetStream enabled
//   - cfg: Bucket configuration (zero value uses defaults)
//
// Returns:
//   - *NATSKV: A ready store
//   - error: Connection or bucket creation error
//
// Example:
//
//	st, err := store.NewNATSKV(ctx, nc, store.NATSKVConfig{})
//	if err != nil {
//	    return err
//	}
//	engine, err := pairwise.NewEngine(&cfg, st, strategy.NewStable())
func NewNATSKV(ctx context.Context, nc *nats.Conn, cfg NATSKVConfig) (*NATSKV, error) {
	cfg.SetDefaults()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	s := &NATSKV{cfg: cfg}

	buckets := []struct {
		name   string
		target *jetstream.KeyValue
	}{
		{cfg.QuestionsBucket, &s.questions},
		{cfg.SubmissionsBucket, &s.submissions},
		{cfg.RoundsBucket, &s.rounds},
	}
	for _, b := range buckets {
		kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
			Bucket:   b.name,
			Replicas: cfg.Replicas,
		}, 3)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure bucket %s: %w", b.name, err)
		}
		*b.target = kv
	}

	return s, nil
}

// PutQuestion upserts one question into the question bank.
func (s *NATSKV) PutQuestion(ctx context.Context, question types.Question) error {
	data, err := json.Marshal(question)
	if err != nil {
		return fmt.Errorf("failed to marshal question %s: %w", question.ID, err)
	}
	if _, err := s.questions.Put(ctx, question.ID, data); err != nil {
		return fmt.Errorf("failed to put question %s: %w", question.ID, err)
	}

	return nil
}

// PutSubmission upserts one user submission.
func (s *NATSKV) PutSubmission(ctx context.Context, userID string, sub types.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission %s: %w", userID, err)
	}
	if _, err := s.submissions.Put(ctx, userID, data); err != nil {
		return fmt.Errorf("failed to put submission %s: %w", userID, err)
	}

	return nil
}

// FetchQuestions loads the whole question bank.
func (s *NATSKV) FetchQuestions(ctx context.Context) (map[string]types.Question, error) {
	questions := make(map[string]types.Question)

	err := s.scan(ctx, s.questions, func(key string, data []byte) error {
		var q types.Question
		if err := json.Unmarshal(data, &q); err != nil {
			return fmt.Errorf("failed to unmarshal question %s: %w", key, err)
		}
		questions[key] = q

		return nil
	})
	if err != nil {
		return nil, err
	}

	return questions, nil
}

// FetchSubmissions loads the whole submission snapshot.
func (s *NATSKV) FetchSubmissions(ctx context.Context) (types.Submissions, error) {
	submissions := make(types.Submissions)

	err := s.scan(ctx, s.submissions, func(key string, data []byte) error {
		var sub types.Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			return fmt.Errorf("failed to unmarshal submission %s: %w", key, err)
		}
		submissions[key] = sub

		return nil
	})
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

// FetchRecencyExclusion scans round documents inside the window and folds
// their records into per-user exclusion sets.
func (s *NATSKV) FetchRecencyExclusion(ctx context.Context, window time.Duration) (types.RecencyExclusion, error) {
	cutoff := time.Now().Add(-window)
	exclusions := make(types.RecencyExclusion)

	err := s.scan(ctx, s.rounds, func(key string, data []byte) error {
		var doc roundDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to unmarshal round %s: %w", key, err)
		}
		if doc.MatchedAt.Before(cutoff) {
			return nil
		}
		for _, rec := range doc.Records {
			exclusions.Add(rec.UserID, rec.PartnerID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return exclusions, nil
}

// PersistMarriage writes the round as one KV entry keyed by its start time.
func (s *NATSKV) PersistMarriage(ctx context.Context, marriage types.Marriage, matchedAt time.Time) error {
	doc := roundDocument{
		MatchedAt: matchedAt,
		Records:   marriage.Records(s.cfg.ShadowID, matchedAt),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal round document: %w", types.ErrPersistFailed, err)
	}

	key := roundKey(matchedAt)
	if _, err := s.rounds.Put(ctx, key, data); err != nil {
		return fmt.Errorf("%w: put round %s: %w", types.ErrPersistFailed, key, err)
	}

	return nil
}

// scan iterates all entries of a bucket. An empty bucket is not an error.
func (s *NATSKV) scan(ctx context.Context, kv jetstream.KeyValue, fn func(key string, data []byte) error) error {
	keys, err := kv.Keys(ctx)
	if err != nil {
		if types.IsNoKeysFoundError(err) {
			return nil
		}

		return fmt.Errorf("failed to list KV keys: %w", err)
	}

	for _, key := range keys {
		entry, err := kv.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to get KV entry %s: %w", key, err)
		}
		if err := fn(key, entry.Value()); err != nil {
			return err
		}
	}

	return nil
}

// roundKey formats the round start time as a sortable KV key.
func roundKey(matchedAt time.Time) string {
	return "round-" + strconv.FormatInt(matchedAt.UnixNano(), 10)
}
