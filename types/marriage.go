package types

import (
	"fmt"
	"sort"
	"time"
)

// Marriage maps user id to assigned partner id for one round.
//
// An absent key means the user is unmatched this round (not an error).
//
// Invariants, checked by Validate and enforced by construction in the
// bundled strategies:
//   - No user maps to itself.
//   - If Marriage[u] = v and v is not the shadow, then Marriage[v] = u.
//   - The shadow participant never appears as a key. It may appear as the
//     partner of multiple users (it is absorbing).
type Marriage map[string]string

// Validate checks the marriage invariants.
//
// A violation is a programming error in the assignment strategy, never an
// expected runtime condition; the engine refuses to persist a marriage that
// fails validation.
//
// Parameters:
//   - shadowID: Reserved shadow participant id
//
// Returns:
//   - error: ErrInvariantViolation-wrapped description, nil if valid
func (m Marriage) Validate(shadowID string) error {
	for user, partner := range m {
		if user == shadowID {
			return fmt.Errorf("%w: shadow %q assigned as subject", ErrInvariantViolation, shadowID)
		}
		if partner == user {
			return fmt.Errorf("%w: user %q matched to itself", ErrInvariantViolation, user)
		}
		if partner == shadowID {
			continue // absorbing, no reverse entry required
		}
		if back, ok := m[partner]; !ok || back != user {
			return fmt.Errorf("%w: asymmetric pair %q -> %q", ErrInvariantViolation, user, partner)
		}
	}

	return nil
}

// Pairs returns the distinct matched pairs in deterministic order.
//
// Real pairs appear once with the lexicographically smaller id first.
// Shadow absorptions appear as (user, shadow) pairs.
//
// Returns:
//   - [][2]string: Sorted list of matched pairs
func (m Marriage) Pairs(shadowID string) [][2]string {
	pairs := make([][2]string, 0, len(m)/2+1)
	for user, partner := range m {
		if partner == shadowID || user < partner {
			pairs = append(pairs, [2]string{user, partner})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}

		return pairs[i][1] < pairs[j][1]
	})

	return pairs
}

// ShadowAbsorptions returns how many users are paired with the shadow.
func (m Marriage) ShadowAbsorptions(shadowID string) int {
	count := 0
	for _, partner := range m {
		if partner == shadowID {
			count++
		}
	}

	return count
}

// MatchRecord is the persisted, symmetric form of one marriage entry.
//
// Records are written only on successful round completion and are never
// mutated afterwards. Retention/expiry is the embedding application's
// concern.
type MatchRecord struct {
	// UserID is the subject of this row.
	UserID string `json:"userId"`

	// PartnerID is the assigned partner.
	PartnerID string `json:"partnerId"`

	// MatchedAt is the round start time, shared by both rows of a pair.
	MatchedAt time.Time `json:"matchedAt"`
}

// Records expands the marriage into symmetric MatchRecord rows: (u,v) and
// (v,u) with a shared timestamp. Shadow absorptions also produce both rows
// so the shadow's history is queryable.
//
// Parameters:
//   - shadowID: Reserved shadow participant id
//   - matchedAt: Round start time stamped on every row
//
// Returns:
//   - []MatchRecord: Rows in deterministic pair order
func (m Marriage) Records(shadowID string, matchedAt time.Time) []MatchRecord {
	pairs := m.Pairs(shadowID)
	records := make([]MatchRecord, 0, 2*len(pairs))
	for _, p := range pairs {
		records = append(records,
			MatchRecord{UserID: p[0], PartnerID: p[1], MatchedAt: matchedAt},
			MatchRecord{UserID: p[1], PartnerID: p[0], MatchedAt: matchedAt},
		)
	}

	return records
}
