// Package strategy provides the built-in assignment strategies.
//
// Two interchangeable strategies implement types.MatchStrategy:
//
//   - Stable: classic deferred-acceptance over the two primary-question
//     sides. Guarantees a stable result (no blocking pair) at the cost of
//     full preference-list construction and repeated proposal rounds.
//   - LocalSearch: greedy seeding plus pairwise-swap hill climbing to a
//     local optimum of the total pair score. No stability guarantee, but it
//     needs no two-sided split and scales to skewed or large populations.
//
// Both are deterministic for identical snapshots and stateless across
// rounds, so they can be selected per deployment via configuration and
// tested independently.
package strategy
