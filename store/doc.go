// Package store provides the bundled types.Store implementations.
//
// Two implementations are included:
//
//   - Memory: in-process store for tests, examples, and embedding
//     applications that manage persistence themselves.
//   - NATSKV: NATS JetStream KeyValue-backed store. Each round is written
//     as a single KV entry, so persistence is all-or-nothing by
//     construction; the recency exclusion is derived by scanning round
//     entries inside the window.
//
// Both implementations expect question means to be maintained externally:
// the engine consumes means, it does not compute them.
package store
