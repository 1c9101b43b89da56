// Package testing provides test utilities for the pairwise library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for integration testing. It follows Go's convention
// of providing testing utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - GeneratePopulation: Seeded random population for matching tests
//   - NewTestLogger: Logger routed through testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    pairtest "github.com/arloliu/pairwise/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := pairtest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
