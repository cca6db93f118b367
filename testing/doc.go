// Package testing provides test utilities for the abtest library.
//
// It offers helpers for setting up test environments, in particular an
// embedded NATS server with JetStream for exercising the durable assignment
// cache and the KV experiment source without external infrastructure. It
// follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewTestLogger: Logger that writes through testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    abtesttest "github.com/DenisMSouza/abtest-sub000/testing"
//	)
//
//	func TestDurableTier(t *testing.T) {
//	    _, nc := abtesttest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
