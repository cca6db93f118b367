package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods may be called concurrently and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for modularity.
type MetricsCollector interface {
	ResolverMetrics
	ManagerMetrics
	ClientMetrics
}

// ResolverMetrics defines metrics for resolution passes.
type ResolverMetrics interface {
	// RecordResolution records a completed resolution and where the variant
	// came from.
	//
	// Parameters:
	//   - source: The winning source tier
	//   - duration: Time taken in seconds
	RecordResolution(source Source, duration float64)

	// RecordCacheLookup records a cache tier lookup outcome.
	//
	// Parameters:
	//   - tier: Cache tier name ("cookie", "durable")
	//   - hit: true on hit, false on miss
	RecordCacheLookup(tier string, hit bool)

	// RecordSampleDraw records a fresh variant draw from the sampler.
	RecordSampleDraw(experimentID, variant string)
}

// ManagerMetrics defines metrics for state machine operations.
type ManagerMetrics interface {
	// RecordStateTransition records a state machine transition event.
	RecordStateTransition(from, to State)

	// RecordFallback records a failure that was absorbed by the configured
	// fallback variant.
	RecordFallback()

	// RecordStaleResolution records a resolution whose result was discarded
	// because the machine had already moved on (last-transition-wins).
	RecordStaleResolution()
}

// ClientMetrics defines metrics for backend persistence calls.
type ClientMetrics interface {
	// RecordBackendRequest records one backend HTTP round trip.
	//
	// Parameters:
	//   - op: Operation name ("read", "write", "success", "experiment")
	//   - success: true on a 2xx response
	//   - duration: Time taken in seconds
	RecordBackendRequest(op string, success bool, duration float64)
}
