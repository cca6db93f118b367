// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/DenisMSouza/abtest-sub000/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ResolverMetrics implementation

// RecordResolution discards the resolution metric.
func (n *NopMetrics) RecordResolution(_ /* source */ types.Source, _ /* duration */ float64) {
	// No-op
}

// RecordCacheLookup discards the cache lookup metric.
func (n *NopMetrics) RecordCacheLookup(_ /* tier */ string, _ /* hit */ bool) {
	// No-op
}

// RecordSampleDraw discards the sample draw metric.
func (n *NopMetrics) RecordSampleDraw(_ /* experimentID */, _ /* variant */ string) {
	// No-op
}

// ManagerMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State) {
	// No-op
}

// RecordFallback discards the fallback metric.
func (n *NopMetrics) RecordFallback() {
	// No-op
}

// RecordStaleResolution discards the stale resolution metric.
func (n *NopMetrics) RecordStaleResolution() {
	// No-op
}

// ClientMetrics implementation

// RecordBackendRequest discards the backend request metric.
func (n *NopMetrics) RecordBackendRequest(_ /* op */ string, _ /* success */ bool, _ /* duration */ float64) {
	// No-op
}
