// Package cache provides assignment cache tiers.
//
// A tier stores variant names keyed by cache key and is consulted by the
// resolver before the backend. Two implementations ship with the module:
//
//   - Memory: in-process tier with optional per-entry TTL. Server-side this
//     plays the role a browser cookie plays client-side.
//   - NATSKV: durable tier backed by a NATS JetStream KeyValue bucket,
//     surviving process restarts and shared across replicas.
//
// Tiers are best-effort. The resolver treats tier errors as misses and never
// fails a resolution because a cache write failed.
package cache
