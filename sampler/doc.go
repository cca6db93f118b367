// Package sampler provides variant sampling implementations.
//
// Samplers pick one variant from an experiment's ordered variant list
// according to the configured weights. The random source is injectable:
// tests use fixed values, and server-side deployments can use HashedRand for
// deterministic per-visitor bucketing across stateless replicas.
package sampler
