// Package server implements the assignment backend.
//
// It exposes the REST surface the client engine speaks: assignment reads and
// first-write-wins creation, experiment definitions, and success event
// intake. Assignment uniqueness per (experiment, visitor) is enforced
// atomically by the store's schema, so concurrent writers for the same
// visitor converge on a single record.
package server
