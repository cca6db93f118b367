// Package client implements the HTTP persistence client for the assignment
// backend.
//
// The client speaks the backend's internal REST surface: reading and writing
// visitor assignments, fetching experiment definitions, and recording success
// events. Transport failures and non-2xx responses are wrapped with
// types.ErrNetwork so callers can degrade gracefully via errors.Is.
package client
