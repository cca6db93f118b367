package types

import "errors"

// Sentinel errors for the abtest library.
//
// These provide type-safe error checking using errors.Is() and errors.As().
// Components wrap external errors with context using fmt.Errorf("...: %w", err).

// Manager errors - public API errors returned by the Manager.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrExperimentRequired is returned when the experiment is nil.
	ErrExperimentRequired = errors.New("experiment is required")

	// ErrNotStarted is returned when operations require at least one
	// completed resolution pass.
	ErrNotStarted = errors.New("no resolution has run")
)

// Resolver errors - failures raised during a resolution pass.
var (
	// ErrNoVariants is returned when an experiment has zero variants.
	// The sampler is never invoked in this case.
	ErrNoVariants = errors.New("experiment has no variants")

	// ErrNoBaseline is returned when an experiment is inactive, no variant is
	// flagged as baseline, and no fallback variant is configured.
	ErrNoBaseline = errors.New("inactive experiment has no baseline variant")

	// ErrAmbiguousIdentity is returned when both a user id and a session id
	// are supplied for a single resolution.
	ErrAmbiguousIdentity = errors.New("at most one of userId and sessionId may be set")
)

// Persistence errors - failures from the backend client.
var (
	// ErrNetwork indicates a timeout or non-success HTTP status from the
	// persistence backend.
	ErrNetwork = errors.New("backend request failed")

	// ErrExperimentNotFound is returned when the backend has no experiment
	// with the requested id.
	ErrExperimentNotFound = errors.New("experiment not found")
)

// IsNetworkError reports whether err originates from a backend transport
// failure (timeout or non-success status).
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error wraps ErrNetwork
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}
