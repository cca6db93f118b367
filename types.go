package abtest

import "github.com/DenisMSouza/abtest-sub000/types"

// Re-exported types from the types package.
//
// The canonical definitions live in types to avoid import cycles between the
// root package and its subpackages; these aliases let callers work entirely
// in terms of the abtest package.
type (
	// Experiment is an alias for types.Experiment.
	Experiment = types.Experiment

	// Variant is an alias for types.Variant.
	Variant = types.Variant

	// Identity is an alias for types.Identity.
	Identity = types.Identity

	// Assignment is an alias for types.Assignment.
	Assignment = types.Assignment

	// SuccessEvent is an alias for types.SuccessEvent.
	SuccessEvent = types.SuccessEvent

	// Resolution is an alias for types.Resolution.
	Resolution = types.Resolution

	// Source is an alias for types.Source.
	Source = types.Source

	// State is an alias for types.State.
	State = types.State

	// Hooks is an alias for types.Hooks.
	Hooks = types.Hooks

	// Logger is an alias for types.Logger.
	Logger = types.Logger

	// MetricsCollector is an alias for types.MetricsCollector.
	MetricsCollector = types.MetricsCollector

	// Sampler is an alias for types.Sampler.
	Sampler = types.Sampler

	// RandSource is an alias for types.RandSource.
	RandSource = types.RandSource

	// CacheTier is an alias for types.CacheTier.
	CacheTier = types.CacheTier

	// PersistenceClient is an alias for types.PersistenceClient.
	PersistenceClient = types.PersistenceClient

	// ExperimentSource is an alias for types.ExperimentSource.
	ExperimentSource = types.ExperimentSource
)

// Re-exported Source constants.
const (
	SourceCookie     = types.SourceCookie
	SourceLocalCache = types.SourceLocalCache
	SourceBackend    = types.SourceBackend
	SourceGenerated  = types.SourceGenerated
	SourceFallback   = types.SourceFallback
)

// Re-exported State constants.
const (
	StateInit     = types.StateInit
	StateLoading  = types.StateLoading
	StateResolved = types.StateResolved
	StateErrored  = types.StateErrored
)

// UserIdentity returns an Identity carrying only a user ID.
func UserIdentity(userID string) Identity {
	return types.UserIdentity(userID)
}

// SessionIdentity returns an Identity carrying only a session ID.
func SessionIdentity(sessionID string) Identity {
	return types.SessionIdentity(sessionID)
}

// NewSessionID generates a fresh anonymous session identifier.
func NewSessionID() string {
	return types.NewSessionID()
}
