package abtest

import "github.com/DenisMSouza/abtest-sub000/types"

// Re-exported sentinel errors from the types package. All support errors.Is.
var (
	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrExperimentRequired indicates a resolution was attempted without an
	// experiment definition.
	ErrExperimentRequired = types.ErrExperimentRequired

	// ErrNotStarted indicates the experiment's start date is in the future.
	ErrNotStarted = types.ErrNotStarted

	// ErrNoVariants indicates the experiment defines no variants.
	ErrNoVariants = types.ErrNoVariants

	// ErrNoBaseline indicates an inactive experiment defines no baseline to
	// serve in place of a sampled variant.
	ErrNoBaseline = types.ErrNoBaseline

	// ErrAmbiguousIdentity indicates both user and session IDs were supplied
	// where exactly one is required.
	ErrAmbiguousIdentity = types.ErrAmbiguousIdentity

	// ErrNetwork wraps backend transport failures and non-success statuses.
	ErrNetwork = types.ErrNetwork

	// ErrExperimentNotFound indicates the backend has no such experiment.
	ErrExperimentNotFound = types.ErrExperimentNotFound
)

// IsNetworkError reports whether err is, or wraps, a backend network failure.
func IsNetworkError(err error) bool {
	return types.IsNetworkError(err)
}
