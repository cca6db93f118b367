package types

// State represents the assignment state machine's lifecycle state.
//
// States follow a defined progression:
//
//	StateInit → StateLoading → {StateResolved, StateErrored}
//
// The machine re-enters StateLoading when the experiment identity changes or
// when the visitor identity transitions from absent to present. Reset returns
// it to StateInit.
type State int

const (
	// StateInit is the initial state before any resolution has been requested.
	StateInit State = iota

	// StateLoading indicates a resolution pass is in progress.
	StateLoading

	// StateResolved indicates a variant has been determined.
	StateResolved

	// StateErrored indicates resolution failed with no fallback configured.
	StateErrored
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateLoading:
		return "Loading"
	case StateResolved:
		return "Resolved"
	case StateErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}
