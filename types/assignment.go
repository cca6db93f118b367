package types

import "time"

// Assignment is the durable record binding one visitor identity to one
// variant for one experiment.
//
// At most one Assignment exists per (experiment, visitor) pair; this is the
// central correctness property of the engine. Rows are created lazily on
// first resolution for an identified visitor and never updated.
type Assignment struct {
	// Experiment is the experiment id the assignment belongs to.
	Experiment string `json:"experiment"`

	// Variation is the assigned variant name.
	Variation string `json:"variation"`

	// Timestamp records when the assignment was first persisted.
	Timestamp time.Time `json:"timestamp"`
}

// SuccessEvent is a conversion/success signal reported against an experiment.
type SuccessEvent struct {
	// UserID identifies the reporting visitor.
	UserID string `json:"userId"`

	// Event names the tracked action (e.g. "signup", "checkout").
	Event string `json:"event"`

	// Value optionally quantifies the event (revenue, duration, ...).
	Value *float64 `json:"value,omitempty"`
}
