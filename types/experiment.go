package types

// Variant is one arm of an experiment.
//
// Weights are relative probability mass in [0, 1] and should sum to ~1.0
// across an experiment's variants. That invariant is established when the
// experiment is created (outside this library) and is assumed, not
// re-validated, by the sampler.
type Variant struct {
	// Name uniquely identifies the variant within its experiment.
	Name string `json:"name" yaml:"name"`

	// Weight is the relative probability mass assigned to this variant.
	Weight float64 `json:"weight" yaml:"weight"`

	// IsBaseline marks the control/default variant, served whenever the
	// experiment is outside its activity window.
	IsBaseline bool `json:"isBaseline,omitempty" yaml:"isBaseline,omitempty"`
}

// Experiment describes one experiment as fetched from the backend.
//
// The engine treats experiments as read-only input; creating and editing them
// is the job of the administrative CRUD layer, not this library.
type Experiment struct {
	// ID is the backend identifier, also used to namespace client caches.
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable experiment name.
	Name string `json:"name" yaml:"name"`

	// Variants is the ordered list of arms. Order matters: the sampler's
	// boundary tie-break favors earlier variants.
	Variants []Variant `json:"variations" yaml:"variants"`

	// StartDate and EndDate bound the activity window as ISO-8601 strings.
	// Either or both may be empty (unbounded). A date that fails to parse
	// renders the experiment inactive.
	StartDate string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty" yaml:"endDate,omitempty"`

	// SuccessMetric optionally names the metric tracked for this experiment.
	SuccessMetric string `json:"successMetric,omitempty" yaml:"successMetric,omitempty"`
}

// Baseline returns the variant flagged IsBaseline.
//
// Returns:
//   - Variant: The baseline variant (zero value if none)
//   - bool: true if a baseline variant exists
func (e Experiment) Baseline() (Variant, bool) {
	for _, v := range e.Variants {
		if v.IsBaseline {
			return v, true
		}
	}

	return Variant{}, false
}

// Variant returns the variant with the given name.
//
// Returns:
//   - Variant: The named variant (zero value if absent)
//   - bool: true if the variant exists
func (e Experiment) Variant(name string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}

	return Variant{}, false
}
