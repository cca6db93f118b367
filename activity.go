package abtest

import (
	"fmt"
	"time"

	"github.com/DenisMSouza/abtest-sub000/types"
)

// Date layouts accepted for experiment activity windows, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// parseExperimentDate parses an ISO-8601 timestamp or bare date.
func parseExperimentDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}

// EvaluateActivity decides whether an experiment is live at the given time.
//
// Rules, in order:
//  1. No start and no end date: active.
//  2. Any configured date that fails parsing: inactive. The condition is
//     reported through the returned reason, never panicked or thrown.
//  3. Start date in the future: inactive.
//  4. End date in the past: inactive.
//
// An inactive experiment is served its baseline (or the configured fallback)
// by the resolver; the sampler is never invoked for it.
//
// Parameters:
//   - exp: Experiment whose window to evaluate
//   - now: Evaluation instant
//
// Returns:
//   - bool: true when the experiment is live
//   - error: Reason the experiment is inactive, nil when active. Start dates
//     in the future wrap ErrNotStarted.
func EvaluateActivity(exp *types.Experiment, now time.Time) (bool, error) {
	if exp.StartDate == "" && exp.EndDate == "" {
		return true, nil
	}

	if exp.StartDate != "" {
		start, err := parseExperimentDate(exp.StartDate)
		if err != nil {
			return false, fmt.Errorf("unparseable start date %q: %w", exp.StartDate, err)
		}
		if now.Before(start) {
			return false, fmt.Errorf("experiment starts at %s: %w", exp.StartDate, ErrNotStarted)
		}
	}

	if exp.EndDate != "" {
		end, err := parseExperimentDate(exp.EndDate)
		if err != nil {
			return false, fmt.Errorf("unparseable end date %q: %w", exp.EndDate, err)
		}
		if now.After(end) {
			return false, fmt.Errorf("experiment ended at %s", exp.EndDate)
		}
	}

	return true, nil
}
