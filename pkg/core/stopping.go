package core

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// StoppingRule decides whether a running trial should be terminated before it
// finishes, based on the curves of the other trials in the sweep.
type StoppingRule interface {
	Name() string

	// ShouldStop returns true and a human-readable reason when trial should
	// be stopped. trials holds every trial in the sweep, including trial
	// itself and trials that are still running.
	ShouldStop(trial *Trial, trials []*Trial) (bool, string)
}

// PercentileRule stops a trial whose objective at its latest progression is
// worse than the configured percentile of all trials' values interpolated at
// that same progression.
type PercentileRule struct {
	// Percentile in (0, 100). With Minimize, a trial above the 75th
	// percentile of values at its step is stopped.
	Percentile float64

	// MinProgression guards young trials: nothing is stopped before its
	// curve reaches this step.
	MinProgression int

	// MinCurves is the number of comparable curves required before the rule
	// activates.
	MinCurves int

	// Minimize states the objective direction.
	Minimize bool
}

func (r PercentileRule) Name() string {
	return fmt.Sprintf("percentile(%g)", r.Percentile)
}

func (r PercentileRule) ShouldStop(trial *Trial, trials []*Trial) (bool, string) {
	if r.Percentile <= 0 || r.Percentile >= 100 {
		return false, ""
	}
	step := trial.LastStep()
	if step < 0 || step < r.MinProgression {
		return false, ""
	}
	value, ok := trial.ValueAt(step)
	if !ok {
		return false, ""
	}

	values := make([]float64, 0, len(trials))
	for _, other := range trials {
		if other.ID == trial.ID {
			continue
		}
		if v, ok := other.ValueAt(step); ok {
			values = append(values, v)
		}
	}
	minCurves := r.MinCurves
	if minCurves <= 0 {
		minCurves = 5
	}
	if len(values) < minCurves {
		return false, ""
	}

	sort.Float64s(values)
	p := r.Percentile / 100
	if !r.Minimize {
		p = 1 - p
	}
	threshold := stat.Quantile(p, stat.Empirical, values, nil)

	worse := value > threshold
	if !r.Minimize {
		worse = value < threshold
	}
	if !worse {
		return false, ""
	}
	return true, fmt.Sprintf(
		"value %.4g at step %d is beyond the %.0fth percentile (%.4g) of %d curves",
		value, step, r.Percentile, threshold, len(values),
	)
}
