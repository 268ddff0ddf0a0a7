package runner

import (
	"context"
	"errors"

	"sweepgo/pkg/core"
)

// Mock completes trials immediately with canned curves.
type Mock struct {
	// Curves maps Params.Key() to a curve; Curve is the fallback.
	Curves map[string][]core.Measurement
	Curve  []core.Measurement

	// Fail makes every trial fail.
	Fail bool
}

func (r *Mock) Name() string {
	return "mock"
}

func (r *Mock) Run(_ context.Context, trial *core.Trial) (core.Handle, error) {
	h := newHandle()
	if r.Fail {
		h.finish(core.TrialFailed, errors.New("mock failure"))
		return h, nil
	}
	curve := r.Curve
	if c, ok := r.Curves[trial.Params.Key()]; ok {
		curve = c
	}
	for _, m := range curve {
		h.report(m)
	}
	h.finish(core.TrialCompleted, nil)
	return h, nil
}
