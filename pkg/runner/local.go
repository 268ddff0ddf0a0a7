package runner

import (
	"context"
	"errors"
	"time"

	"sweepgo/pkg/core"
)

// Objective evaluates a parameterization at one progression step. Steps are
// 1-based; implementations typically converge toward a final value as step
// grows, mimicking a training curve.
type Objective func(params core.Params, step int) (float64, error)

// Local runs trials in-process: one goroutine per trial evaluates the
// objective over Epochs steps, reporting a measurement per step.
type Local struct {
	Objective Objective

	// Epochs is the curve length. Default 10.
	Epochs int

	// StepDelay spaces out measurements; useful to give early stopping a
	// chance to observe partial curves. Default none.
	StepDelay time.Duration
}

func (r *Local) Name() string {
	return "local"
}

func (r *Local) Run(ctx context.Context, trial *core.Trial) (core.Handle, error) {
	if r.Objective == nil {
		return nil, errors.New("local runner: objective is required")
	}
	epochs := r.Epochs
	if epochs <= 0 {
		epochs = 10
	}

	h := newHandle()
	go func() {
		for step := 1; step <= epochs; step++ {
			select {
			case <-ctx.Done():
				h.finish(core.TrialFailed, ctx.Err())
				return
			case <-h.stop:
				h.finish(core.TrialEarlyStopped, nil)
				return
			default:
			}

			value, err := r.Objective(trial.Params, step)
			if err != nil {
				h.finish(core.TrialFailed, err)
				return
			}
			h.report(core.Measurement{Step: step, Value: value})

			if r.StepDelay > 0 && step < epochs {
				select {
				case <-ctx.Done():
					h.finish(core.TrialFailed, ctx.Err())
					return
				case <-h.stop:
					h.finish(core.TrialEarlyStopped, nil)
					return
				case <-time.After(r.StepDelay):
				}
			}
		}
		h.finish(core.TrialCompleted, nil)
	}()
	return h, nil
}
