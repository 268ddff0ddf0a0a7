package runner

import (
	"context"

	"sweepgo/pkg/cache"
	"sweepgo/pkg/core"
)

// Cached decorates a runner with a result cache: a parameterization that was
// already evaluated completes immediately with the stored curve, and fresh
// completions are recorded for later sweeps.
type Cached struct {
	Runner core.Runner
	Cache  *cache.Cache
	Space  core.SearchSpace
}

func (r *Cached) Name() string {
	if r.Runner == nil {
		return "cached"
	}
	return r.Runner.Name()
}

func (r *Cached) Run(ctx context.Context, trial *core.Trial) (core.Handle, error) {
	if r.Cache != nil {
		if curve, ok := r.Cache.Get(r.Space.Name(), trial.Params); ok {
			h := newHandle()
			for _, m := range curve {
				h.report(m)
			}
			h.finish(core.TrialCompleted, nil)
			return h, nil
		}
	}

	h, err := r.Runner.Run(ctx, trial)
	if err != nil {
		return nil, err
	}
	if r.Cache != nil {
		go func() {
			if h.Wait(ctx) != nil {
				return
			}
			if h.Status() == core.TrialCompleted {
				_ = r.Cache.Set(r.Space.Name(), trial.Params, h.Curve())
			}
		}()
	}
	return h, nil
}
