package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives a fixed-size sweep: it keeps up to MaxParallel trials
// running, asks the Generator for new parameterizations as slots free up,
// polls metric curves, and applies the stopping rule to running trials.
type Scheduler struct {
	Name      string
	Space     SearchSpace
	Generator Generator
	Runner    Runner

	// Metric overrides handle curves when the workload reports metrics out
	// of band. Optional.
	Metric MetricSource

	// Stopper terminates unpromising trials early. Optional.
	Stopper StoppingRule

	// Limiter throttles trial launches. Optional.
	Limiter RateLimiter

	MaxTrials    int
	MaxParallel  int
	PollInterval time.Duration

	// Objective names the metric being optimized; Minimize sets direction.
	Objective string
	Minimize  bool

	Logger   *zap.Logger
	Progress func(finished, running int)
}

type runningTrial struct {
	trial  *Trial
	handle Handle
}

// Run executes the sweep and returns a report. A cancelled context stops all
// running trials and returns the context error.
func (s *Scheduler) Run(ctx context.Context) (SweepReport, error) {
	if s.Generator == nil || s.Runner == nil {
		return SweepReport{}, errors.New("scheduler: generator and runner are required")
	}
	if err := s.Space.Validate(); err != nil {
		return SweepReport{}, err
	}
	if s.MaxTrials <= 0 {
		return SweepReport{}, errors.New("scheduler: max trials must be > 0")
	}

	maxParallel := s.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 1
	}
	poll := s.PollInterval
	if poll <= 0 {
		poll = 25 * time.Millisecond
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	started := time.Now()
	var (
		trials   []*Trial
		running  []runningTrial
		obs      []Observation
		launched int
		finished int
	)

	finalize := func(rt runningTrial, status TrialStatus, reason string) {
		rt.trial.Status = status
		rt.trial.Reason = reason
		rt.trial.FinishedAt = time.Now()
		if v, ok := rt.trial.LastValue(); ok {
			rt.trial.Objective = v
			if status == TrialCompleted {
				obs = append(obs, Observation{Params: rt.trial.Params, Value: v})
			}
		} else if status == TrialCompleted {
			rt.trial.Status = TrialFailed
			rt.trial.Error = "no metric reported"
		}
		if err := rt.handle.Err(); err != nil && rt.trial.Error == "" {
			rt.trial.Error = err.Error()
		}
		finished++
		logger.Debug("trial finished",
			zap.String("trial", rt.trial.ID),
			zap.String("status", string(rt.trial.Status)),
			zap.Float64("objective", rt.trial.Objective),
		)
		if s.Progress != nil {
			s.Progress(finished, len(running))
		}
	}

	stopAll := func() {
		for _, rt := range running {
			rt.handle.Stop()
		}
	}

	for finished < s.MaxTrials {
		// Top up the running set.
		for len(running) < maxParallel && launched < s.MaxTrials {
			if s.Limiter != nil {
				if err := s.Limiter.Wait(ctx); err != nil {
					stopAll()
					return SweepReport{}, err
				}
			}
			batch, err := s.Generator.Generate(ctx, s.Space, 1, obs)
			if err != nil {
				stopAll()
				return SweepReport{}, fmt.Errorf("scheduler: generate: %w", err)
			}
			if len(batch) == 0 {
				stopAll()
				return SweepReport{}, errors.New("scheduler: generator returned no candidates")
			}
			trial := &Trial{
				ID:        fmt.Sprintf("trial-%04d", launched),
				Params:    s.Space.Clip(batch[0]),
				Status:    TrialRunning,
				StartedAt: time.Now(),
			}
			launched++
			handle, err := s.Runner.Run(ctx, trial)
			if err != nil {
				trial.Status = TrialFailed
				trial.Error = err.Error()
				trial.FinishedAt = time.Now()
				trials = append(trials, trial)
				finished++
				logger.Warn("trial launch failed", zap.String("trial", trial.ID), zap.Error(err))
				if s.Progress != nil {
					s.Progress(finished, len(running))
				}
				continue
			}
			logger.Debug("trial launched", zap.String("trial", trial.ID))
			trials = append(trials, trial)
			running = append(running, runningTrial{trial: trial, handle: handle})
		}

		if finished >= s.MaxTrials {
			break
		}

		select {
		case <-ctx.Done():
			stopAll()
			return SweepReport{}, ctx.Err()
		case <-time.After(poll):
		}

		// Poll curves and collect terminal trials. Status is read before the
		// curve so that a trial observed terminal here has its final
		// measurements included in the fetch.
		next := running[:0]
		for _, rt := range running {
			status := rt.handle.Status()
			rt.trial.Curve = s.fetchCurve(ctx, logger, rt)
			if status.Terminal() {
				finalize(rt, status, "")
				continue
			}
			next = append(next, rt)
		}
		running = next

		// Apply the stopping rule to whatever is still running.
		if s.Stopper != nil {
			next = running[:0]
			for _, rt := range running {
				stop, reason := s.Stopper.ShouldStop(rt.trial, trials)
				if stop {
					rt.handle.Stop()
					finalize(rt, TrialEarlyStopped, reason)
					logger.Info("trial stopped early",
						zap.String("trial", rt.trial.ID),
						zap.String("reason", reason),
					)
					continue
				}
				next = append(next, rt)
			}
			running = next
		}
	}

	results := make([]TrialResult, 0, len(trials))
	for _, t := range trials {
		results = append(results, TrialResult{
			ID:        t.ID,
			Params:    t.Params,
			Status:    t.Status,
			Objective: t.Objective,
			Steps:     len(t.Curve),
			Reason:    t.Reason,
			Error:     t.Error,
			Duration:  t.FinishedAt.Sub(t.StartedAt),
			Curve:     t.Curve,
		})
	}

	name := s.Name
	if name == "" {
		name = s.Space.Name()
	}
	return SweepReport{
		Name:       name,
		Generator:  s.Generator.Name(),
		Runner:     s.Runner.Name(),
		Objective:  s.Objective,
		Minimize:   s.Minimize,
		Metrics:    CalculateMetrics(results, s.Minimize),
		Results:    results,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}, nil
}

func (s *Scheduler) fetchCurve(ctx context.Context, logger *zap.Logger, rt runningTrial) []Measurement {
	if s.Metric != nil {
		curve, err := s.Metric.Fetch(ctx, rt.trial.ID, s.Objective)
		if err == nil && len(curve) > 0 {
			return curve
		}
		if err != nil {
			logger.Debug("metric fetch failed, using handle curve",
				zap.String("trial", rt.trial.ID), zap.Error(err))
		}
	}
	return rt.handle.Curve()
}
