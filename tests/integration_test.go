package tests

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sweepgo/pkg/core"
	"sweepgo/pkg/generator"
	"sweepgo/pkg/reporter"
	"sweepgo/pkg/runner"
	"sweepgo/pkg/sweeplog"
)

func sphereSpace() core.SearchSpace {
	return core.SearchSpace{
		NameHint: "sphere",
		Parameters: []core.Parameter{
			{Name: "x1", Type: core.FloatParameter, Min: -5.12, Max: 5.12},
			{Name: "x2", Type: core.FloatParameter, Min: -5.12, Max: 5.12},
		},
	}
}

func TestEndToEndSweep(t *testing.T) {
	objective, ok := runner.Benchmark("sphere")
	require.True(t, ok)

	strategy := &generator.Strategy{Phases: []generator.Phase{
		{Generator: &generator.Halton{}, Trials: 8},
		{Generator: &generator.Forest{Seed: 1, Minimize: true, Trees: 20}},
	}}

	scheduler := core.Scheduler{
		Space:        sphereSpace(),
		Generator:    strategy,
		Runner:       &runner.Local{Objective: objective, Epochs: 6},
		MaxTrials:    24,
		MaxParallel:  4,
		PollInterval: time.Millisecond,
		Objective:    "loss",
		Minimize:     true,
	}

	report, err := scheduler.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 24)
	require.Equal(t, 24, report.Metrics.Completed)
	require.Equal(t, "halton | forest", report.Generator)

	// The model-guided phase should end up well inside the domain; random
	// points on [-5.12, 5.12]^2 average a sphere value around 17.
	require.Less(t, report.Metrics.BestValue, 10.0)
	require.NotEmpty(t, report.Metrics.BestTrial)
	require.NoError(t, sphereSpace().Check(report.Metrics.BestParams))
}

func TestEndToEndSweepWithEarlyStopping(t *testing.T) {
	objective, ok := runner.Benchmark("rastrigin")
	require.True(t, ok)

	scheduler := core.Scheduler{
		Space:     sphereSpace(),
		Generator: &generator.Random{Seed: 42},
		Runner: &runner.Local{
			Objective: objective,
			Epochs:    20,
			StepDelay: 2 * time.Millisecond,
		},
		Stopper: core.PercentileRule{
			Percentile:     70,
			MinProgression: 3,
			MinCurves:      4,
			Minimize:       true,
		},
		MaxTrials:    16,
		MaxParallel:  8,
		PollInterval: 2 * time.Millisecond,
		Objective:    "loss",
		Minimize:     true,
	}

	report, err := scheduler.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 16)
	require.Equal(t, 16, report.Metrics.Completed+report.Metrics.EarlyStopped)

	for _, result := range report.Results {
		if result.Status == core.TrialEarlyStopped {
			require.NotEmpty(t, result.Reason)
			require.Less(t, result.Steps, 20)
		}
	}
}

func TestEndToEndSweepLogRoundTrip(t *testing.T) {
	objective, ok := runner.Benchmark("sphere")
	require.True(t, ok)

	scheduler := core.Scheduler{
		Space:        sphereSpace(),
		Generator:    &generator.Halton{},
		Runner:       &runner.Local{Objective: objective, Epochs: 4},
		MaxTrials:    6,
		PollInterval: time.Millisecond,
		Objective:    "loss",
		Minimize:     true,
	}

	report, err := scheduler.Run(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := sweeplog.WriteArchive(dir, sweeplog.FromReport(report))
	require.NoError(t, err)

	back, err := sweeplog.ReadArchive(path)
	require.NoError(t, err)
	require.Len(t, back.Trials, 6)

	restored := sweeplog.ToReport(back)
	require.Equal(t, report.Metrics.BestValue, restored.Metrics.BestValue)

	rep := reporter.MarkdownReporter{Writer: io.Discard}
	require.NoError(t, rep.Report(restored))
}
