package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sweepgo/pkg/core"
)

func TestCalculateMetrics(t *testing.T) {
	results := []core.TrialResult{
		{ID: "t0", Status: core.TrialCompleted, Objective: 2.0, Steps: 10, Params: core.Params{"x": 1}},
		{ID: "t1", Status: core.TrialCompleted, Objective: 1.0, Steps: 10, Params: core.Params{"x": 2}},
		{ID: "t2", Status: core.TrialCompleted, Objective: 4.0, Steps: 10, Params: core.Params{"x": 3}},
		{ID: "t3", Status: core.TrialEarlyStopped, Objective: 9.0, Steps: 4},
		{ID: "t4", Status: core.TrialFailed, Steps: 0},
	}

	m := core.CalculateMetrics(results, true)
	require.Equal(t, 5, m.TotalTrials)
	require.Equal(t, 3, m.Completed)
	require.Equal(t, 1, m.EarlyStopped)
	require.Equal(t, 1, m.Failed)
	require.Equal(t, 1.0, m.BestValue)
	require.Equal(t, "t1", m.BestTrial)
	require.Equal(t, core.Params{"x": 2}, m.BestParams)
	require.InDelta(t, 7.0/3.0, m.MeanValue, 1e-9)
	require.Equal(t, 2.0, m.MedianValue)
	require.Equal(t, 34, m.TotalSteps)
	require.Equal(t, 6, m.SavedSteps)
}

func TestCalculateMetricsMaximize(t *testing.T) {
	results := []core.TrialResult{
		{ID: "t0", Status: core.TrialCompleted, Objective: 0.7},
		{ID: "t1", Status: core.TrialCompleted, Objective: 0.9},
	}
	m := core.CalculateMetrics(results, false)
	require.Equal(t, 0.9, m.BestValue)
	require.Equal(t, "t1", m.BestTrial)
}

func TestCalculateMetricsEmpty(t *testing.T) {
	m := core.CalculateMetrics(nil, true)
	require.Equal(t, 0, m.TotalTrials)
}

func TestSweepReportJSONRoundTrip(t *testing.T) {
	report := core.SweepReport{
		Name:      "roundtrip",
		Generator: "random",
		Runner:    "mock",
		Objective: "loss",
		Minimize:  true,
		Results: []core.TrialResult{
			{
				ID:        "trial-0000",
				Params:    core.Params{"x": 0.5},
				Status:    core.TrialCompleted,
				Objective: 0.25,
				Steps:     2,
				Duration:  3 * time.Second,
				Curve:     []core.Measurement{{Step: 1, Value: 1}, {Step: 2, Value: 0.25}},
			},
		},
		Metadata:   map[string]string{"benchmark": "sphere"},
		StartedAt:  time.Now().UTC().Truncate(time.Second),
		FinishedAt: time.Now().UTC().Truncate(time.Second),
	}
	report.Metrics = core.CalculateMetrics(report.Results, true)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var back core.SweepReport
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, report.Name, back.Name)
	require.Equal(t, report.Metrics, back.Metrics)
	require.Equal(t, report.Results, back.Results)
	require.Equal(t, report.Metadata, back.Metadata)
}
