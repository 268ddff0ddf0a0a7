package sweeplog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sweepgo/pkg/core"
	"sweepgo/pkg/sweeplog"
)

func sampleReport() core.SweepReport {
	results := []core.TrialResult{
		{
			ID:        "trial-0000",
			Params:    core.Params{"x": 0.2},
			Status:    core.TrialCompleted,
			Objective: 0.04,
			Steps:     3,
			Duration:  2 * time.Second,
			Curve:     []core.Measurement{{Step: 1, Value: 1}, {Step: 2, Value: 0.2}, {Step: 3, Value: 0.04}},
		},
		{
			ID:     "trial-0001",
			Params: core.Params{"x": 0.9},
			Status: core.TrialEarlyStopped,
			Steps:  1,
			Reason: "unpromising",
			Curve:  []core.Measurement{{Step: 1, Value: 9}},
		},
		{
			ID:     "trial-0002",
			Params: core.Params{"x": 0.5},
			Status: core.TrialFailed,
			Error:  "boom",
		},
	}
	return core.SweepReport{
		Name:       "sample",
		Generator:  "random",
		Runner:     "mock",
		Objective:  "loss",
		Minimize:   true,
		Metrics:    core.CalculateMetrics(results, true),
		Results:    results,
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
	}
}

func TestFromReport(t *testing.T) {
	log := sweeplog.FromReport(sampleReport())

	require.Equal(t, 1, log.Version)
	require.Equal(t, "success", log.Status)
	require.Equal(t, "sample", log.Sweep.Name)
	require.Equal(t, "random", log.Sweep.Generator)
	require.True(t, log.Sweep.Minimize)
	require.Equal(t, 3, log.Sweep.Trials)
	require.NotEmpty(t, log.Sweep.SweepID)
	require.NotEmpty(t, log.Sweep.RunID)
	require.Len(t, log.Trials, 3)
	require.Equal(t, 0.04, log.Metrics["best_value"])
	require.Equal(t, 1.0, log.Metrics["early_stopped"])
	require.Equal(t, 2.0, log.Trials[0].Duration)
	require.NotEmpty(t, log.Trials[0].UUID)
}

func TestFromReportErrorStatus(t *testing.T) {
	report := core.SweepReport{
		Results: []core.TrialResult{{ID: "t", Status: core.TrialFailed, Error: "boom"}},
	}
	report.Metrics = core.CalculateMetrics(report.Results, true)
	log := sweeplog.FromReport(report)
	require.Equal(t, "error", log.Status)
}

func TestWriteAndReadJSON(t *testing.T) {
	dir := t.TempDir()
	log := sweeplog.FromReport(sampleReport())

	path, err := sweeplog.WriteJSON(dir, log)
	require.NoError(t, err)

	back, err := sweeplog.ReadJSON(path)
	require.NoError(t, err)
	require.Equal(t, log.Sweep, back.Sweep)
	require.Equal(t, log.Trials, back.Trials)
	require.Equal(t, log.Metrics, back.Metrics)
}

func TestWriteAndReadArchive(t *testing.T) {
	dir := t.TempDir()
	log := sweeplog.FromReport(sampleReport())

	path, err := sweeplog.WriteArchive(dir, log)
	require.NoError(t, err)

	back, err := sweeplog.ReadArchive(path)
	require.NoError(t, err)
	require.Equal(t, log.Sweep, back.Sweep)
	require.Equal(t, log.Stats, back.Stats)
	require.Len(t, back.Trials, len(log.Trials))
	require.ElementsMatch(t, log.Trials, back.Trials)
}

func TestWriteRequiresLogDir(t *testing.T) {
	log := sweeplog.FromReport(sampleReport())
	_, err := sweeplog.WriteJSON("", log)
	require.Error(t, err)
	_, err = sweeplog.WriteArchive("", log)
	require.Error(t, err)
}

func TestToReportRoundTrip(t *testing.T) {
	report := sampleReport()
	back := sweeplog.ToReport(sweeplog.FromReport(report))

	require.Equal(t, report.Name, back.Name)
	require.Equal(t, report.Generator, back.Generator)
	require.Equal(t, report.Minimize, back.Minimize)
	require.Equal(t, report.Metrics, back.Metrics)
	require.Len(t, back.Results, len(report.Results))
	require.Equal(t, report.Results[0].Curve, back.Results[0].Curve)
}

func TestPendingTrials(t *testing.T) {
	log := sweeplog.FromReport(sampleReport())

	pending := sweeplog.PendingTrials(log)
	require.Len(t, pending, 2)
	require.Equal(t, "trial-0001", pending[0].ID)
	require.Equal(t, "trial-0002", pending[1].ID)

	params := sweeplog.PendingParams(log)
	require.Equal(t, []core.Params{{"x": 0.9}, {"x": 0.5}}, params)
}
