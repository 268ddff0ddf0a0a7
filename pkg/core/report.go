package core

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TrialResult is the flattened outcome of one trial, as reported.
type TrialResult struct {
	ID        string        `json:"id" yaml:"id"`
	Params    Params        `json:"params" yaml:"params"`
	Status    TrialStatus   `json:"status" yaml:"status"`
	Objective float64       `json:"objective" yaml:"objective"`
	Steps     int           `json:"steps" yaml:"steps"`
	Reason    string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Curve     []Measurement `json:"curve,omitempty" yaml:"curve,omitempty"`
}

// SweepReport summarizes a sweep run.
type SweepReport struct {
	Name      string            `json:"name" yaml:"name"`
	Generator string            `json:"generator" yaml:"generator"`
	Runner    string            `json:"runner" yaml:"runner"`
	Objective string            `json:"objective" yaml:"objective"`
	Minimize  bool              `json:"minimize" yaml:"minimize"`
	Metrics   SweepMetrics      `json:"metrics" yaml:"metrics"`
	Results   []TrialResult     `json:"results" yaml:"results"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// SweepMetrics aggregates sweep statistics. Value statistics cover completed
// trials only; early-stopped and failed trials are counted separately.
type SweepMetrics struct {
	TotalTrials  int `json:"total_trials" yaml:"total_trials"`
	Completed    int `json:"completed" yaml:"completed"`
	EarlyStopped int `json:"early_stopped" yaml:"early_stopped"`
	Failed       int `json:"failed" yaml:"failed"`

	BestValue  float64 `json:"best_value" yaml:"best_value"`
	BestTrial  string  `json:"best_trial" yaml:"best_trial"`
	BestParams Params  `json:"best_params,omitempty" yaml:"best_params,omitempty"`

	MeanValue   float64 `json:"mean_value" yaml:"mean_value"`
	MedianValue float64 `json:"median_value" yaml:"median_value"`
	P95Value    float64 `json:"p95_value" yaml:"p95_value"`

	// TotalSteps is the number of progression steps actually executed.
	// SavedSteps is what early stopping avoided, measured against the
	// longest curve in the sweep.
	TotalSteps int `json:"total_steps" yaml:"total_steps"`
	SavedSteps int `json:"saved_steps" yaml:"saved_steps"`
}

// CalculateMetrics aggregates trial results into sweep statistics.
func CalculateMetrics(results []TrialResult, minimize bool) SweepMetrics {
	if len(results) == 0 {
		return SweepMetrics{}
	}

	m := SweepMetrics{TotalTrials: len(results)}
	var values []float64
	maxSteps := 0
	haveBest := false

	for _, r := range results {
		m.TotalSteps += r.Steps
		if r.Steps > maxSteps {
			maxSteps = r.Steps
		}
		switch r.Status {
		case TrialCompleted:
			m.Completed++
			values = append(values, r.Objective)
			better := !haveBest ||
				(minimize && r.Objective < m.BestValue) ||
				(!minimize && r.Objective > m.BestValue)
			if better {
				haveBest = true
				m.BestValue = r.Objective
				m.BestTrial = r.ID
				m.BestParams = r.Params
			}
		case TrialEarlyStopped:
			m.EarlyStopped++
		case TrialFailed:
			m.Failed++
		}
	}

	for _, r := range results {
		if r.Status == TrialEarlyStopped && r.Steps < maxSteps {
			m.SavedSteps += maxSteps - r.Steps
		}
	}

	if len(values) > 0 {
		sort.Float64s(values)
		m.MeanValue = stat.Mean(values, nil)
		m.MedianValue = stat.Quantile(0.50, stat.Empirical, values, nil)
		m.P95Value = stat.Quantile(0.95, stat.Empirical, values, nil)
	}
	return m
}
