package reporter

import (
	"fmt"
	"io"
	"strconv"

	"sweepgo/pkg/core"
)

type MarkdownReporter struct {
	Writer io.Writer
}

func (r MarkdownReporter) Report(report core.SweepReport) error {
	if _, err := fmt.Fprintf(r.Writer, "# Sweep Report: %s\n\n", report.Name); err != nil {
		return err
	}
	direction := "maximize"
	if report.Minimize {
		direction = "minimize"
	}
	if _, err := fmt.Fprintf(r.Writer, "- Objective: %s (%s)\n- Generator: %s\n- Runner: %s\n\n",
		report.Objective, direction, report.Generator, report.Runner); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(r.Writer, "## Summary\n\n| Metric | Value |\n|---|---|\n"); err != nil {
		return err
	}
	lines := []struct {
		Name  string
		Value string
	}{
		{"Trials", strconv.Itoa(report.Metrics.TotalTrials)},
		{"Completed", strconv.Itoa(report.Metrics.Completed)},
		{"Early stopped", strconv.Itoa(report.Metrics.EarlyStopped)},
		{"Failed", strconv.Itoa(report.Metrics.Failed)},
		{"Best value", fmt.Sprintf("%.4g", report.Metrics.BestValue)},
		{"Mean value", fmt.Sprintf("%.4g", report.Metrics.MeanValue)},
		{"Median value", fmt.Sprintf("%.4g", report.Metrics.MedianValue)},
		{"Steps saved", strconv.Itoa(report.Metrics.SavedSteps)},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(r.Writer, "| %s | %s |\n", line.Name, line.Value); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(r.Writer, "\n## Trials\n\n| ID | Status | Objective | Steps | Reason |\n|---|---|---|---|---|\n"); err != nil {
		return err
	}
	for _, result := range report.Results {
		if _, err := fmt.Fprintf(
			r.Writer,
			"| %s | %s | %.4g | %d | %s |\n",
			result.ID, result.Status, result.Objective, result.Steps, escapePipe(result.Reason),
		); err != nil {
			return err
		}
	}
	return nil
}

func escapePipe(input string) string {
	if input == "" {
		return ""
	}
	out := make([]rune, 0, len(input))
	for _, r := range input {
		switch r {
		case '|':
			out = append(out, '\\', r)
		case '\n', '\r':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
