package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"

	"sweepgo/pkg/core"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
)

type TableReporter struct {
	Writer io.Writer
}

func (r TableReporter) Report(report core.SweepReport) error {
	direction := "max"
	if report.Minimize {
		direction = "min"
	}
	headline := fmt.Sprintf("%s: %s %s via %s on %s",
		report.Name, direction, report.Objective, report.Generator, report.Runner)
	if isTerminal(r.Writer) {
		headline = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Render(headline)
	}
	fmt.Fprintln(r.Writer, headline)

	table := tablewriter.NewWriter(r.Writer)
	table.Header([]string{"Metric", "Value"})
	table.Append([]string{"Trials", fmt.Sprintf("%d", report.Metrics.TotalTrials)})
	table.Append([]string{"Completed", fmt.Sprintf("%d", report.Metrics.Completed)})
	table.Append([]string{"Early stopped", fmt.Sprintf("%d", report.Metrics.EarlyStopped)})
	table.Append([]string{"Failed", fmt.Sprintf("%d", report.Metrics.Failed)})
	table.Append([]string{"Best value", fmt.Sprintf("%.4g", report.Metrics.BestValue)})
	table.Append([]string{"Best trial", report.Metrics.BestTrial})
	table.Append([]string{"Mean value", fmt.Sprintf("%.4g", report.Metrics.MeanValue)})
	table.Append([]string{"Median value", fmt.Sprintf("%.4g", report.Metrics.MedianValue)})
	table.Append([]string{"P95 value", fmt.Sprintf("%.4g", report.Metrics.P95Value)})
	table.Append([]string{"Steps run", fmt.Sprintf("%d", report.Metrics.TotalSteps)})
	table.Append([]string{"Steps saved", fmt.Sprintf("%d", report.Metrics.SavedSteps)})
	table.Render()

	if len(report.Metrics.BestParams) > 0 {
		fmt.Fprintln(r.Writer, "Best parameters:")
		best := tablewriter.NewWriter(r.Writer)
		best.Header([]string{"Parameter", "Value"})
		names := make([]string, 0, len(report.Metrics.BestParams))
		for name := range report.Metrics.BestParams {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			best.Append([]string{name, fmt.Sprintf("%.6g", report.Metrics.BestParams[name])})
		}
		best.Render()
	}
	return nil
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
