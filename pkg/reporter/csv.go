package reporter

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"sweepgo/pkg/core"
)

type CSVReporter struct {
	Writer io.Writer
}

func (r CSVReporter) Report(report core.SweepReport) error {
	names := paramNames(report)

	writer := csv.NewWriter(r.Writer)
	header := append([]string{"id", "status", "objective", "steps", "reason", "error", "duration_seconds"}, names...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, result := range report.Results {
		record := []string{
			result.ID,
			string(result.Status),
			strconv.FormatFloat(result.Objective, 'f', 6, 64),
			strconv.Itoa(result.Steps),
			result.Reason,
			result.Error,
			strconv.FormatFloat(result.Duration.Seconds(), 'f', 6, 64),
		}
		for _, name := range names {
			record = append(record, strconv.FormatFloat(result.Params[name], 'g', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func paramNames(report core.SweepReport) []string {
	seen := map[string]bool{}
	var names []string
	for _, result := range report.Results {
		for name := range result.Params {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
