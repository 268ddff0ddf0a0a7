package reporter

import "sweepgo/pkg/core"

// Reporter writes a sweep report.
type Reporter interface {
	Report(report core.SweepReport) error
}

const (
	FormatJSON     = "json"
	FormatTable    = "table"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)
