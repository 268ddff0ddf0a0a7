package reporter

import (
	"html/template"
	"io"

	"sweepgo/pkg/core"
)

type HTMLReporter struct {
	Writer io.Writer
	Title  string
}

func (r HTMLReporter) Report(report core.SweepReport) error {
	title := r.Title
	if title == "" {
		title = "Sweep Report"
	}

	data := struct {
		Title  string
		Report core.SweepReport
	}{
		Title:  title,
		Report: report,
	}

	tpl := template.Must(template.New("report").Parse(htmlTemplate))
	return tpl.Execute(r.Writer, data)
}

const htmlTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 24px; }
    table { border-collapse: collapse; width: 100%; margin-top: 16px; }
    th, td { border: 1px solid #ddd; padding: 8px; }
    th { background: #f5f5f5; text-align: left; }
    .meta { margin-bottom: 12px; }
  </style>
</head>
<body>
  <h1>{{ .Title }}</h1>
  <div class="meta">
    <div><strong>Sweep:</strong> {{ .Report.Name }}</div>
    <div><strong>Objective:</strong> {{ .Report.Objective }}</div>
    <div><strong>Generator:</strong> {{ .Report.Generator }}</div>
    <div><strong>Runner:</strong> {{ .Report.Runner }}</div>
  </div>
  <h2>Summary</h2>
  <table>
    <tr><th>Metric</th><th>Value</th></tr>
    <tr><td>Trials</td><td>{{ .Report.Metrics.TotalTrials }}</td></tr>
    <tr><td>Completed</td><td>{{ .Report.Metrics.Completed }}</td></tr>
    <tr><td>Early stopped</td><td>{{ .Report.Metrics.EarlyStopped }}</td></tr>
    <tr><td>Failed</td><td>{{ .Report.Metrics.Failed }}</td></tr>
    <tr><td>Best value</td><td>{{ printf "%.4g" .Report.Metrics.BestValue }}</td></tr>
    <tr><td>Mean value</td><td>{{ printf "%.4g" .Report.Metrics.MeanValue }}</td></tr>
    <tr><td>Median value</td><td>{{ printf "%.4g" .Report.Metrics.MedianValue }}</td></tr>
  </table>
  <h2>Trials</h2>
  <table>
    <tr><th>ID</th><th>Status</th><th>Objective</th><th>Steps</th><th>Reason</th><th>Error</th></tr>
    {{ range .Report.Results }}
    <tr>
      <td>{{ .ID }}</td>
      <td>{{ .Status }}</td>
      <td>{{ printf "%.4g" .Objective }}</td>
      <td>{{ .Steps }}</td>
      <td>{{ .Reason }}</td>
      <td>{{ .Error }}</td>
    </tr>
    {{ end }}
  </table>
</body>
</html>
`
