package core

import "context"

// MetricSource fetches a named scalar curve for a trial. The scheduler falls
// back to handle curves when no source is configured; an external source is
// used when the workload writes metrics somewhere the runner cannot see.
type MetricSource interface {
	Name() string
	Fetch(ctx context.Context, trialID, metric string) ([]Measurement, error)
}
