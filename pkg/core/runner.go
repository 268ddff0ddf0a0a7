package core

import "context"

// Handle tracks one launched trial. Curve returns the metric values reported
// so far and must be safe to call while the trial is running.
type Handle interface {
	Status() TrialStatus
	Curve() []Measurement
	Err() error

	// Wait blocks until the trial reaches a terminal status or ctx is done.
	Wait(ctx context.Context) error

	// Stop asks the trial to terminate. Idempotent.
	Stop()
}

// Runner launches trials. It is the boundary to whatever actually executes
// the workload: an in-process objective, an external command, a cluster job.
type Runner interface {
	Name() string
	Run(ctx context.Context, trial *Trial) (Handle, error)
}
