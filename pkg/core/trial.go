package core

import "time"

// TrialStatus tracks a trial through its lifecycle.
type TrialStatus string

const (
	TrialPending      TrialStatus = "pending"
	TrialRunning      TrialStatus = "running"
	TrialCompleted    TrialStatus = "completed"
	TrialEarlyStopped TrialStatus = "early_stopped"
	TrialFailed       TrialStatus = "failed"
)

// Terminal reports whether the status is final.
func (s TrialStatus) Terminal() bool {
	switch s {
	case TrialCompleted, TrialEarlyStopped, TrialFailed:
		return true
	}
	return false
}

// Measurement is one point of a trial's metric curve.
type Measurement struct {
	Step  int     `json:"step" yaml:"step"`
	Value float64 `json:"value" yaml:"value"`
}

// Trial is a single evaluation of one parameterization.
type Trial struct {
	ID        string        `json:"id" yaml:"id"`
	Params    Params        `json:"params" yaml:"params"`
	Status    TrialStatus   `json:"status" yaml:"status"`
	Curve     []Measurement `json:"curve,omitempty" yaml:"curve,omitempty"`
	Objective float64       `json:"objective" yaml:"objective"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`

	// Reason records why a trial was stopped early.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	StartedAt  time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// LastStep returns the latest progression the trial has reported, or -1 if
// the curve is empty.
func (t *Trial) LastStep() int {
	if len(t.Curve) == 0 {
		return -1
	}
	return t.Curve[len(t.Curve)-1].Step
}

// LastValue returns the latest metric value on the curve.
func (t *Trial) LastValue() (float64, bool) {
	if len(t.Curve) == 0 {
		return 0, false
	}
	return t.Curve[len(t.Curve)-1].Value, true
}

// ValueAt interpolates the curve at step. The second return is false when the
// curve does not reach that step.
func (t *Trial) ValueAt(step int) (float64, bool) {
	if len(t.Curve) == 0 || t.Curve[len(t.Curve)-1].Step < step {
		return 0, false
	}
	prev := t.Curve[0]
	if prev.Step >= step {
		return prev.Value, true
	}
	for _, m := range t.Curve[1:] {
		if m.Step == step {
			return m.Value, true
		}
		if m.Step > step {
			span := float64(m.Step - prev.Step)
			w := float64(step-prev.Step) / span
			return prev.Value*(1-w) + m.Value*w, true
		}
		prev = m
	}
	return prev.Value, true
}
