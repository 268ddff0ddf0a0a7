package runner

import (
	"context"
	"sync"

	"sweepgo/pkg/core"
)

// handle is the in-memory trial handle shared by the in-process runners.
type handle struct {
	mu     sync.Mutex
	status core.TrialStatus
	curve  []core.Measurement
	err    error

	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	doneOnce sync.Once
}

func newHandle() *handle {
	return &handle{
		status: core.TrialRunning,
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

func (h *handle) Status() core.TrialStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *handle) Curve() []core.Measurement {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.Measurement, len(h.curve))
	copy(out, h.curve)
	return out
}

func (h *handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *handle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return nil
	}
}

func (h *handle) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *handle) report(m core.Measurement) {
	h.mu.Lock()
	h.curve = append(h.curve, m)
	h.mu.Unlock()
}

func (h *handle) finish(status core.TrialStatus, err error) {
	h.doneOnce.Do(func() {
		h.mu.Lock()
		h.status = status
		h.err = err
		h.mu.Unlock()
		close(h.done)
	})
}
