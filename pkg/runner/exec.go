package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"sweepgo/pkg/core"
	"sweepgo/pkg/metric"
)

// Exec launches one external process per trial. Parameters are exposed to
// the job through argument templating ({{name}} placeholders) and SWEEP_*
// environment variables; the job reports its curve by appending JSON lines
// to the file named in SWEEP_METRICS_PATH.
type Exec struct {
	Command string
	Args    []string
	Dir     string
	Env     []string

	// MetricsDir is where jobs write their curves, one
	// <MetricsDir>/<trialID>.jsonl file each. Default "./metrics".
	MetricsDir string
}

func (r *Exec) Name() string {
	return "exec"
}

func (r *Exec) Run(ctx context.Context, trial *core.Trial) (core.Handle, error) {
	if r.Command == "" {
		return nil, errors.New("exec runner: command is required")
	}
	metricsDir := r.MetricsDir
	if metricsDir == "" {
		metricsDir = "./metrics"
	}
	if err := os.MkdirAll(metricsDir, 0o755); err != nil {
		return nil, err
	}
	metricsPath := filepath.Join(metricsDir, trial.ID+".jsonl")

	args := make([]string, len(r.Args))
	for i, arg := range r.Args {
		args[i] = expandArg(arg, trial, metricsPath)
	}

	cmd := exec.Command(r.Command, args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), r.Env...)
	cmd.Env = append(cmd.Env,
		"SWEEP_TRIAL_ID="+trial.ID,
		"SWEEP_METRICS_PATH="+metricsPath,
	)
	for name, value := range trial.Params {
		cmd.Env = append(cmd.Env, fmt.Sprintf("SWEEP_PARAM_%s=%g", envName(name), value))
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("exec runner: start: %w", err)
	}

	h := &execHandle{cmd: cmd, metricsPath: metricsPath, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		h.mu.Lock()
		if h.stopped {
			h.status = core.TrialEarlyStopped
		} else if err != nil {
			h.status = core.TrialFailed
			h.err = err
		} else {
			h.status = core.TrialCompleted
		}
		h.mu.Unlock()
		close(h.done)
	}()
	go func() {
		select {
		case <-ctx.Done():
			h.Stop()
		case <-h.done:
		}
	}()
	return h, nil
}

type execHandle struct {
	cmd         *exec.Cmd
	metricsPath string

	mu      sync.Mutex
	status  core.TrialStatus
	stopped bool
	err     error
	done    chan struct{}
}

func (h *execHandle) Status() core.TrialStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == "" {
		return core.TrialRunning
	}
	return h.status
}

func (h *execHandle) Curve() []core.Measurement {
	curve, err := metric.ReadFile(context.Background(), h.metricsPath)
	if err != nil {
		return nil
	}
	return curve
}

func (h *execHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *execHandle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return nil
	}
}

func (h *execHandle) Stop() {
	h.mu.Lock()
	already := h.stopped
	h.stopped = true
	h.mu.Unlock()
	if already {
		return
	}
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}

func expandArg(arg string, trial *core.Trial, metricsPath string) string {
	arg = strings.ReplaceAll(arg, "{{trial}}", trial.ID)
	arg = strings.ReplaceAll(arg, "{{metrics}}", metricsPath)
	for name, value := range trial.Params {
		arg = strings.ReplaceAll(arg, "{{"+name+"}}", fmt.Sprintf("%g", value))
	}
	return arg
}

func envName(name string) string {
	out := strings.ToUpper(name)
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, out)
}
