// Package metric reads scalar curves that trial workloads write to disk. It
// is the harness-side half of the metrics contract: jobs append one scalar
// per progression step to a per-trial file, the scheduler fetches the curve.
package metric

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sweepgo/pkg/core"
)

// FileSource serves per-trial scalar files from a run directory. The layout
// is Dir/<trialID>/<metric>.jsonl (or .csv).
type FileSource struct {
	Dir string
}

func (s *FileSource) Name() string {
	return "file"
}

func (s *FileSource) Fetch(ctx context.Context, trialID, metric string) ([]core.Measurement, error) {
	if metric == "" {
		return nil, errors.New("metric: metric name is required")
	}
	for _, ext := range []string{".jsonl", ".csv"} {
		path := filepath.Join(s.Dir, trialID, metric+ext)
		if _, err := os.Stat(path); err == nil {
			return ReadFile(ctx, path)
		}
	}
	return nil, fmt.Errorf("metric: no %q curve for trial %s under %s", metric, trialID, s.Dir)
}

// ReadFile loads a scalar curve, detecting the format from the extension.
func ReadFile(ctx context.Context, path string) ([]core.Measurement, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return ReadJSONL(ctx, path)
	case ".csv":
		return ReadCSV(ctx, path)
	default:
		return nil, fmt.Errorf("metric: unsupported format %q", filepath.Ext(path))
	}
}

// ReadJSONL reads one JSON measurement per line.
func ReadJSONL(ctx context.Context, path string) ([]core.Measurement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var curve []core.Measurement
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var m core.Measurement
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, fmt.Errorf("metric: %s: %w", path, err)
		}
		curve = append(curve, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return curve, nil
}

// ReadCSV reads step,value rows. A non-numeric first row is treated as a
// header and skipped.
func ReadCSV(ctx context.Context, path string) ([]core.Measurement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("metric: %s: %w", path, err)
	}

	var curve []core.Measurement
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("metric: %s: row %d has %d columns, want 2", path, i+1, len(rec))
		}
		step, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("metric: %s: row %d: %w", path, i+1, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("metric: %s: row %d: %w", path, i+1, err)
		}
		curve = append(curve, core.Measurement{Step: step, Value: value})
	}
	return curve, nil
}

// WriteJSONL appends measurements to a per-trial curve file, creating parent
// directories as needed. Jobs launched by the exec runner use this helper.
func WriteJSONL(path string, curve []core.Measurement) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, m := range curve {
		if err := encoder.Encode(m); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// Stream emits measurements from a curve file over channels, mirroring how
// the scheduler consumes long curves without holding them in memory.
func Stream(ctx context.Context, path string) (<-chan core.Measurement, <-chan error) {
	out := make(chan core.Measurement)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		curve, err := ReadFile(ctx, path)
		if err != nil {
			errCh <- err
			return
		}
		for _, m := range curve {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- m:
			}
		}
	}()
	return out, errCh
}
