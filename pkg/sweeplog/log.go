// Package sweeplog persists sweep runs to disk: a plain JSON form for quick
// inspection and a zip archive form that keeps per-trial records in separate
// entries so large sweeps can be read incrementally.
package sweeplog

import (
	"archive/zip"
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"sweepgo/pkg/core"
)

const timeLayout = "2006-01-02T15:04:05-07:00"

type SweepLog struct {
	Version int                `json:"version"`
	Status  string             `json:"status"`
	Sweep   SweepSpec          `json:"sweep"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Trials  []TrialRecord      `json:"trials,omitempty"`
	Stats   SweepStats         `json:"stats"`
}

type SweepSpec struct {
	Created   string `json:"created"`
	Name      string `json:"name"`
	Generator string `json:"generator"`
	Runner    string `json:"runner"`
	Objective string `json:"objective"`
	Minimize  bool   `json:"minimize"`
	Trials    int    `json:"trials"`

	SweepID string `json:"sweep_id"`
	RunID   string `json:"run_id"`
}

type SweepStats struct {
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
}

type TrialRecord struct {
	ID        string             `json:"id"`
	Params    core.Params        `json:"params"`
	Status    core.TrialStatus   `json:"status"`
	Objective float64            `json:"objective"`
	Steps     int                `json:"steps"`
	Reason    string             `json:"reason,omitempty"`
	Error     string             `json:"error,omitempty"`
	Curve     []core.Measurement `json:"curve,omitempty"`
	Duration  float64            `json:"duration_seconds"`
	UUID      string             `json:"uuid"`
}

type TrialSummary struct {
	ID        string           `json:"id"`
	Status    core.TrialStatus `json:"status"`
	Objective float64          `json:"objective"`
	Steps     int              `json:"steps"`
	Completed bool             `json:"completed"`
	Error     string           `json:"error,omitempty"`
}

// FromReport converts a finished sweep into its log form.
func FromReport(report core.SweepReport) SweepLog {
	started := report.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	finished := report.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}

	trials := make([]TrialRecord, 0, len(report.Results))
	for _, result := range report.Results {
		trials = append(trials, TrialRecord{
			ID:        result.ID,
			Params:    result.Params,
			Status:    result.Status,
			Objective: result.Objective,
			Steps:     result.Steps,
			Reason:    result.Reason,
			Error:     result.Error,
			Curve:     result.Curve,
			Duration:  result.Duration.Seconds(),
			UUID:      generateID(),
		})
	}

	status := "success"
	if report.Metrics.Completed == 0 {
		status = "error"
	}

	return SweepLog{
		Version: 1,
		Status:  status,
		Sweep: SweepSpec{
			Created:   started.UTC().Format(timeLayout),
			Name:      report.Name,
			Generator: report.Generator,
			Runner:    report.Runner,
			Objective: report.Objective,
			Minimize:  report.Minimize,
			Trials:    report.Metrics.TotalTrials,
			SweepID:   generateID(),
			RunID:     generateID(),
		},
		Metrics: map[string]float64{
			"best_value":    report.Metrics.BestValue,
			"mean_value":    report.Metrics.MeanValue,
			"median_value":  report.Metrics.MedianValue,
			"p95_value":     report.Metrics.P95Value,
			"early_stopped": float64(report.Metrics.EarlyStopped),
			"failed":        float64(report.Metrics.Failed),
			"saved_steps":   float64(report.Metrics.SavedSteps),
		},
		Trials: trials,
		Stats: SweepStats{
			StartedAt:   started.UTC().Format(timeLayout),
			CompletedAt: finished.UTC().Format(timeLayout),
		},
	}
}

// ToReport reconstructs a report from a log, e.g. to re-render an old sweep.
func ToReport(log SweepLog) core.SweepReport {
	results := make([]core.TrialResult, 0, len(log.Trials))
	for _, t := range log.Trials {
		results = append(results, core.TrialResult{
			ID:        t.ID,
			Params:    t.Params,
			Status:    t.Status,
			Objective: t.Objective,
			Steps:     t.Steps,
			Reason:    t.Reason,
			Error:     t.Error,
			Curve:     t.Curve,
			Duration:  time.Duration(t.Duration * float64(time.Second)),
		})
	}

	var startedAt, finishedAt time.Time
	if t, err := time.Parse(timeLayout, log.Stats.StartedAt); err == nil {
		startedAt = t
	}
	if t, err := time.Parse(timeLayout, log.Stats.CompletedAt); err == nil {
		finishedAt = t
	}

	return core.SweepReport{
		Name:       log.Sweep.Name,
		Generator:  log.Sweep.Generator,
		Runner:     log.Sweep.Runner,
		Objective:  log.Sweep.Objective,
		Minimize:   log.Sweep.Minimize,
		Metrics:    core.CalculateMetrics(results, log.Sweep.Minimize),
		Results:    results,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
}

// PendingTrials lists the trials that did not complete, so a follow-up sweep
// can retry them.
func PendingTrials(log SweepLog) []TrialRecord {
	var out []TrialRecord
	for _, t := range log.Trials {
		if t.Status != core.TrialCompleted {
			out = append(out, t)
		}
	}
	return out
}

// PendingParams is PendingTrials reduced to the parameterizations.
func PendingParams(log SweepLog) []core.Params {
	pending := PendingTrials(log)
	out := make([]core.Params, 0, len(pending))
	for _, t := range pending {
		out = append(out, t.Params)
	}
	return out
}

// WriteJSON writes the log as one indented JSON file and returns its path.
func WriteJSON(logDir string, log SweepLog) (string, error) {
	if logDir == "" {
		return "", fmt.Errorf("sweeplog: logDir is required")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(logDir, buildLogFileName(log, "json"))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(log); err != nil {
		return "", err
	}
	return path, nil
}

// WriteArchive writes the log as a zip archive: header.json without trials,
// summaries.json, and one trials/<id>.json entry per trial.
func WriteArchive(logDir string, log SweepLog) (string, error) {
	if logDir == "" {
		return "", fmt.Errorf("sweeplog: logDir is required")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(logDir, buildLogFileName(log, "sweep"))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	zipWriter := zip.NewWriter(file)
	defer zipWriter.Close()

	header := log
	header.Trials = nil
	if err := writeZipJSON(zipWriter, "header.json", header); err != nil {
		return "", err
	}

	summaries := buildSummaries(log.Trials)
	if err := writeZipJSON(zipWriter, "summaries.json", summaries); err != nil {
		return "", err
	}

	for _, trial := range log.Trials {
		name := fmt.Sprintf("trials/%s.json", sanitizeName(trial.ID))
		if err := writeZipJSON(zipWriter, name, trial); err != nil {
			return "", err
		}
	}
	return path, nil
}

// ReadJSON loads a log written by WriteJSON.
func ReadJSON(path string) (SweepLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return SweepLog{}, err
	}
	defer f.Close()
	var log SweepLog
	if err := json.NewDecoder(f).Decode(&log); err != nil {
		return SweepLog{}, err
	}
	return log, nil
}

// ReadArchive loads a log written by WriteArchive, reassembling the trials
// from their per-entry files.
func ReadArchive(path string) (SweepLog, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return SweepLog{}, err
	}
	defer r.Close()

	var header SweepLog
	for _, f := range r.File {
		if f.Name == "header.json" {
			rc, err := f.Open()
			if err != nil {
				return SweepLog{}, err
			}
			err = json.NewDecoder(rc).Decode(&header)
			rc.Close()
			if err != nil {
				return SweepLog{}, err
			}
			break
		}
	}

	for _, f := range r.File {
		if filepath.Dir(f.Name) != "trials" || filepath.Ext(f.Name) != ".json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return SweepLog{}, err
		}
		var trial TrialRecord
		decodeErr := json.NewDecoder(rc).Decode(&trial)
		rc.Close()
		if decodeErr != nil {
			return SweepLog{}, decodeErr
		}
		header.Trials = append(header.Trials, trial)
	}
	return header, nil
}

func buildSummaries(trials []TrialRecord) []TrialSummary {
	summaries := make([]TrialSummary, 0, len(trials))
	for _, t := range trials {
		summaries = append(summaries, TrialSummary{
			ID:        t.ID,
			Status:    t.Status,
			Objective: t.Objective,
			Steps:     t.Steps,
			Completed: t.Status == core.TrialCompleted,
			Error:     t.Error,
		})
	}
	return summaries
}

func buildLogFileName(log SweepLog, ext string) string {
	timestamp := time.Now().Format("2006-01-02T15-04-05")
	name := sanitizeName(log.Sweep.Name)
	if name == "" {
		name = "sweep"
	}
	generator := sanitizeName(log.Sweep.Generator)
	if generator == "" {
		generator = "generator"
	}
	return fmt.Sprintf("%s_%s_%s.%s", timestamp, name, generator, ext)
}

func writeZipJSON(writer *zip.Writer, name string, data any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return err
	}

	payload := buf.Bytes()
	size := uint64(len(payload))
	header := &zip.FileHeader{
		Name:               name,
		Method:             zip.Store,
		UncompressedSize64: size,
		CompressedSize64:   size,
		CRC32:              crc32.ChecksumIEEE(payload),
	}
	header.SetModTime(time.Unix(0, 0))

	entry, err := writer.CreateRaw(header)
	if err != nil {
		return err
	}
	_, err = entry.Write(payload)
	return err
}

func sanitizeName(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			out = append(out, r)
		}
	}
	return string(out)
}

func generateID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
