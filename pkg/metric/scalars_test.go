package metric_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sweepgo/pkg/core"
	"sweepgo/pkg/metric"
)

func TestWriteAndReadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trial-0001", "loss.jsonl")
	curve := []core.Measurement{
		{Step: 1, Value: 0.9},
		{Step: 2, Value: 0.5},
	}
	require.NoError(t, metric.WriteJSONL(path, curve))

	// Appends accumulate, matching how jobs report step by step.
	require.NoError(t, metric.WriteJSONL(path, []core.Measurement{{Step: 3, Value: 0.25}}))

	got, err := metric.ReadJSONL(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, core.Measurement{Step: 3, Value: 0.25}, got[2])
}

func TestReadCSVWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loss.csv")
	content := "step,value\n1,0.9\n2,0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := metric.ReadCSV(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []core.Measurement{{Step: 1, Value: 0.9}, {Step: 2, Value: 0.5}}, got)
}

func TestReadCSVMalformed(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short.csv")
	require.NoError(t, os.WriteFile(short, []byte("1\n"), 0o644))
	_, err := metric.ReadCSV(context.Background(), short)
	require.Error(t, err)

	badValue := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(badValue, []byte("1,abc\n"), 0o644))
	_, err = metric.ReadCSV(context.Background(), badValue)
	require.Error(t, err)
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	_, err := metric.ReadFile(context.Background(), "curve.txt")
	require.Error(t, err)
}

func TestFileSourceFetch(t *testing.T) {
	dir := t.TempDir()
	curve := []core.Measurement{{Step: 1, Value: 1.5}}
	require.NoError(t, metric.WriteJSONL(filepath.Join(dir, "trial-0002", "loss.jsonl"), curve))

	source := &metric.FileSource{Dir: dir}
	got, err := source.Fetch(context.Background(), "trial-0002", "loss")
	require.NoError(t, err)
	require.Equal(t, curve, got)

	_, err = source.Fetch(context.Background(), "trial-0002", "accuracy")
	require.Error(t, err)

	_, err = source.Fetch(context.Background(), "trial-0002", "")
	require.Error(t, err)
}

func TestHandleSource(t *testing.T) {
	source := &metric.HandleSource{}
	_, err := source.Fetch(context.Background(), "trial-0000", "loss")
	require.Error(t, err)

	h := stubHandle{curve: []core.Measurement{{Step: 1, Value: 2}}}
	source.Register("trial-0000", h)

	got, err := source.Fetch(context.Background(), "trial-0000", "loss")
	require.NoError(t, err)
	require.Equal(t, h.curve, got)
}

type stubHandle struct {
	curve []core.Measurement
}

func (h stubHandle) Status() core.TrialStatus     { return core.TrialRunning }
func (h stubHandle) Curve() []core.Measurement    { return h.curve }
func (h stubHandle) Err() error                   { return nil }
func (h stubHandle) Wait(_ context.Context) error { return nil }
func (h stubHandle) Stop()                        {}

func TestStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loss.jsonl")
	curve := []core.Measurement{
		{Step: 1, Value: 3},
		{Step: 2, Value: 2},
		{Step: 3, Value: 1},
	}
	require.NoError(t, metric.WriteJSONL(path, curve))

	out, errCh := metric.Stream(context.Background(), path)
	var got []core.Measurement
	for m := range out {
		got = append(got, m)
	}
	require.NoError(t, <-errCh)
	require.Equal(t, curve, got)
}
