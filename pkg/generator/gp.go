package generator

import (
	"errors"
	"math"
)

// GP is a lightweight Gaussian-process-style regressor over an RBF kernel.
// Predictions are kernel-weighted averages of the training values with a
// similarity-based variance, which is enough to drive acquisition functions.
// Inputs should be normalized to comparable scales before fitting.
type GP struct {
	// Sigma is the kernel width. Larger values smooth more. Default 0.2,
	// tuned for unit-cube inputs.
	Sigma float64

	x [][]float64
	y []float64
}

func (g *GP) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("gp: X and y must be non-empty and the same length")
	}
	g.x = make([][]float64, len(X))
	for i, row := range X {
		g.x[i] = append([]float64(nil), row...)
	}
	g.y = append([]float64(nil), y...)
	return nil
}

// Predict returns the kernel-weighted mean of observed values at x and a
// variance that shrinks to zero near observed points.
func (g *GP) Predict(x []float64) (mean, variance float64) {
	if len(g.x) == 0 {
		return 0, 1
	}

	k := make([]float64, len(g.x))
	var kSum float64
	for i := range g.x {
		k[i] = g.kernel(x, g.x[i])
		kSum += k[i]
	}

	if kSum < 1e-12 {
		// Far from every observation: fall back to the global mean with
		// full uncertainty.
		var sum float64
		for _, v := range g.y {
			sum += v
		}
		return sum / float64(len(g.y)), 1
	}

	for i := range k {
		mean += k[i] * g.y[i]
	}
	mean /= kSum

	// Highest similarity to any training point bounds the certainty.
	var maxK float64
	for _, v := range k {
		maxK = math.Max(maxK, v)
	}
	variance = 1 - maxK
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

func (g *GP) kernel(a, b []float64) float64 {
	sigma := g.Sigma
	if sigma <= 0 {
		sigma = 0.2
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Exp(-sum / (2 * sigma * sigma))
}
