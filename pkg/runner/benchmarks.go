package runner

import (
	"math"
	"sort"

	"sweepgo/pkg/core"
)

// Benchmark returns a named synthetic objective. Each simulates a training
// curve: the value decays toward the test function's value at the point as
// the step grows, so partial curves are informative for early stopping.
func Benchmark(name string) (Objective, bool) {
	fn, ok := benchmarks[name]
	if !ok {
		return nil, false
	}
	return func(params core.Params, step int) (float64, error) {
		base := fn(paramVector(params))
		// Offset shrinks with progression; worse points also start higher.
		offset := (1 + math.Abs(base)) * math.Exp(-float64(step)/3)
		return base + offset, nil
	}, true
}

// BenchmarkNames lists the available synthetic objectives.
func BenchmarkNames() []string {
	names := make([]string, 0, len(benchmarks))
	for name := range benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var benchmarks = map[string]func(x []float64) float64{
	// Sphere: sum of squares, global minimum 0 at the origin.
	"sphere": func(x []float64) float64 {
		var sum float64
		for _, v := range x {
			sum += v * v
		}
		return sum
	},

	// Rastrigin: highly multimodal, global minimum 0 at the origin.
	"rastrigin": func(x []float64) float64 {
		sum := 10 * float64(len(x))
		for _, v := range x {
			sum += v*v - 10*math.Cos(2*math.Pi*v)
		}
		return sum
	},

	// Branin: classic 2D benchmark, global minimum ~0.398. Extra
	// dimensions are ignored.
	"branin": func(x []float64) float64 {
		if len(x) < 2 {
			return math.Inf(1)
		}
		a, b, c := 1.0, 5.1/(4*math.Pi*math.Pi), 5/math.Pi
		r, s, t := 6.0, 10.0, 1/(8*math.Pi)
		x1, x2 := x[0], x[1]
		return a*math.Pow(x2-b*x1*x1+c*x1-r, 2) + s*(1-t)*math.Cos(x1) + s
	},
}

// paramVector encodes params in sorted-name order, matching Params.Key.
func paramVector(params core.Params) []float64 {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	vec := make([]float64, len(names))
	for i, name := range names {
		vec[i] = params[name]
	}
	return vec
}
