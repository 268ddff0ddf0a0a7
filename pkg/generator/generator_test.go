package generator_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"sweepgo/pkg/core"
	"sweepgo/pkg/generator"
)

func unitSpace(names ...string) core.SearchSpace {
	params := make([]core.Parameter, 0, len(names))
	for _, name := range names {
		params = append(params, core.Parameter{Name: name, Type: core.FloatParameter, Min: 0, Max: 1})
	}
	return core.SearchSpace{NameHint: "unit", Parameters: params}
}

func TestRandomGeneratorStaysInDomain(t *testing.T) {
	space := core.SearchSpace{Parameters: []core.Parameter{
		{Name: "lr", Type: core.FloatParameter, Min: 0.001, Max: 0.1, LogScale: true},
		{Name: "units", Type: core.IntParameter, Min: 16, Max: 256},
	}}

	g := &generator.Random{Seed: 11}
	batch, err := g.Generate(context.Background(), space, 50, nil)
	require.NoError(t, err)
	require.Len(t, batch, 50)
	for _, params := range batch {
		require.NoError(t, space.Check(params))
	}
}

func TestRandomGeneratorDeterministicWithSeed(t *testing.T) {
	space := unitSpace("x")
	a := &generator.Random{Seed: 5}
	b := &generator.Random{Seed: 5}

	batchA, err := a.Generate(context.Background(), space, 10, nil)
	require.NoError(t, err)
	batchB, err := b.Generate(context.Background(), space, 10, nil)
	require.NoError(t, err)
	require.Equal(t, batchA, batchB)
}

func TestHaltonIsDeterministicAndSpread(t *testing.T) {
	space := unitSpace("a", "b")

	g := &generator.Halton{}
	batch, err := g.Generate(context.Background(), space, 64, nil)
	require.NoError(t, err)
	require.Len(t, batch, 64)

	other := &generator.Halton{}
	batch2, err := other.Generate(context.Background(), space, 64, nil)
	require.NoError(t, err)
	require.Equal(t, batch, batch2)

	// Low-discrepancy points should land in every quadrant.
	quadrants := map[[2]bool]int{}
	for _, p := range batch {
		quadrants[[2]bool{p["a"] < 0.5, p["b"] < 0.5}]++
	}
	require.Len(t, quadrants, 4)
	for _, count := range quadrants {
		require.Greater(t, count, 8)
	}
}

func TestHaltonRejectsTooManyDimensions(t *testing.T) {
	names := make([]string, 17)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	g := &generator.Halton{}
	_, err := g.Generate(context.Background(), unitSpace(names...), 1, nil)
	require.Error(t, err)
}

func TestForestGeneratorFallsBackBelowMinObservations(t *testing.T) {
	space := unitSpace("x")
	g := &generator.Forest{Seed: 1, MinObservations: 5}

	batch, err := g.Generate(context.Background(), space, 3, nil)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	for _, p := range batch {
		require.NoError(t, space.Check(p))
	}
}

func TestForestGeneratorExploitsObservations(t *testing.T) {
	space := unitSpace("x")

	// Quadratic with the minimum at 0.3.
	objective := func(x float64) float64 { return (x - 0.3) * (x - 0.3) }

	rng := rand.New(rand.NewSource(2))
	var obs []core.Observation
	for i := 0; i < 40; i++ {
		x := rng.Float64()
		obs = append(obs, core.Observation{Params: core.Params{"x": x}, Value: objective(x)})
	}

	g := &generator.Forest{Seed: 2, Minimize: true, Trees: 30}
	batch, err := g.Generate(context.Background(), space, 5, obs)
	require.NoError(t, err)
	require.Len(t, batch, 5)
	for _, p := range batch {
		require.InDelta(t, 0.3, p["x"], 0.2)
	}
}

func TestSurrogateGeneratorExploitsObservations(t *testing.T) {
	space := unitSpace("x")
	objective := func(x float64) float64 { return (x - 0.7) * (x - 0.7) }

	rng := rand.New(rand.NewSource(4))
	var obs []core.Observation
	for i := 0; i < 30; i++ {
		x := rng.Float64()
		obs = append(obs, core.Observation{Params: core.Params{"x": x}, Value: objective(x)})
	}

	g := &generator.Surrogate{Seed: 4, Minimize: true, AcqParams: generator.AcqParams{Xi: 0.001}}
	batch, err := g.Generate(context.Background(), space, 3, obs)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	for _, p := range batch {
		require.InDelta(t, 0.7, p["x"], 0.25)
	}
}

func TestSurrogateBestPoint(t *testing.T) {
	g := &generator.Surrogate{Minimize: true}
	_, ok := g.BestPoint(nil)
	require.False(t, ok)

	obs := []core.Observation{
		{Params: core.Params{"x": 0.1}, Value: 3},
		{Params: core.Params{"x": 0.2}, Value: 1},
		{Params: core.Params{"x": 0.3}, Value: 2},
	}
	best, ok := g.BestPoint(obs)
	require.True(t, ok)
	require.Equal(t, core.Params{"x": 0.2}, best)

	maxg := &generator.Surrogate{}
	best, ok = maxg.BestPoint(obs)
	require.True(t, ok)
	require.Equal(t, core.Params{"x": 0.1}, best)
}

func TestSurrogateCrossValidate(t *testing.T) {
	space := unitSpace("x")
	var obs []core.Observation
	for i := 0; i <= 10; i++ {
		x := float64(i) / 10
		obs = append(obs, core.Observation{Params: core.Params{"x": x}, Value: x})
	}

	g := &generator.Surrogate{Seed: 1, Minimize: true}
	preds, err := g.CrossValidate(space, obs)
	require.NoError(t, err)
	require.Len(t, preds, len(obs))
	// Held-out predictions of a smooth function should be close.
	for i, p := range preds {
		require.InDelta(t, obs[i].Value, p, 0.25)
	}

	_, err = g.CrossValidate(space, obs[:1])
	require.Error(t, err)
}

func TestStrategyPhaseTransition(t *testing.T) {
	space := unitSpace("x")
	s := &generator.Strategy{Phases: []generator.Phase{
		{Generator: &generator.Halton{}, Trials: 4},
		{Generator: &generator.Random{Seed: 9}},
	}}

	require.Equal(t, "halton | random", s.Name())

	// The first four candidates come from the Halton phase and are
	// reproducible against a fresh sequence.
	batch, err := s.Generate(context.Background(), space, 6, nil)
	require.NoError(t, err)
	require.Len(t, batch, 6)

	h := &generator.Halton{}
	expected, err := h.Generate(context.Background(), space, 4, nil)
	require.NoError(t, err)
	require.Equal(t, expected, batch[:4])

	// Later calls stay in the final phase.
	more, err := s.Generate(context.Background(), space, 2, nil)
	require.NoError(t, err)
	require.Len(t, more, 2)
}

func TestStrategyRequiresPhases(t *testing.T) {
	s := &generator.Strategy{}
	_, err := s.Generate(context.Background(), unitSpace("x"), 1, nil)
	require.Error(t, err)
}

func TestGPPredict(t *testing.T) {
	gp := &generator.GP{}
	mean, variance := gp.Predict([]float64{0.5})
	require.Equal(t, 0.0, mean)
	require.Equal(t, 1.0, variance)

	require.NoError(t, gp.Fit([][]float64{{0}, {1}}, []float64{0, 10}))

	mean, variance = gp.Predict([]float64{0})
	require.InDelta(t, 0.0, mean, 0.1)
	require.InDelta(t, 0.0, variance, 1e-6)

	_, variance = gp.Predict([]float64{0.5})
	require.Greater(t, variance, 0.0)

	// Far away from every observation the global mean comes back with full
	// uncertainty.
	mean, variance = gp.Predict([]float64{100})
	require.InDelta(t, 5.0, mean, 1e-9)
	require.Equal(t, 1.0, variance)
}

func TestAcquisitionDirections(t *testing.T) {
	p := generator.AcqParams{Beta: 2, Best: 1}

	// Lower mean is always more promising.
	require.Less(t, generator.UCB(0, 0.1, p), generator.UCB(1, 0.1, p))
	require.Less(t, generator.ExpectedImprovement(0, 0.1, p), generator.ExpectedImprovement(2, 0.1, p))
	require.Less(t, generator.ProbabilityOfImprovement(0, 0.1, p), generator.ProbabilityOfImprovement(2, 0.1, p))

	// More variance makes UCB more optimistic.
	require.Less(t, generator.UCB(1, 1, p), generator.UCB(1, 0.01, p))

	// Zero variance: no improvement possible at or above the incumbent.
	require.Equal(t, 0.0, generator.ExpectedImprovement(2, 0, p))
	require.Equal(t, -0.5, generator.ExpectedImprovement(0.5, 0, p))
	require.Equal(t, 0.0, generator.ProbabilityOfImprovement(2, 0, p))
	require.Equal(t, -1.0, generator.ProbabilityOfImprovement(0.5, 0, p))
}

func TestThompsonSampling(t *testing.T) {
	p := generator.AcqParams{Rand: rand.New(rand.NewSource(1))}
	samples := map[float64]bool{}
	for i := 0; i < 10; i++ {
		samples[generator.ThompsonSampling(1, 0.5, p)] = true
	}
	require.Greater(t, len(samples), 1)

	// Without a source the posterior mean is returned.
	require.Equal(t, 2.5, generator.ThompsonSampling(2.5, 0.5, generator.AcqParams{}))

	v := generator.ThompsonSampling(1, 0, p)
	require.False(t, math.IsNaN(v))
	require.Equal(t, 1.0, v)
}
