package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"sweepgo/pkg/core"
)

// Surrogate is a customizable model-based generator. Its behavior is set by
// injected components:
//
//   - NewRegressor instantiates the model fitted on the observations
//   - Acquire scores candidate points from the model's posterior
//   - Candidates sizes the random pool the acquisition is optimized over
//
// Inputs are normalized to the unit cube before fitting so that kernel-based
// regressors see comparable scales. Objectives are negated internally when
// maximizing, so acquisition functions always minimize.
type Surrogate struct {
	NewRegressor func() core.Regressor
	Acquire      Acquisition
	AcqParams    AcqParams

	// Candidates is the acquisition optimizer's pool size. Default 1000.
	Candidates int

	// MinObservations before the model kicks in. Default 3.
	MinObservations int

	Minimize bool
	Seed     int64

	once sync.Once
	mu   sync.Mutex
	rng  *rand.Rand
	last core.Regressor
}

func (g *Surrogate) Name() string {
	return "surrogate"
}

func (g *Surrogate) init() {
	g.once.Do(func() {
		seed := g.Seed
		if seed == 0 {
			seed = rand.Int63()
		}
		g.rng = rand.New(rand.NewSource(seed))
		if g.NewRegressor == nil {
			g.NewRegressor = func() core.Regressor { return &GP{} }
		}
		if g.Acquire == nil {
			g.Acquire = ExpectedImprovement
		}
	})
}

func (g *Surrogate) Generate(ctx context.Context, space core.SearchSpace, n int, obs []core.Observation) ([]core.Params, error) {
	g.init()
	g.mu.Lock()
	defer g.mu.Unlock()

	minObs := g.MinObservations
	if minObs <= 0 {
		minObs = 3
	}
	if len(obs) < minObs {
		out := make([]core.Params, n)
		for i := range out {
			out[i] = space.Sample(g.rng)
		}
		return out, nil
	}

	model := g.NewRegressor()
	X, y := g.trainingData(space, obs)
	if err := model.Fit(X, y); err != nil {
		return nil, fmt.Errorf("surrogate: fit: %w", err)
	}
	g.last = model

	params := g.AcqParams
	params.Best = math.Inf(1)
	for _, v := range y {
		params.Best = math.Min(params.Best, v)
	}
	if params.Rand == nil {
		params.Rand = g.rng
	}

	pool := g.Candidates
	if pool <= 0 {
		pool = 1000
	}

	out := make([]core.Params, 0, n)
	for len(out) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var best core.Params
		bestScore := math.Inf(1)
		for i := 0; i < pool; i++ {
			candidate := space.Sample(g.rng)
			mean, variance := model.Predict(g.normalize(space, candidate))
			score := g.Acquire(mean, variance, params)
			if score < bestScore {
				bestScore = score
				best = candidate
			}
		}
		out = append(out, best)
	}
	return out, nil
}

// BestPoint recommends the best observed parameterization, the point the
// model would pick if the sweep ended now.
func (g *Surrogate) BestPoint(obs []core.Observation) (core.Params, bool) {
	if len(obs) == 0 {
		return nil, false
	}
	best := obs[0]
	for _, o := range obs[1:] {
		if (g.Minimize && o.Value < best.Value) || (!g.Minimize && o.Value > best.Value) {
			best = o
		}
	}
	return best.Params, true
}

// CrossValidate performs leave-one-out cross-validation: for each
// observation it fits a fresh model on the others and predicts the held-out
// point. Returned predictions align with obs and are in the objective's
// original direction.
func (g *Surrogate) CrossValidate(space core.SearchSpace, obs []core.Observation) ([]float64, error) {
	g.init()
	if len(obs) < 2 {
		return nil, errors.New("surrogate: cross-validation needs at least two observations")
	}
	X, y := g.trainingData(space, obs)

	preds := make([]float64, len(obs))
	foldX := make([][]float64, 0, len(obs)-1)
	foldY := make([]float64, 0, len(obs)-1)
	for i := range obs {
		foldX = append(foldX[:0], X[:i]...)
		foldX = append(foldX, X[i+1:]...)
		foldY = append(foldY[:0], y[:i]...)
		foldY = append(foldY, y[i+1:]...)

		model := g.NewRegressor()
		if err := model.Fit(foldX, foldY); err != nil {
			return nil, fmt.Errorf("surrogate: cross-validation fold %d: %w", i, err)
		}
		mean, _ := model.Predict(X[i])
		if !g.Minimize {
			mean = -mean
		}
		preds[i] = mean
	}
	return preds, nil
}

// FeatureImportances reports the last fitted model's importances when it
// exposes them, else nil.
func (g *Surrogate) FeatureImportances() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if imp, ok := g.last.(core.Importancer); ok {
		return imp.FeatureImportances()
	}
	return nil
}

// trainingData encodes observations in minimization form on the unit cube.
func (g *Surrogate) trainingData(space core.SearchSpace, obs []core.Observation) ([][]float64, []float64) {
	X := make([][]float64, len(obs))
	y := make([]float64, len(obs))
	for i, o := range obs {
		X[i] = g.normalize(space, o.Params)
		if g.Minimize {
			y[i] = o.Value
		} else {
			y[i] = -o.Value
		}
	}
	return X, y
}

func (g *Surrogate) normalize(space core.SearchSpace, params core.Params) []float64 {
	vec := space.Vector(params)
	for i, b := range space.Bounds() {
		span := b[1] - b[0]
		if span <= 0 {
			vec[i] = 0
			continue
		}
		vec[i] = (vec[i] - b[0]) / span
	}
	return vec
}
