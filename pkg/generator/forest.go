package generator

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"sweepgo/pkg/core"
	"sweepgo/pkg/forest"
)

// Forest is a greedy model-based generator: it fits a random forest on the
// observed (params, objective) pairs, scores a pool of random candidates with
// the model, and proposes the ones with the best predicted objective.
type Forest struct {
	// Candidates is the random pool size scored per call. Default 1000.
	Candidates int

	// MinObservations is how many observations are needed before the model
	// kicks in; below it the generator falls back to uniform sampling.
	// Default 5.
	MinObservations int

	// Minimize sets the objective direction.
	Minimize bool

	// Trees, MaxDepth and Seed are passed through to the forest.
	Trees    int
	MaxDepth int
	Seed     int64

	once sync.Once
	mu   sync.Mutex
	rng  *rand.Rand
}

func (g *Forest) Name() string {
	return "forest"
}

func (g *Forest) Generate(ctx context.Context, space core.SearchSpace, n int, obs []core.Observation) ([]core.Params, error) {
	g.once.Do(func() {
		seed := g.Seed
		if seed == 0 {
			seed = rand.Int63()
		}
		g.rng = rand.New(rand.NewSource(seed))
	})

	g.mu.Lock()
	defer g.mu.Unlock()

	minObs := g.MinObservations
	if minObs <= 0 {
		minObs = 5
	}
	if len(obs) < minObs {
		out := make([]core.Params, n)
		for i := range out {
			out[i] = space.Sample(g.rng)
		}
		return out, nil
	}

	X := make([][]float64, len(obs))
	y := make([]float64, len(obs))
	for i, o := range obs {
		X[i] = space.Vector(o.Params)
		y[i] = o.Value
	}
	model := &forest.RandomForest{
		Trees:    g.Trees,
		MaxDepth: g.MaxDepth,
		Seed:     g.rng.Int63(),
	}
	if err := model.Fit(X, y); err != nil {
		return nil, fmt.Errorf("forest generator: %w", err)
	}

	pool := g.Candidates
	if pool <= 0 {
		pool = 1000
	}
	type scored struct {
		params core.Params
		mean   float64
	}
	candidates := make([]scored, pool)
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		params := space.Sample(g.rng)
		mean, _ := model.Predict(space.Vector(params))
		candidates[i] = scored{params: params, mean: mean}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if g.Minimize {
			return candidates[i].mean < candidates[j].mean
		}
		return candidates[i].mean > candidates[j].mean
	})

	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]core.Params, n)
	for i := range out {
		out[i] = candidates[i].params
	}
	return out, nil
}
