package generator

import (
	"context"
	"math/rand"
	"sync"

	"sweepgo/pkg/core"
)

// Random draws parameterizations uniformly at random, ignoring observations.
type Random struct {
	Seed int64

	once sync.Once
	mu   sync.Mutex
	rng  *rand.Rand
}

func (g *Random) Name() string {
	return "random"
}

func (g *Random) Generate(_ context.Context, space core.SearchSpace, n int, _ []core.Observation) ([]core.Params, error) {
	g.once.Do(func() {
		seed := g.Seed
		if seed == 0 {
			seed = rand.Int63()
		}
		g.rng = rand.New(rand.NewSource(seed))
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]core.Params, n)
	for i := range out {
		out[i] = space.Sample(g.rng)
	}
	return out, nil
}
