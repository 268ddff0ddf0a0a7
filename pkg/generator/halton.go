package generator

import (
	"context"
	"fmt"
	"sync"

	"sweepgo/pkg/core"
)

var haltonPrimes = []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53}

// Halton emits a low-discrepancy quasi-random sequence, one base per
// dimension. It fills the space more evenly than uniform sampling, which is
// why sweeps use it for the initialization phase.
type Halton struct {
	// Skip drops the first points of the sequence, which are poorly spread.
	Skip int

	mu    sync.Mutex
	index int
}

func (g *Halton) Name() string {
	return "halton"
}

func (g *Halton) Generate(_ context.Context, space core.SearchSpace, n int, _ []core.Observation) ([]core.Params, error) {
	if len(space.Parameters) > len(haltonPrimes) {
		return nil, fmt.Errorf("halton: at most %d dimensions supported, space has %d",
			len(haltonPrimes), len(space.Parameters))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index == 0 {
		skip := g.Skip
		if skip <= 0 {
			skip = 20
		}
		g.index = skip
	}

	out := make([]core.Params, 0, n)
	for i := 0; i < n; i++ {
		u := make([]float64, len(space.Parameters))
		for d := range u {
			u[d] = radicalInverse(g.index, haltonPrimes[d])
		}
		g.index++
		params, err := space.FromUnit(u)
		if err != nil {
			return nil, err
		}
		out = append(out, params)
	}
	return out, nil
}

// radicalInverse reflects the base-b digits of i around the radix point.
func radicalInverse(i, base int) float64 {
	var value float64
	f := 1.0 / float64(base)
	for i > 0 {
		value += f * float64(i%base)
		i /= base
		f /= float64(base)
	}
	return value
}
