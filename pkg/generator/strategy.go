package generator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"sweepgo/pkg/core"
)

// Phase is one stage of a Strategy: a generator plus the number of
// candidates it is allowed to produce before the strategy moves on.
type Phase struct {
	Generator core.Generator

	// Trials caps this phase's output. Zero means unbounded, which only
	// makes sense for the final phase.
	Trials int
}

// Strategy chains generation phases: a typical sweep starts with a
// quasi-random phase to seed the model and hands over to a model-based
// generator once enough candidates have been produced.
type Strategy struct {
	Phases []Phase

	mu       sync.Mutex
	produced int
}

func (s *Strategy) Name() string {
	if len(s.Phases) == 0 {
		return "strategy"
	}
	names := make([]string, len(s.Phases))
	for i, p := range s.Phases {
		names[i] = p.Generator.Name()
	}
	return strings.Join(names, " | ")
}

func (s *Strategy) Generate(ctx context.Context, space core.SearchSpace, n int, obs []core.Observation) ([]core.Params, error) {
	if len(s.Phases) == 0 {
		return nil, errors.New("strategy: at least one phase is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Params, 0, n)
	for len(out) < n {
		phase, remaining := s.current()
		want := n - len(out)
		if remaining > 0 && want > remaining {
			want = remaining
		}
		batch, err := phase.Generator.Generate(ctx, space, want, obs)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return nil, errors.New("strategy: phase generator returned no candidates")
		}
		out = append(out, batch...)
		s.produced += len(batch)
	}
	return out, nil
}

// current picks the active phase by how many candidates have been produced,
// and how many the phase may still emit (0 = unbounded).
func (s *Strategy) current() (Phase, int) {
	count := s.produced
	for i, p := range s.Phases {
		if p.Trials <= 0 || count < p.Trials {
			if p.Trials <= 0 || i == len(s.Phases)-1 {
				return p, 0
			}
			return p, p.Trials - count
		}
		count -= p.Trials
	}
	return s.Phases[len(s.Phases)-1], 0
}
