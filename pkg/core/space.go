package core

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ParameterType identifies how a parameter's values are drawn and encoded.
type ParameterType string

const (
	FloatParameter  ParameterType = "float"
	IntParameter    ParameterType = "int"
	ChoiceParameter ParameterType = "choice"
)

// Parameter describes a single tunable dimension of the search space.
type Parameter struct {
	Name string        `json:"name" yaml:"name"`
	Type ParameterType `json:"type" yaml:"type"`

	// Min and Max bound float and int parameters (inclusive).
	Min float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max float64 `json:"max,omitempty" yaml:"max,omitempty"`

	// LogScale samples float parameters uniformly in log10 space.
	LogScale bool `json:"log_scale,omitempty" yaml:"log_scale,omitempty"`

	// Values holds the allowed values for choice parameters.
	Values []float64 `json:"values,omitempty" yaml:"values,omitempty"`
}

// Params assigns a concrete value to every parameter of a search space.
type Params map[string]float64

// SearchSpace is an ordered list of parameters. Order matters: it fixes the
// column layout of the vector encoding consumed by regressors.
type SearchSpace struct {
	NameHint   string      `json:"name,omitempty" yaml:"name,omitempty"`
	Parameters []Parameter `json:"parameters" yaml:"parameters"`
}

func (s SearchSpace) Name() string {
	if s.NameHint != "" {
		return s.NameHint
	}
	return "space"
}

// Validate checks parameter definitions and returns the first problem found.
func (s SearchSpace) Validate() error {
	if len(s.Parameters) == 0 {
		return fmt.Errorf("space: at least one parameter is required")
	}
	seen := make(map[string]bool, len(s.Parameters))
	for _, p := range s.Parameters {
		if p.Name == "" {
			return fmt.Errorf("space: parameter name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("space: duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		switch p.Type {
		case FloatParameter, IntParameter:
			if p.Min > p.Max {
				return fmt.Errorf("space: parameter %q has min > max", p.Name)
			}
			if p.LogScale && p.Min <= 0 {
				return fmt.Errorf("space: log-scale parameter %q needs min > 0", p.Name)
			}
		case ChoiceParameter:
			if len(p.Values) == 0 {
				return fmt.Errorf("space: choice parameter %q has no values", p.Name)
			}
		default:
			return fmt.Errorf("space: parameter %q has unknown type %q", p.Name, p.Type)
		}
	}
	return nil
}

// Sample draws one parameterization uniformly at random.
func (s SearchSpace) Sample(rng *rand.Rand) Params {
	params := make(Params, len(s.Parameters))
	for _, p := range s.Parameters {
		params[p.Name] = p.sample(rng)
	}
	return params
}

func (p Parameter) sample(rng *rand.Rand) float64 {
	switch p.Type {
	case ChoiceParameter:
		return p.Values[rng.Intn(len(p.Values))]
	case IntParameter:
		lo, hi := int64(p.Min), int64(p.Max)
		return float64(lo + rng.Int63n(hi-lo+1))
	default:
		return p.fromUnit(rng.Float64())
	}
}

// FromUnit maps a point in the unit hypercube onto the space. Quasi-random
// generators produce unit-cube points and rely on this mapping.
func (s SearchSpace) FromUnit(u []float64) (Params, error) {
	if len(u) != len(s.Parameters) {
		return nil, fmt.Errorf("space: expected %d coordinates, got %d", len(s.Parameters), len(u))
	}
	params := make(Params, len(s.Parameters))
	for i, p := range s.Parameters {
		params[p.Name] = p.fromUnit(u[i])
	}
	return params, nil
}

func (p Parameter) fromUnit(u float64) float64 {
	if u < 0 {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	switch p.Type {
	case ChoiceParameter:
		idx := int(u * float64(len(p.Values)))
		if idx >= len(p.Values) {
			idx = len(p.Values) - 1
		}
		return p.Values[idx]
	case IntParameter:
		return math.Round(p.Min + u*(p.Max-p.Min))
	default:
		if p.LogScale {
			lo, hi := math.Log10(p.Min), math.Log10(p.Max)
			return math.Pow(10, lo+u*(hi-lo))
		}
		return p.Min + u*(p.Max-p.Min)
	}
}

// Clip forces every value into the parameter's domain. Int parameters are
// rounded, choice parameters snap to the nearest allowed value.
func (s SearchSpace) Clip(params Params) Params {
	out := make(Params, len(s.Parameters))
	for _, p := range s.Parameters {
		v, ok := params[p.Name]
		if !ok {
			continue
		}
		out[p.Name] = p.clip(v)
	}
	return out
}

func (p Parameter) clip(v float64) float64 {
	switch p.Type {
	case ChoiceParameter:
		best := p.Values[0]
		for _, c := range p.Values {
			if math.Abs(c-v) < math.Abs(best-v) {
				best = c
			}
		}
		return best
	case IntParameter:
		v = math.Round(v)
		fallthrough
	default:
		if v < p.Min {
			return p.Min
		}
		if v > p.Max {
			return p.Max
		}
		return v
	}
}

// Check verifies that params covers the space and every value is in domain.
func (s SearchSpace) Check(params Params) error {
	for _, p := range s.Parameters {
		v, ok := params[p.Name]
		if !ok {
			return fmt.Errorf("space: missing value for %q", p.Name)
		}
		if p.clip(v) != v {
			return fmt.Errorf("space: value %v out of domain for %q", v, p.Name)
		}
	}
	return nil
}

// Vector encodes params as a float64 slice in parameter order.
func (s SearchSpace) Vector(params Params) []float64 {
	vec := make([]float64, len(s.Parameters))
	for i, p := range s.Parameters {
		vec[i] = params[p.Name]
	}
	return vec
}

// FromVector decodes a float64 slice produced by Vector.
func (s SearchSpace) FromVector(vec []float64) (Params, error) {
	if len(vec) != len(s.Parameters) {
		return nil, fmt.Errorf("space: expected %d values, got %d", len(s.Parameters), len(vec))
	}
	params := make(Params, len(s.Parameters))
	for i, p := range s.Parameters {
		params[p.Name] = vec[i]
	}
	return params, nil
}

// Bounds returns [min, max] per dimension, in parameter order.
func (s SearchSpace) Bounds() [][2]float64 {
	bounds := make([][2]float64, len(s.Parameters))
	for i, p := range s.Parameters {
		if p.Type == ChoiceParameter {
			lo, hi := p.Values[0], p.Values[0]
			for _, v := range p.Values {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
			bounds[i] = [2]float64{lo, hi}
			continue
		}
		bounds[i] = [2]float64{p.Min, p.Max}
	}
	return bounds
}

// Names returns the parameter names in encoding order.
func (s SearchSpace) Names() []string {
	names := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		names[i] = p.Name
	}
	return names
}

// Key renders params as a stable string, usable as a cache key.
func (p Params) Key() string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	out := ""
	for _, name := range names {
		out += fmt.Sprintf("%s=%.9g;", name, p[name])
	}
	return out
}
