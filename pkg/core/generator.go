package core

import "context"

// Observation pairs a parameterization with its observed objective value.
type Observation struct {
	Params Params  `json:"params" yaml:"params"`
	Value  float64 `json:"value" yaml:"value"`
}

// Generator proposes new parameterizations to evaluate. Implementations see
// every completed observation and are free to ignore them (random search) or
// to fit a model over them (forest, surrogate).
type Generator interface {
	Name() string
	Generate(ctx context.Context, space SearchSpace, n int, obs []Observation) ([]Params, error)
}

// Regressor is the fit/predict contract consumed by model-based generators.
// Predict returns the posterior mean and variance at x.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) (mean, variance float64)
}

// Importancer is implemented by regressors that can attribute predictive
// power to input features. Importances are normalized to sum to 1.
type Importancer interface {
	FeatureImportances() []float64
}
