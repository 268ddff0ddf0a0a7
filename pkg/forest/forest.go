// Package forest implements a random forest regressor: bagged CART regression
// trees with per-split feature subsampling. Predict reports the mean and
// variance of the per-tree predictions, which makes the forest usable as an
// uncertainty-aware surrogate model.
package forest

import (
	"errors"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// RandomForest satisfies the core fit/predict regressor contract.
// The zero value is usable; Fit applies defaults for unset knobs.
type RandomForest struct {
	// Trees is the ensemble size. Default 50.
	Trees int

	// MaxDepth bounds tree height. Default 12.
	MaxDepth int

	// MinLeaf is the minimum samples per leaf. Default 2.
	MinLeaf int

	// MaxFeatures is the number of features considered per split.
	// Default max(1, d/3).
	MaxFeatures int

	// Seed fixes the bootstrap and feature sampling. Zero seeds from the
	// global source.
	Seed int64

	roots       []*node
	importances []float64
}

// Fit trains the ensemble on X (rows are points) and y.
func (f *RandomForest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("forest: X and y must be non-empty and the same length")
	}
	d := len(X[0])
	for _, row := range X {
		if len(row) != d {
			return errors.New("forest: inconsistent row widths")
		}
	}

	trees := f.Trees
	if trees <= 0 {
		trees = 50
	}
	maxDepth := f.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 12
	}
	minLeaf := f.MinLeaf
	if minLeaf <= 0 {
		minLeaf = 2
	}
	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > d {
		maxFeatures = d / 3
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}
	seed := f.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	f.roots = make([]*node, 0, trees)
	f.importances = make([]float64, d)

	for t := 0; t < trees; t++ {
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		b := &treeBuilder{
			maxDepth:    maxDepth,
			minLeaf:     minLeaf,
			maxFeatures: maxFeatures,
			rng:         rng,
			importance:  make([]float64, d),
		}
		f.roots = append(f.roots, b.build(X, y, idx, 0))
		for i, v := range b.importance {
			f.importances[i] += v
		}
	}

	var total float64
	for _, v := range f.importances {
		total += v
	}
	if total > 0 {
		for i := range f.importances {
			f.importances[i] /= total
		}
	}
	return nil
}

// Predict returns the mean and variance of the per-tree predictions at x.
func (f *RandomForest) Predict(x []float64) (mean, variance float64) {
	if len(f.roots) == 0 {
		return 0, 1
	}
	preds := make([]float64, len(f.roots))
	for i, root := range f.roots {
		preds[i] = root.predict(x)
	}
	if len(preds) == 1 {
		return preds[0], 0
	}
	mean, variance = stat.MeanVariance(preds, nil)
	return mean, variance
}

// FeatureImportances returns the normalized impurity decrease per feature.
// The slice sums to 1 when any split occurred. Nil before Fit.
func (f *RandomForest) FeatureImportances() []float64 {
	if f.importances == nil {
		return nil
	}
	out := make([]float64, len(f.importances))
	copy(out, f.importances)
	return out
}
