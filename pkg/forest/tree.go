package forest

import (
	"math/rand"
	"sort"
)

type pair struct{ x, y float64 }

// node is one split (or leaf) of a regression tree.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	value     float64
	leaf      bool
}

type treeBuilder struct {
	maxDepth    int
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand

	// importance accumulates weighted impurity decrease per feature across
	// the whole tree.
	importance []float64
}

func (b *treeBuilder) build(X [][]float64, y []float64, idx []int, depth int) *node {
	mean := meanAt(y, idx)
	if depth >= b.maxDepth || len(idx) < 2*b.minLeaf {
		return &node{leaf: true, value: mean}
	}

	feature, threshold, gain, ok := b.bestSplit(X, y, idx)
	if !ok || gain <= 0 {
		return &node{leaf: true, value: mean}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) < b.minLeaf || len(rightIdx) < b.minLeaf {
		return &node{leaf: true, value: mean}
	}

	b.importance[feature] += gain

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.build(X, y, leftIdx, depth+1),
		right:     b.build(X, y, rightIdx, depth+1),
	}
}

// bestSplit scans a random subset of features and returns the split with the
// largest sum-of-squares reduction.
func (b *treeBuilder) bestSplit(X [][]float64, y []float64, idx []int) (feature int, threshold, gain float64, ok bool) {
	total := sseAt(y, idx)

	features := b.rng.Perm(len(X[0]))
	if b.maxFeatures < len(features) {
		features = features[:b.maxFeatures]
	}

	for _, f := range features {
		pairs := make([]pair, len(idx))
		for j, i := range idx {
			pairs[j] = pair{x: X[i][f], y: y[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].x < pairs[b].x })

		// Prefix sums let each threshold be evaluated in O(1).
		var leftSum, leftSq, rightSum, rightSq float64
		for _, p := range pairs {
			rightSum += p.y
			rightSq += p.y * p.y
		}
		for j := 0; j < len(pairs)-1; j++ {
			leftSum += pairs[j].y
			leftSq += pairs[j].y * pairs[j].y
			rightSum -= pairs[j].y
			rightSq -= pairs[j].y * pairs[j].y

			if pairs[j].x == pairs[j+1].x {
				continue
			}
			nl, nr := float64(j+1), float64(len(pairs)-j-1)
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if g := total - sse; g > gain {
				gain = g
				feature = f
				threshold = (pairs[j].x + pairs[j+1].x) / 2
				ok = true
			}
		}
	}
	return feature, threshold, gain, ok
}

func (n *node) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func sseAt(y []float64, idx []int) float64 {
	mean := meanAt(y, idx)
	var sse float64
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return sse
}
