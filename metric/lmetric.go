// Package metric provides the distance functions used by the metric-learning
// code. Distances operate on column vectors of equal length.
package metric

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Metric computes a dissimilarity between two vectors. Implementations must
// be stateless and safe for concurrent use.
type Metric interface {
	// Distance returns the dissimilarity between a and b. Both vectors must
	// have the same length; mismatched lengths panic, as in gonum.
	Distance(a, b mat.Vector) float64
}

// SquaredEuclidean is the squared L2 metric. NCA works on squared distances
// because the softmax weights use exp(-d) and the square root never affects
// the neighbor ordering.
type SquaredEuclidean struct{}

// Distance returns sum_i (a_i - b_i)^2.
func (SquaredEuclidean) Distance(a, b mat.Vector) float64 {
	n := a.Len()
	if b.Len() != n {
		panic("metric: vector length mismatch")
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a.AtVec(i) - b.AtVec(i)
		sum += d * d
	}
	return sum
}

// Euclidean is the plain L2 metric.
type Euclidean struct{}

// Distance returns sqrt(sum_i (a_i - b_i)^2).
func (Euclidean) Distance(a, b mat.Vector) float64 {
	return math.Sqrt(SquaredEuclidean{}.Distance(a, b))
}
