package nca

import (
	"github.com/Jackqhr/mlpack/core/parallel"
	"github.com/Jackqhr/mlpack/metric"
	"github.com/Jackqhr/mlpack/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Full-batch evaluations below this many points stay on one goroutine.
const parallelEvalThreshold = 64

// SoftmaxObjective is the NCA objective function. For a transform A it
// measures the expected number of correctly classified points under
// stochastic neighbor assignment in the stretched space A*x, negated so that
// optimizers minimize it:
//
//	f(A) = -sum_i sum_{j in class(i), j != i} p_ij
//	p_ij = exp(-||A x_i - A x_j||^2) / sum_{k != i} exp(-||A x_i - A x_k||^2)
//
// The evaluator is a pure function of (transform, indices); the dataset and
// labels are read-only after construction.
type SoftmaxObjective struct {
	data   *mat.Dense // d x n, one point per column
	labels []int      // dense class ids, aligned with columns
	m      metric.Metric
}

// NewSoftmaxObjective creates an objective over data (d x n, points as
// columns) and dense labels. The metric defaults to squared Euclidean when
// nil.
func NewSoftmaxObjective(data *mat.Dense, labels []int, m metric.Metric) *SoftmaxObjective {
	if m == nil {
		m = metric.SquaredEuclidean{}
	}
	return &SoftmaxObjective{
		data:   data,
		labels: labels,
		m:      m,
	}
}

// NumPoints returns the number of points in the dataset.
func (f *SoftmaxObjective) NumPoints() int {
	_, n := f.data.Dims()
	return n
}

// NumFeatures returns the dimensionality of each point.
func (f *SoftmaxObjective) NumFeatures() int {
	d, _ := f.data.Dims()
	return d
}

// Evaluate computes the objective value over the given point indices.
func (f *SoftmaxObjective) Evaluate(transform *mat.Dense, indices []int) float64 {
	value, _ := f.eval(transform, indices, false)
	return value
}

// EvaluateWithGradient computes the objective value and its gradient with
// respect to transform, accumulated over the given point indices. Points
// whose softmax denominator underflows to zero contribute nothing; one
// DegenerateSoftmaxWarning summarizing the skipped points is emitted per
// call.
func (f *SoftmaxObjective) EvaluateWithGradient(transform *mat.Dense, indices []int) (float64, *mat.Dense) {
	return f.eval(transform, indices, true)
}

func (f *SoftmaxObjective) eval(transform *mat.Dense, indices []int, withGrad bool) (float64, *mat.Dense) {
	d, n := f.data.Dims()

	// Project every point through the current transform once.
	var proj mat.Dense
	proj.Mul(transform, f.data)

	// Each chunk accumulates into its own slot; the partials are reduced in
	// chunk order so results do not depend on goroutine scheduling.
	ranges := parallel.SplitWithThreshold(len(indices), parallelEvalThreshold)
	values := make([]float64, len(ranges))
	degenerate := make([]int, len(ranges))
	var outers []*mat.Dense
	if withGrad {
		outers = make([]*mat.Dense, len(ranges))
	}

	parallel.ForEach(ranges, func(chunk int, r parallel.Range) {
		weights := make([]float64, n)
		diff := make([]float64, d)
		var outer *mat.Dense
		if withGrad {
			outer = mat.NewDense(d, d, nil)
			outers[chunk] = outer
		}

		for _, i := range indices[r.Start:r.End] {
			denom := 0.0
			numer := 0.0
			for k := 0; k < n; k++ {
				if k == i {
					weights[k] = 0
					continue
				}
				dist := f.m.Distance(proj.ColView(i), proj.ColView(k))
				w := errors.StabilizeExp(-dist)
				weights[k] = w
				denom += w
				if f.labels[k] == f.labels[i] {
					numer += w
				}
			}

			if denom == 0 {
				// All pairwise similarities vanished for this point; its
				// contribution is skipped rather than producing NaN.
				degenerate[chunk]++
				continue
			}

			pi := numer / denom
			values[chunk] -= pi

			if !withGrad {
				continue
			}
			for k := 0; k < n; k++ {
				if k == i || weights[k] == 0 {
					continue
				}
				pik := weights[k] / denom
				coef := -pi * pik
				if f.labels[k] == f.labels[i] {
					coef += pik
				}
				if coef == 0 {
					continue
				}
				for a := 0; a < d; a++ {
					diff[a] = f.data.At(a, i) - f.data.At(a, k)
				}
				for a := 0; a < d; a++ {
					ca := coef * diff[a]
					for b := 0; b < d; b++ {
						outer.Set(a, b, outer.At(a, b)+ca*diff[b])
					}
				}
			}
		}
	})

	value := 0.0
	skipped := 0
	for chunk := range ranges {
		value += values[chunk]
		skipped += degenerate[chunk]
	}
	if skipped > 0 {
		errors.Warn(errors.NewDegenerateSoftmaxWarning("SoftmaxObjective.Evaluate", skipped))
	}

	if !withGrad {
		return value, nil
	}

	total := mat.NewDense(d, d, nil)
	for _, outer := range outers {
		total.Add(total, outer)
	}

	// d f / d A = 2 A sum_i sum_k coef_ik (x_i - x_k)(x_i - x_k)^T
	grad := mat.NewDense(d, d, nil)
	grad.Mul(transform, total)
	grad.Scale(2, grad)
	return value, grad
}
