// Package nca implements Neighborhood Components Analysis, a method that
// learns a linear transformation of the input space maximizing the expected
// leave-one-out accuracy of stochastic nearest-neighbor classification.
//
// The dataset is stored column-wise: a d x n matrix holds n points of d
// features each. The learned transform is a d x d matrix L such that
// distances are measured between L*x_i and L*x_j.
package nca

import (
	"time"

	"github.com/Jackqhr/mlpack/core/model"
	"github.com/Jackqhr/mlpack/metric"
	"github.com/Jackqhr/mlpack/pkg/errors"
	"github.com/Jackqhr/mlpack/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Optimizer names accepted by WithOptimizer.
const (
	OptimizerSGD   = "sgd"
	OptimizerLBFGS = "lbfgs"
)

// NCA learns a linear transformation maximizing stochastic nearest-neighbor
// classification accuracy. Construct it with New, configure it with options
// and call LearnDistance.
type NCA struct {
	state *model.StateManager

	optimizer string
	m         metric.Metric

	// shared
	maxIterations int
	tolerance     float64

	// sgd
	stepSize   float64
	batchSize  int
	linearScan bool
	seed       int64

	// lbfgs
	numBasis            int
	armijoConstant      float64
	wolfe               float64
	maxLineSearchTrials int
	minStep             float64
	maxStep             float64

	history []float64
	logger  log.Logger
}

// Option configures an NCA instance.
type Option func(*NCA)

// WithOptimizer selects the optimization strategy, OptimizerSGD (default) or
// OptimizerLBFGS.
func WithOptimizer(name string) Option {
	return func(n *NCA) { n.optimizer = name }
}

// WithMaxIterations bounds the optimizer iterations; 0 removes the bound.
// For SGD an iteration is one mini-batch update, for L-BFGS one quasi-Newton
// step.
func WithMaxIterations(iters int) Option {
	return func(n *NCA) { n.maxIterations = iters }
}

// WithTolerance sets the SGD objective improvement tolerance.
func WithTolerance(tol float64) Option {
	return func(n *NCA) { n.tolerance = tol }
}

// WithStepSize sets the SGD step size.
func WithStepSize(step float64) Option {
	return func(n *NCA) { n.stepSize = step }
}

// WithBatchSize sets the SGD mini-batch size.
func WithBatchSize(size int) Option {
	return func(n *NCA) { n.batchSize = size }
}

// WithLinearScan disables the per-pass shuffling of the SGD visiting order,
// so points are visited in dataset order every pass.
func WithLinearScan(linear bool) Option {
	return func(n *NCA) { n.linearScan = linear }
}

// WithSeed seeds the SGD shuffling generator; 0 derives a seed from the wall
// clock.
func WithSeed(seed int64) Option {
	return func(n *NCA) { n.seed = seed }
}

// WithNumBasis sets the L-BFGS memory size.
func WithNumBasis(numBasis int) Option {
	return func(n *NCA) { n.numBasis = numBasis }
}

// WithArmijoConstant sets the L-BFGS sufficient-decrease constant.
func WithArmijoConstant(c float64) Option {
	return func(n *NCA) { n.armijoConstant = c }
}

// WithWolfe sets the L-BFGS curvature condition parameter.
func WithWolfe(w float64) Option {
	return func(n *NCA) { n.wolfe = w }
}

// WithMaxLineSearchTrials bounds the L-BFGS line search evaluations.
func WithMaxLineSearchTrials(trials int) Option {
	return func(n *NCA) { n.maxLineSearchTrials = trials }
}

// WithMinStep sets the smallest L-BFGS line search step.
func WithMinStep(step float64) Option {
	return func(n *NCA) { n.minStep = step }
}

// WithMaxStep sets the largest L-BFGS line search step.
func WithMaxStep(step float64) Option {
	return func(n *NCA) { n.maxStep = step }
}

// WithMetric sets the distance used inside the softmax; the default is the
// squared Euclidean distance.
func WithMetric(m metric.Metric) Option {
	return func(n *NCA) { n.m = m }
}

// New creates an NCA learner with mlpack-compatible defaults.
func New(opts ...Option) *NCA {
	n := &NCA{
		state:     model.NewStateManager(),
		optimizer: OptimizerSGD,
		m:         metric.SquaredEuclidean{},

		maxIterations: 500000,
		tolerance:     1e-7,
		stepSize:      0.01,
		batchSize:     50,

		numBasis:            5,
		armijoConstant:      1e-4,
		wolfe:               0.9,
		maxLineSearchTrials: 50,
		minStep:             1e-20,
		maxStep:             1e20,

		logger: log.GetLoggerWithName("nca"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// LearnDistance learns a linear transform of the d x n column-wise dataset
// that pulls same-class points together under the configured metric. The
// optimizer starts from initial, or the identity when initial is nil, and
// the result is returned without mutating initial.
func (n *NCA) LearnDistance(data *mat.Dense, labels []int, initial *mat.Dense) (transform *mat.Dense, err error) {
	defer errors.Recover(&err, "NCA.LearnDistance")

	if data == nil {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	d, points := data.Dims()
	if d == 0 || points == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if len(labels) != points {
		return nil, errors.NewDimensionError("NCA.LearnDistance", points, len(labels), 1)
	}
	if n.optimizer != OptimizerSGD && n.optimizer != OptimizerLBFGS {
		return nil, errors.NewValidationError("optimizer", "must be \"sgd\" or \"lbfgs\"", n.optimizer)
	}
	if initial == nil {
		initial = IdentityStart(d)
	} else if r, c := initial.Dims(); r != d || c != d {
		return nil, errors.NewValueError("NCA.LearnDistance",
			"initial transform must be square with one row per feature")
	}

	start := time.Now()
	f := NewSoftmaxObjective(data, labels, n.m)
	opt := n.buildOptimizer(f)

	n.logger.Info("learning distance metric",
		log.OptimizerKey, n.optimizer,
		log.SamplesKey, points,
		log.FeaturesKey, d,
	)

	result := opt.Optimize(initial)
	n.history = opt.ObjectiveHistory()

	if werr := errors.CheckMatrix("NCA.LearnDistance", result, d, d, len(n.history)); werr != nil {
		errors.Warn(werr)
	}

	n.state.SetDimensions(d, points)
	n.state.SetFitted()

	n.logger.Info("distance metric learned",
		log.OptimizerKey, n.optimizer,
		log.ObjectiveKey, n.history[len(n.history)-1],
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (n *NCA) buildOptimizer(f *SoftmaxObjective) Optimizer {
	switch n.optimizer {
	case OptimizerLBFGS:
		return NewLBFGS(f, LBFGSConfig{
			NumBasis:            n.numBasis,
			MaxIterations:       n.maxIterations,
			ArmijoConstant:      n.armijoConstant,
			Wolfe:               n.wolfe,
			MinGradientNorm:     n.tolerance,
			MaxLineSearchTrials: n.maxLineSearchTrials,
			MinStep:             n.minStep,
			MaxStep:             n.maxStep,
		})
	default:
		return NewSGD(f, SGDConfig{
			StepSize:      n.stepSize,
			BatchSize:     n.batchSize,
			MaxIterations: n.maxIterations,
			Tolerance:     n.tolerance,
			Shuffle:       !n.linearScan,
			Seed:          n.seed,
		})
	}
}

// ObjectiveHistory returns the objective values recorded during the latest
// LearnDistance call.
func (n *NCA) ObjectiveHistory() []float64 {
	return n.history
}

// IsFitted reports whether LearnDistance has completed.
func (n *NCA) IsFitted() bool {
	return n.state.IsFitted()
}

// IdentityStart returns the d x d identity matrix, the conventional starting
// transform.
func IdentityStart(d int) *mat.Dense {
	m := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// NormalizedStart returns a diagonal starting transform scaling every feature
// by the inverse of its value range across the column-wise dataset. Features
// with zero range keep a unit scale. Starting from this transform makes the
// optimization insensitive to wildly different feature scales.
func NormalizedStart(data *mat.Dense) *mat.Dense {
	d, points := data.Dims()
	m := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		lo, hi := data.At(i, 0), data.At(i, 0)
		for j := 1; j < points; j++ {
			v := data.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		scale := 1.0
		if r := hi - lo; r > 0 {
			scale = 1 / r
		}
		m.Set(i, i, scale)
	}
	return m
}
