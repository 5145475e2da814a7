package nca

import (
	"github.com/Jackqhr/mlpack/pkg/errors"
	"github.com/Jackqhr/mlpack/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// TerminationStatus describes how an L-BFGS run ended.
type TerminationStatus int

const (
	// StatusInitializing means Optimize has not run yet.
	StatusInitializing TerminationStatus = iota
	// StatusIterating means a run is in progress.
	StatusIterating
	// StatusConverged means the gradient norm dropped below the threshold.
	StatusConverged
	// StatusMaxIterationsReached means the iteration budget was spent.
	StatusMaxIterationsReached
	// StatusLineSearchExhausted means no acceptable step was found within
	// the line search trial budget. This is a normal terminal state; the
	// current transform is returned.
	StatusLineSearchExhausted
)

// String returns the status name.
func (s TerminationStatus) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusIterating:
		return "iterating"
	case StatusConverged:
		return "converged"
	case StatusMaxIterationsReached:
		return "max_iterations_reached"
	case StatusLineSearchExhausted:
		return "line_search_exhausted"
	default:
		return "unknown"
	}
}

// LBFGSConfig holds the hyperparameters of the quasi-Newton strategy. Zero
// values select the documented defaults, except MaxIterations where 0 means
// no iteration limit.
type LBFGSConfig struct {
	// NumBasis is the number of (step, gradient-difference) pairs kept to
	// approximate the inverse Hessian (default 5).
	NumBasis int

	// MaxIterations bounds the number of quasi-Newton iterations; 0 runs
	// until another terminal condition fires.
	MaxIterations int

	// ArmijoConstant is the sufficient-decrease constant of the line search
	// (default 1e-4).
	ArmijoConstant float64

	// Wolfe is the curvature condition parameter (default 0.9).
	Wolfe float64

	// MinGradientNorm terminates the run once the gradient's Frobenius norm
	// falls below it (default 1e-7).
	MinGradientNorm float64

	// MaxLineSearchTrials bounds the objective evaluations per line search
	// (default 50).
	MaxLineSearchTrials int

	// MinStep and MaxStep bound the line search step (defaults 1e-20 and
	// 1e20).
	MinStep float64
	MaxStep float64
}

// LBFGS minimizes the NCA objective with limited-memory BFGS and a
// backtracking line search enforcing the Armijo and Wolfe conditions.
type LBFGS struct {
	f       *SoftmaxObjective
	cfg     LBFGSConfig
	status  TerminationStatus
	history []float64
	logger  log.Logger

	// bounded memory of past steps and gradient differences
	mem []lbfgsPair
}

type lbfgsPair struct {
	s   *mat.Dense // x_{k+1} - x_k
	y   *mat.Dense // g_{k+1} - g_k
	rho float64    // 1 / (y . s)
}

// NewLBFGS creates an L-BFGS strategy over the given objective.
func NewLBFGS(f *SoftmaxObjective, cfg LBFGSConfig) *LBFGS {
	if cfg.NumBasis <= 0 {
		cfg.NumBasis = 5
	}
	if cfg.ArmijoConstant <= 0 {
		cfg.ArmijoConstant = 1e-4
	}
	if cfg.Wolfe <= 0 {
		cfg.Wolfe = 0.9
	}
	if cfg.MinGradientNorm <= 0 {
		cfg.MinGradientNorm = 1e-7
	}
	if cfg.MaxLineSearchTrials <= 0 {
		cfg.MaxLineSearchTrials = 50
	}
	if cfg.MinStep <= 0 {
		cfg.MinStep = 1e-20
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = 1e20
	}

	return &LBFGS{
		f:      f,
		cfg:    cfg,
		status: StatusInitializing,
		logger: log.GetLoggerWithName("nca.lbfgs"),
	}
}

// Optimize runs the quasi-Newton iteration from a copy of initial and
// returns the transform held at the terminal state.
func (l *LBFGS) Optimize(initial *mat.Dense) *mat.Dense {
	all := allIndices(l.f.NumPoints())
	x := mat.DenseCopyOf(initial)
	obj, grad := l.f.EvaluateWithGradient(x, all)

	l.mem = l.mem[:0]
	l.history = []float64{obj}
	l.status = StatusIterating

	l.logger.Debug("starting optimization",
		log.SamplesKey, l.f.NumPoints(),
		log.ObjectiveKey, obj,
		log.GradientNormKey, mat.Norm(grad, 2),
	)

	for iter := 1; ; iter++ {
		gradNorm := mat.Norm(grad, 2)
		if gradNorm < l.cfg.MinGradientNorm {
			l.status = StatusConverged
			l.logger.Info("converged",
				log.IterationKey, iter-1,
				log.ObjectiveKey, obj,
				log.GradientNormKey, gradNorm,
			)
			break
		}
		if l.cfg.MaxIterations > 0 && iter > l.cfg.MaxIterations {
			l.status = StatusMaxIterationsReached
			errors.Warn(errors.NewConvergenceWarning("NCA.LBFGS", iter-1,
				"maximum iterations reached before the gradient norm tolerance"))
			break
		}

		dir := l.direction(grad)
		dphi0 := matDot(grad, dir)
		if dphi0 >= 0 {
			// The memory produced a non-descent direction; fall back to
			// steepest descent and drop the stale pairs.
			dir.Scale(-1, grad)
			dphi0 = -gradNorm * gradNorm
			l.mem = l.mem[:0]
		}

		newX, newObj, newGrad, ok := l.lineSearch(x, obj, grad, dir, dphi0, iter == 1)
		if !ok {
			l.status = StatusLineSearchExhausted
			errors.Warn(errors.NewConvergenceWarning("NCA.LBFGS", iter-1,
				"line search exhausted without an acceptable step"))
			break
		}

		l.push(x, grad, newX, newGrad)
		x, obj, grad = newX, newObj, newGrad
		l.history = append(l.history, obj)

		l.logger.Debug("iteration complete",
			log.IterationKey, iter,
			log.ObjectiveKey, obj,
			log.GradientNormKey, mat.Norm(grad, 2),
		)
	}

	return x
}

// Status returns the terminal state of the latest run.
func (l *LBFGS) Status() TerminationStatus {
	return l.status
}

// ObjectiveHistory returns the objective after the initial evaluation and
// every accepted step of the latest run.
func (l *LBFGS) ObjectiveHistory() []float64 {
	return l.history
}

// direction computes -H*g through the standard two-loop recursion over the
// bounded memory.
func (l *LBFGS) direction(grad *mat.Dense) *mat.Dense {
	d := l.f.NumFeatures()
	q := mat.DenseCopyOf(grad)

	alphas := make([]float64, len(l.mem))
	for i := len(l.mem) - 1; i >= 0; i-- {
		pair := l.mem[i]
		alphas[i] = pair.rho * matDot(pair.s, q)
		addScaled(q, pair.y, -alphas[i])
	}

	if len(l.mem) > 0 {
		last := l.mem[len(l.mem)-1]
		gamma := matDot(last.s, last.y) / matDot(last.y, last.y)
		q.Scale(gamma, q)
	}

	for i := 0; i < len(l.mem); i++ {
		pair := l.mem[i]
		beta := pair.rho * matDot(pair.y, q)
		addScaled(q, pair.s, alphas[i]-beta)
	}

	dir := mat.NewDense(d, d, nil)
	dir.Scale(-1, q)
	return dir
}

// lineSearch backtracks from a unit step until the Armijo condition holds,
// then checks the Wolfe curvature condition, expanding the step when the
// curvature is too weak. A point satisfying only Armijo is kept as a
// fallback so the search degrades to plain sufficient decrease instead of
// failing when curvature cannot be met within the budget.
func (l *LBFGS) lineSearch(x *mat.Dense, obj float64, grad, dir *mat.Dense, dphi0 float64, firstIter bool) (*mat.Dense, float64, *mat.Dense, bool) {
	all := allIndices(l.f.NumPoints())

	step := 1.0
	if firstIter {
		// Scale the very first step by the gradient magnitude, as the
		// memory holds no curvature information yet.
		gradNorm := mat.Norm(grad, 2)
		if gradNorm > 1 {
			step = 1 / gradNorm
		}
	}

	var fallbackX, fallbackGrad *mat.Dense
	var fallbackObj float64

	for trial := 0; trial < l.cfg.MaxLineSearchTrials; trial++ {
		step = errors.ClipValue(step, l.cfg.MinStep, l.cfg.MaxStep)

		candidate := mat.DenseCopyOf(x)
		addScaled(candidate, dir, step)
		cObj, cGrad := l.f.EvaluateWithGradient(candidate, all)

		if cObj > obj+l.cfg.ArmijoConstant*step*dphi0 {
			// Insufficient decrease: backtrack.
			if step <= l.cfg.MinStep {
				break
			}
			step *= 0.5
			continue
		}

		if matDot(cGrad, dir) >= l.cfg.Wolfe*dphi0 {
			return candidate, cObj, cGrad, true
		}

		// Armijo holds but the curvature is too weak: remember the point
		// and try a longer step.
		fallbackX, fallbackObj, fallbackGrad = candidate, cObj, cGrad
		if step >= l.cfg.MaxStep {
			break
		}
		step *= 2.0
	}

	if fallbackX != nil {
		l.logger.Debug("line search accepting sufficient-decrease point without curvature")
		return fallbackX, fallbackObj, fallbackGrad, true
	}
	return nil, 0, nil, false
}

// push appends the latest (step, gradient difference) pair, dropping the
// oldest once the memory is full. Pairs with non-positive curvature are
// discarded to keep the inverse Hessian approximation positive definite.
func (l *LBFGS) push(x, grad, newX, newGrad *mat.Dense) {
	d := l.f.NumFeatures()

	s := mat.NewDense(d, d, nil)
	s.Sub(newX, x)
	y := mat.NewDense(d, d, nil)
	y.Sub(newGrad, grad)

	sy := matDot(s, y)
	if sy <= 1e-30 {
		return
	}

	l.mem = append(l.mem, lbfgsPair{s: s, y: y, rho: 1 / sy})
	if len(l.mem) > l.cfg.NumBasis {
		l.mem = l.mem[1:]
	}
}

// matDot treats two equally shaped dense matrices as flat vectors and
// returns their inner product.
func matDot(a, b *mat.Dense) float64 {
	ra := a.RawMatrix()
	rb := b.RawMatrix()
	var sum float64
	for i := 0; i < ra.Rows; i++ {
		av := ra.Data[i*ra.Stride : i*ra.Stride+ra.Cols]
		bv := rb.Data[i*rb.Stride : i*rb.Stride+rb.Cols]
		for j := range av {
			sum += av[j] * bv[j]
		}
	}
	return sum
}

// addScaled adds scale*src to dst element-wise.
func addScaled(dst, src *mat.Dense, scale float64) {
	rd := dst.RawMatrix()
	rs := src.RawMatrix()
	for i := 0; i < rd.Rows; i++ {
		dv := rd.Data[i*rd.Stride : i*rd.Stride+rd.Cols]
		sv := rs.Data[i*rs.Stride : i*rs.Stride+rs.Cols]
		for j := range dv {
			dv[j] += scale * sv[j]
		}
	}
}

var _ Optimizer = (*LBFGS)(nil)
