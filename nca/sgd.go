package nca

import (
	"math"
	"math/rand"
	"time"

	"github.com/Jackqhr/mlpack/pkg/errors"
	"github.com/Jackqhr/mlpack/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// SGDConfig holds the hyperparameters of the mini-batch gradient descent
// strategy. Zero values select the documented defaults, except MaxIterations
// where 0 means no iteration limit.
type SGDConfig struct {
	// StepSize is the gradient descent step size (default 0.01).
	StepSize float64

	// BatchSize is the number of points per update (default 50). Values
	// larger than the dataset are clamped to the dataset size.
	BatchSize int

	// MaxIterations bounds the number of batch updates; 0 runs until the
	// tolerance fires.
	MaxIterations int

	// Tolerance is the minimum objective improvement between two full passes
	// (default 1e-7). Smaller improvements terminate the run.
	Tolerance float64

	// Shuffle controls whether the visiting order is reshuffled before each
	// full pass.
	Shuffle bool

	// Seed seeds the run-local pseudo-random generator; 0 derives a seed
	// from the wall clock.
	Seed int64
}

// SGD minimizes the NCA objective with mini-batch stochastic gradient
// descent. The tolerance is evaluated only at full-pass boundaries, so a run
// always completes at least one pass over the dataset.
type SGD struct {
	f       *SoftmaxObjective
	cfg     SGDConfig
	rng     *rand.Rand
	history []float64
	logger  log.Logger
}

// NewSGD creates an SGD strategy over the given objective.
func NewSGD(f *SoftmaxObjective, cfg SGDConfig) *SGD {
	if cfg.StepSize <= 0 {
		cfg.StepSize = 0.01
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if n := f.NumPoints(); cfg.BatchSize > n {
		cfg.BatchSize = n
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 1e-7
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &SGD{
		f:      f,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: log.GetLoggerWithName("nca.sgd"),
	}
}

// Optimize runs gradient descent from a copy of initial and returns the last
// transform. Degenerate batches produce a zero update and the loop continues.
func (s *SGD) Optimize(initial *mat.Dense) *mat.Dense {
	n := s.f.NumPoints()
	transform := mat.DenseCopyOf(initial)
	all := allIndices(n)
	order := allIndices(n)

	last := s.f.Evaluate(transform, all)
	s.history = []float64{last}

	s.logger.Debug("starting optimization",
		log.SamplesKey, n,
		log.BatchSizeKey, s.cfg.BatchSize,
		log.StepSizeKey, s.cfg.StepSize,
		log.SeedKey, s.cfg.Seed,
		log.ObjectiveKey, last,
	)

	iteration := 0
	for {
		if s.cfg.Shuffle {
			s.rng.Shuffle(n, func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}

		budgetSpent := false
		for start := 0; start < n; start += s.cfg.BatchSize {
			end := start + s.cfg.BatchSize
			if end > n {
				end = n
			}

			_, grad := s.f.EvaluateWithGradient(transform, order[start:end])
			grad.Scale(s.cfg.StepSize, grad)
			transform.Sub(transform, grad)

			iteration++
			if s.cfg.MaxIterations > 0 && iteration >= s.cfg.MaxIterations {
				budgetSpent = true
				break
			}
		}

		objective := s.f.Evaluate(transform, all)
		s.history = append(s.history, objective)
		if err := errors.CheckScalar("sgd objective", objective, iteration); err != nil {
			errors.Warn(err)
		}

		improvement := math.Abs(last - objective)
		s.logger.Debug("pass complete",
			log.IterationKey, iteration,
			log.ObjectiveKey, objective,
			log.ImprovementKey, improvement,
		)

		if budgetSpent {
			s.logger.Info("maximum iterations reached; terminating optimization",
				log.IterationKey, iteration,
				log.ObjectiveKey, objective,
			)
			break
		}
		if improvement < s.cfg.Tolerance {
			s.logger.Info("converged",
				log.IterationKey, iteration,
				log.ObjectiveKey, objective,
				log.ImprovementKey, improvement,
			)
			break
		}
		last = objective
	}

	return transform
}

// ObjectiveHistory returns the full objective recorded before the first pass
// and after every completed pass of the latest run.
func (s *SGD) ObjectiveHistory() []float64 {
	return s.history
}

var _ Optimizer = (*SGD)(nil)
