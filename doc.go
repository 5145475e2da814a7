// Package mlpack provides distance metric learning for Go, centered on
// Neighborhood Components Analysis (NCA).
//
// NCA learns a linear transformation of the input space that maximizes the
// expected accuracy of stochastic nearest-neighbor classification. The
// transformed space pulls points of the same class together, which improves
// downstream k-NN classifiers and yields an interpretable Mahalanobis-style
// metric.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/Jackqhr/mlpack/nca"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    // Four 2-D points stored column-wise, two per class.
//	    data := mat.NewDense(2, 4, []float64{
//	        0.0, 0.1, 3.0, 3.1,
//	        0.0, 0.2, 3.0, 2.9,
//	    })
//	    labels := []int{0, 0, 1, 1}
//
//	    learner := nca.New(nca.WithSeed(42))
//	    transform, err := learner.LearnDistance(data, labels, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("learned transform:\n%v\n", mat.Formatted(transform))
//	}
//
// # Packages
//
//   - nca: the NCA objective and its optimizers (mini-batch SGD, L-BFGS)
//   - metric: distance metrics used inside the softmax neighbor model
//   - preprocessing: PCA whitening and label normalization
//   - core/model: shared fitted-state management
//   - core/parallel: deterministic data-parallel helpers
//   - pkg/errors: structured errors and the recoverable-warning system
//   - pkg/log: structured logging built on log/slog
//
// Datasets are stored column-wise throughout: a d x n matrix holds n points
// of d features each, matching the convention of the nca package.
package mlpack
