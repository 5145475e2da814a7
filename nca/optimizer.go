package nca

import (
	"gonum.org/v1/gonum/mat"
)

// Optimizer is implemented by the strategies that minimize the NCA objective.
// Optimize never mutates its argument; it copies the initial transform and
// iterates on the copy until a terminal condition, returning the result.
// Strategies do not fail: recoverable numerical conditions are absorbed as
// warnings and terminal conditions such as line-search exhaustion simply end
// the run with the current transform.
type Optimizer interface {
	Optimize(initial *mat.Dense) *mat.Dense

	// ObjectiveHistory returns the objective values recorded at each
	// checkpoint of the latest run, starting with the initial transform's
	// objective.
	ObjectiveHistory() []float64
}

func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}
