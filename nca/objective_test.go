package nca

import (
	"math"
	"testing"

	"github.com/Jackqhr/mlpack/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// twoBlobs returns a small column-wise dataset with two well separated
// clusters, one per class.
func twoBlobs() (*mat.Dense, []int) {
	data := mat.NewDense(2, 8, []float64{
		// class 0 near the origin, class 1 near (4, 4)
		0.0, 0.3, -0.2, 0.1, 4.0, 4.2, 3.8, 4.1,
		0.1, -0.1, 0.2, 0.0, 4.1, 3.9, 4.0, 4.2,
	})
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}
	return data, labels
}

func TestSoftmaxObjectiveValueRange(t *testing.T) {
	data, labels := twoBlobs()
	f := NewSoftmaxObjective(data, labels, nil)

	value := f.Evaluate(IdentityStart(2), allIndices(f.NumPoints()))
	if value > 0 || value < -float64(f.NumPoints()) {
		t.Errorf("objective %v outside [-n, 0]", value)
	}
	// Well separated equal-size clusters classify almost perfectly.
	if value > -7.0 {
		t.Errorf("objective %v too high for separable clusters", value)
	}
}

func TestSoftmaxObjectiveGradientMatchesFiniteDifferences(t *testing.T) {
	data, labels := twoBlobs()
	f := NewSoftmaxObjective(data, labels, nil)
	all := allIndices(f.NumPoints())

	transform := mat.NewDense(2, 2, []float64{
		1.1, 0.2,
		-0.1, 0.9,
	})

	_, grad := f.EvaluateWithGradient(transform, all)

	const h = 1e-5
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			plus := mat.DenseCopyOf(transform)
			plus.Set(a, b, plus.At(a, b)+h)
			minus := mat.DenseCopyOf(transform)
			minus.Set(a, b, minus.At(a, b)-h)

			numeric := (f.Evaluate(plus, all) - f.Evaluate(minus, all)) / (2 * h)
			analytic := grad.At(a, b)
			if math.Abs(numeric-analytic) > 1e-4*math.Max(1, math.Abs(numeric)) {
				t.Errorf("grad[%d,%d] = %v, finite difference %v", a, b, analytic, numeric)
			}
		}
	}
}

func TestSoftmaxObjectiveBatchesSumToFull(t *testing.T) {
	data, labels := twoBlobs()
	f := NewSoftmaxObjective(data, labels, nil)
	transform := IdentityStart(2)

	full := f.Evaluate(transform, allIndices(f.NumPoints()))
	split := f.Evaluate(transform, []int{0, 1, 2, 3}) + f.Evaluate(transform, []int{4, 5, 6, 7})
	if math.Abs(full-split) > 1e-12 {
		t.Errorf("batch values %v do not sum to full value %v", split, full)
	}
}

func TestSoftmaxObjectiveDegenerateWarning(t *testing.T) {
	var captured []error
	errors.SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer errors.SetWarningHandler(nil)

	// Points so far apart that every pairwise similarity underflows.
	data := mat.NewDense(1, 2, []float64{0, 1e6})
	labels := []int{0, 1}
	f := NewSoftmaxObjective(data, labels, nil)

	value, grad := f.EvaluateWithGradient(IdentityStart(1), []int{0, 1})
	if value != 0 {
		t.Errorf("degenerate objective = %v, want 0", value)
	}
	if grad.At(0, 0) != 0 {
		t.Errorf("degenerate gradient = %v, want 0", grad.At(0, 0))
	}

	if len(captured) != 1 {
		t.Fatalf("captured %d warnings, want 1", len(captured))
	}
	w, ok := captured[0].(*errors.DegenerateSoftmaxWarning)
	if !ok {
		t.Fatalf("warning type %T, want *DegenerateSoftmaxWarning", captured[0])
	}
	if w.Points != 2 {
		t.Errorf("warning reports %d skipped points, want 2", w.Points)
	}
}
