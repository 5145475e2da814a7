package metric

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSquaredEuclidean(t *testing.T) {
	a := mat.NewVecDense(3, []float64{1, 2, 3})
	b := mat.NewVecDense(3, []float64{4, 6, 3})

	got := SquaredEuclidean{}.Distance(a, b)
	want := 9.0 + 16.0
	if got != want {
		t.Errorf("Distance = %v, want %v", got, want)
	}

	if d := (SquaredEuclidean{}).Distance(a, a); d != 0 {
		t.Errorf("self distance = %v, want 0", d)
	}
}

func TestSquaredEuclideanSymmetry(t *testing.T) {
	a := mat.NewVecDense(2, []float64{0.3, -1.7})
	b := mat.NewVecDense(2, []float64{2.1, 0.4})

	m := SquaredEuclidean{}
	if m.Distance(a, b) != m.Distance(b, a) {
		t.Error("distance should be symmetric")
	}
}

func TestEuclidean(t *testing.T) {
	a := mat.NewVecDense(2, []float64{0, 0})
	b := mat.NewVecDense(2, []float64{3, 4})

	got := Euclidean{}.Distance(a, b)
	if math.Abs(got-5) > 1e-15 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestDistanceOnColumnViews(t *testing.T) {
	// The NCA objective evaluates distances between column views of the
	// projected dataset; make sure views work like plain vectors.
	X := mat.NewDense(2, 3, []float64{
		0, 1, 3,
		0, 1, 4,
	})

	got := SquaredEuclidean{}.Distance(X.ColView(0), X.ColView(2))
	if got != 25 {
		t.Errorf("Distance = %v, want 25", got)
	}
}

func TestLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on length mismatch")
		}
	}()
	SquaredEuclidean{}.Distance(mat.NewVecDense(2, nil), mat.NewVecDense(3, nil))
}
