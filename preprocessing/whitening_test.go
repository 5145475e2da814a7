package preprocessing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Jackqhr/mlpack/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// randomDataset builds a d x n dataset with correlated features.
func randomDataset(d, n int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(d, n, nil)
	for j := 0; j < n; j++ {
		base := rng.NormFloat64()
		for i := 0; i < d; i++ {
			// Correlate every feature with the shared base signal.
			X.Set(i, j, base+0.5*rng.NormFloat64()+float64(i))
		}
	}
	return X
}

func covariance(X *mat.Dense) *mat.Dense {
	d, n := X.Dims()

	means := make([]float64, d)
	for i := 0; i < d; i++ {
		for j := 0; j < n; j++ {
			means[i] += X.At(i, j)
		}
		means[i] /= float64(n)
	}

	centered := mat.NewDense(d, n, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < n; j++ {
			centered.Set(i, j, X.At(i, j)-means[i])
		}
	}

	var cov mat.Dense
	cov.Mul(centered, centered.T())
	cov.Scale(1/float64(n-1), &cov)
	return &cov
}

func TestPCAWhiteningIdentityCovariance(t *testing.T) {
	X := randomDataset(3, 500, 42)

	w := NewPCAWhitening()
	out, err := w.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	cov := covariance(mat.DenseCopyOf(out))
	d, _ := cov.Dims()
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(cov.At(i, j)-want) > 0.05 {
				t.Errorf("cov(%d,%d) = %v, want %v", i, j, cov.At(i, j), want)
			}
		}
	}
}

func TestPCAWhiteningInverseRoundTrip(t *testing.T) {
	X := randomDataset(4, 60, 7)

	w := NewPCAWhitening()
	out, err := w.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	back, err := w.InverseTransform(out)
	if err != nil {
		t.Fatalf("InverseTransform failed: %v", err)
	}

	d, n := X.Dims()
	for i := 0; i < d; i++ {
		for j := 0; j < n; j++ {
			// Epsilon regularization makes the round trip approximate.
			if math.Abs(back.At(i, j)-X.At(i, j)) > 1e-2 {
				t.Fatalf("round trip mismatch at (%d,%d): %v vs %v", i, j, back.At(i, j), X.At(i, j))
			}
		}
	}
}

func TestPCAWhiteningNotFitted(t *testing.T) {
	w := NewPCAWhitening()
	_, err := w.Transform(mat.NewDense(2, 3, nil))
	if err == nil {
		t.Fatal("Transform before Fit should fail")
	}

	var nfErr *errors.NotFittedError
	if !errors.As(err, &nfErr) {
		t.Errorf("expected NotFittedError, got %v", err)
	}
}

func TestPCAWhiteningDimensionMismatch(t *testing.T) {
	X := randomDataset(3, 40, 1)
	w := NewPCAWhitening()
	if err := w.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	_, err := w.Transform(mat.NewDense(5, 10, nil))
	if err == nil {
		t.Fatal("Transform with wrong feature count should fail")
	}
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}
}

func TestPCAWhiteningEmptyData(t *testing.T) {
	w := NewPCAWhitening()
	if err := w.Fit(&mat.Dense{}); err == nil {
		t.Error("Fit on empty data should fail")
	}
}

func TestPCAWhiteningTooFewPoints(t *testing.T) {
	w := NewPCAWhitening()
	if err := w.Fit(mat.NewDense(3, 1, []float64{1, 2, 3})); err == nil {
		t.Error("Fit with one point should fail")
	}
}
