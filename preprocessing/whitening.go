// Package preprocessing provides data preparation collaborators for the
// metric-learning code: PCA whitening and label normalization. Datasets are
// stored column-wise (one point per column).
package preprocessing

import (
	"fmt"
	"math"

	"github.com/Jackqhr/mlpack/core/model"
	"github.com/Jackqhr/mlpack/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultWhiteningEpsilon is the default eigenvalue regularization term.
const DefaultWhiteningEpsilon = 5e-5

// PCAWhitening decorrelates and unit-scales features using the
// eigendecomposition of the sample covariance matrix. After Transform the
// covariance of the output is the identity, up to the epsilon regularization
// added to each eigenvalue to keep near-singular directions finite.
type PCAWhitening struct {
	state *model.StateManager

	// Epsilon is the eigenvalue regularization parameter.
	Epsilon float64

	mean    *mat.VecDense // per-feature mean
	eigVecs *mat.Dense    // columns are eigenvectors of the covariance
	eigVals []float64     // regularized eigenvalues, ascending
}

// NewPCAWhitening creates a PCAWhitening with the default epsilon.
func NewPCAWhitening() *PCAWhitening {
	return &PCAWhitening{
		state:   model.NewStateManager(),
		Epsilon: DefaultWhiteningEpsilon,
	}
}

// NewPCAWhiteningWithEpsilon creates a PCAWhitening with a custom epsilon.
func NewPCAWhiteningWithEpsilon(eps float64) *PCAWhitening {
	return &PCAWhitening{
		state:   model.NewStateManager(),
		Epsilon: eps,
	}
}

// Fit computes the mean and the covariance eigendecomposition of X, where X
// is d x n with one point per column.
func (p *PCAWhitening) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "PCAWhitening.Fit")

	d, n := X.Dims()
	if d == 0 || n == 0 {
		return errors.NewModelError("PCAWhitening.Fit", "empty data", errors.ErrEmptyData)
	}
	if n < 2 {
		return errors.NewValueError("PCAWhitening.Fit", "at least two points are required to estimate covariance")
	}

	// Per-feature mean across columns.
	p.mean = mat.NewVecDense(d, nil)
	for i := 0; i < d; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += X.At(i, j)
		}
		p.mean.SetVec(i, sum/float64(n))
	}

	centered := p.center(X)

	// Sample covariance C = X_c * X_c^T / (n - 1).
	var prod mat.Dense
	prod.Mul(centered, centered.T())
	cov := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			cov.SetSym(i, j, prod.At(i, j)/float64(n-1))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return errors.NewModelError("PCAWhitening.Fit", "eigendecomposition failed", errors.ErrSingularMatrix)
	}

	p.eigVals = eig.Values(nil)
	for i := range p.eigVals {
		p.eigVals[i] += p.Epsilon
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	p.eigVecs = &vecs

	p.state.SetDimensions(d, n)
	p.state.SetFitted()
	return nil
}

// Transform whitens X: diag(1/sqrt(eigenvalues)) * V^T * (X - mean).
func (p *PCAWhitening) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state.RequireFitted("PCAWhitening", "Transform"); err != nil {
		return nil, err
	}

	d, _ := X.Dims()
	nFeatures, _ := p.state.GetDimensions()
	if d != nFeatures {
		return nil, errors.NewDimensionError("PCAWhitening.Transform", nFeatures, d, 0)
	}

	centered := p.center(X)

	var rotated mat.Dense
	rotated.Mul(p.eigVecs.T(), centered)

	// Scale each row by 1/sqrt(eigenvalue).
	r, c := rotated.Dims()
	for i := 0; i < r; i++ {
		scale := 1.0 / math.Sqrt(p.eigVals[i])
		for j := 0; j < c; j++ {
			rotated.Set(i, j, rotated.At(i, j)*scale)
		}
	}

	return &rotated, nil
}

// FitTransform fits on X and whitens it in one call.
func (p *PCAWhitening) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// InverseTransform maps whitened data back to the original space:
// V * diag(sqrt(eigenvalues)) * X + mean.
func (p *PCAWhitening) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state.RequireFitted("PCAWhitening", "InverseTransform"); err != nil {
		return nil, err
	}

	d, n := X.Dims()
	nFeatures, _ := p.state.GetDimensions()
	if d != nFeatures {
		return nil, errors.NewDimensionError("PCAWhitening.InverseTransform", nFeatures, d, 0)
	}

	scaled := mat.NewDense(d, n, nil)
	for i := 0; i < d; i++ {
		scale := math.Sqrt(p.eigVals[i])
		for j := 0; j < n; j++ {
			scaled.Set(i, j, X.At(i, j)*scale)
		}
	}

	var out mat.Dense
	out.Mul(p.eigVecs, scaled)
	for j := 0; j < n; j++ {
		for i := 0; i < d; i++ {
			out.Set(i, j, out.At(i, j)+p.mean.AtVec(i))
		}
	}

	return &out, nil
}

// Mean returns the per-feature mean learned during Fit.
func (p *PCAWhitening) Mean() *mat.VecDense { return p.mean }

// EigenValues returns the regularized covariance eigenvalues, ascending.
func (p *PCAWhitening) EigenValues() []float64 { return p.eigVals }

// EigenVectors returns the covariance eigenvectors, one per column.
func (p *PCAWhitening) EigenVectors() *mat.Dense { return p.eigVecs }

// IsFitted returns whether Fit has completed.
func (p *PCAWhitening) IsFitted() bool { return p.state.IsFitted() }

// String returns a short description of the transformer.
func (p *PCAWhitening) String() string {
	if !p.state.IsFitted() {
		return fmt.Sprintf("PCAWhitening(epsilon=%g)", p.Epsilon)
	}
	nFeatures, nSamples := p.state.GetDimensions()
	return fmt.Sprintf("PCAWhitening(epsilon=%g, n_features=%d, n_samples=%d)", p.Epsilon, nFeatures, nSamples)
}

func (p *PCAWhitening) center(X mat.Matrix) *mat.Dense {
	d, n := X.Dims()
	centered := mat.NewDense(d, n, nil)
	for i := 0; i < d; i++ {
		m := p.mean.AtVec(i)
		for j := 0; j < n; j++ {
			centered.Set(i, j, X.At(i, j)-m)
		}
	}
	return centered
}

// compile-time interface check
var _ model.InverseTransformer = (*PCAWhitening)(nil)
