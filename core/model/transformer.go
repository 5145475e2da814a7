package model

import "gonum.org/v1/gonum/mat"

// Transformer is the interface for data transformations. Datasets are stored
// column-wise throughout the toolkit: one point per column, one feature per
// row.
type Transformer interface {
	// Fit learns the parameters needed for the transformation.
	Fit(X mat.Matrix) error

	// Transform applies the transformation.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and transforms it in one call.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer is implemented by transformations that can be undone.
type InverseTransformer interface {
	Transformer

	// InverseTransform maps transformed data back to the original space.
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}
