// Standard attribute keys for metric-learning operations. Using these keys
// consistently keeps log records filterable across the nca, preprocessing,
// and cmd packages. Keys follow a hierarchical naming convention
// ("model.name", "data.samples", "opt.objective").

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model or transformer type.
	// Examples: "NCA", "PCAWhitening", "LabelNormalizer"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "learn_distance", "evaluate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "nca", "nca.sgd", "nca.lbfgs", "preprocessing"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of points in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the dimensionality of each point.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct label values.
	ClassesKey = "data.classes"

	// BatchSizeKey is the mini-batch size for stochastic optimization.
	BatchSizeKey = "data.batch_size"
)

// Optimization state.
const (
	// OptimizerKey names the optimization strategy ("sgd" or "lbfgs").
	OptimizerKey = "opt.optimizer"

	// IterationKey is the current iteration or pass counter.
	IterationKey = "opt.iteration"

	// ObjectiveKey is the current objective function value.
	ObjectiveKey = "opt.objective"

	// ImprovementKey is the objective change since the previous checkpoint.
	ImprovementKey = "opt.improvement"

	// GradientNormKey is the Frobenius norm of the current gradient.
	GradientNormKey = "opt.gradient_norm"

	// StepSizeKey is the step size used for the latest update.
	StepSizeKey = "opt.step_size"

	// SeedKey is the pseudo-random seed of the run.
	SeedKey = "opt.seed"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"
)
