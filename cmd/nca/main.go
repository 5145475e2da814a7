// Command nca learns a distance metric with Neighborhood Components
// Analysis. It reads a CSV dataset (one point per row), learns a linear
// transformation that improves nearest-neighbor classification, and writes
// the transformed dataset and the learned transform back to CSV.
package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Jackqhr/mlpack/nca"
	"github.com/Jackqhr/mlpack/pkg/errors"
	"github.com/Jackqhr/mlpack/preprocessing"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

type flags struct {
	Input      string
	LabelsFile string
	Output     string
	OutputDist string

	Optimizer     string
	MaxIterations int
	Tolerance     float64
	Normalize     bool
	Seed          int64

	StepSize   float64
	BatchSize  int
	LinearScan bool

	NumBasis            int
	ArmijoConstant      float64
	Wolfe               float64
	MaxLineSearchTrials int
	MinStep             float64
	MaxStep             float64
}

func initLogging() *slog.LevelVar {
	level := &slog.LevelVar{}
	logger := slog.New(
		console.NewHandler(os.Stderr, &console.HandlerOptions{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	slog.SetDefault(logger)
	errors.SetWarningHandler(func(w error) {
		slog.Warn(w.Error())
	})
	return level
}

func newCommand() *cobra.Command {
	level := initLogging()

	f := flags{
		Optimizer:           "sgd",
		MaxIterations:       500000,
		Tolerance:           1e-7,
		StepSize:            0.01,
		BatchSize:           50,
		NumBasis:            5,
		ArmijoConstant:      1e-4,
		Wolfe:               0.9,
		MaxLineSearchTrials: 50,
		MinStep:             1e-20,
		MaxStep:             1e20,
	}

	command := &cobra.Command{
		Use:   "nca",
		Short: "Learn a distance metric with Neighborhood Components Analysis",
		Long: "Learns a linear transformation of the input data that improves " +
			"k-nearest-neighbor classification, using stochastic neighbor " +
			"assignment as a differentiable proxy.",
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.PersistentFlags().GetBool("verbose")
			if err != nil {
				return err
			}
			if verbose {
				level.Set(slog.LevelDebug)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd, f)
		},
	}

	command.Flags().StringVarP(&f.Input, "input", "i", "", "Input dataset CSV, one point per row (required)")
	command.Flags().StringVarP(&f.LabelsFile, "labels", "l", "", "Labels CSV; when absent the last column of the input is used")
	command.Flags().StringVarP(&f.Output, "output", "o", "", "Output CSV for the transformed dataset")
	command.Flags().StringVarP(&f.OutputDist, "distance", "d", "", "Output CSV for the learned transform")
	command.Flags().StringVar(&f.Optimizer, "optimizer", f.Optimizer, "Optimizer to use [sgd,lbfgs]")
	command.Flags().IntVarP(&f.MaxIterations, "max_iterations", "n", f.MaxIterations, "Maximum optimizer iterations [0=unlimited]")
	command.Flags().Float64VarP(&f.Tolerance, "tolerance", "t", f.Tolerance, "Termination tolerance")
	command.Flags().BoolVarP(&f.Normalize, "normalize", "N", f.Normalize, "Scale each feature by its inverse value range before learning")
	command.Flags().Int64Var(&f.Seed, "seed", 0, "Random seed [0=clock]")
	command.Flags().Float64VarP(&f.StepSize, "step_size", "a", f.StepSize, "SGD step size")
	command.Flags().IntVarP(&f.BatchSize, "batch_size", "b", f.BatchSize, "SGD batch size")
	command.Flags().BoolVarP(&f.LinearScan, "linear_scan", "L", f.LinearScan, "Visit points in dataset order instead of shuffling")
	command.Flags().IntVarP(&f.NumBasis, "num_basis", "B", f.NumBasis, "L-BFGS memory size")
	command.Flags().Float64VarP(&f.ArmijoConstant, "armijo_constant", "A", f.ArmijoConstant, "L-BFGS Armijo constant")
	command.Flags().Float64VarP(&f.Wolfe, "wolfe", "w", f.Wolfe, "L-BFGS Wolfe parameter")
	command.Flags().IntVarP(&f.MaxLineSearchTrials, "max_line_search_trials", "T", f.MaxLineSearchTrials, "L-BFGS line search trial budget")
	command.Flags().Float64Var(&f.MinStep, "min_step", f.MinStep, "L-BFGS minimum line search step")
	command.Flags().Float64Var(&f.MaxStep, "max_step", f.MaxStep, "L-BFGS maximum line search step")
	command.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	command.Flags().SortFlags = false
	_ = command.MarkFlagRequired("input")
	return command
}

func run(cmd *cobra.Command, f flags) error {
	warnIgnoredOptions(cmd, f.Optimizer)
	if f.Output == "" && f.OutputDist == "" {
		errors.Warn(errors.NewIgnoredParameterWarning("output",
			"neither --output nor --distance given; no output will be saved"))
	}

	data, rawLabels, err := loadDataset(f.Input, f.LabelsFile)
	if err != nil {
		return err
	}
	normalizer := preprocessing.NewLabelNormalizer()
	labels, err := normalizer.FitTransform(rawLabels)
	if err != nil {
		return err
	}
	d, points := data.Dims()
	slog.Info("dataset loaded",
		slog.Int("points", points),
		slog.Int("features", d),
		slog.Int("classes", normalizer.NumClasses()),
	)

	var initial *mat.Dense
	if f.Normalize {
		initial = nca.NormalizedStart(data)
		slog.Info("using normalized starting transform")
	}

	learner := nca.New(
		nca.WithOptimizer(f.Optimizer),
		nca.WithMaxIterations(f.MaxIterations),
		nca.WithTolerance(f.Tolerance),
		nca.WithStepSize(f.StepSize),
		nca.WithBatchSize(f.BatchSize),
		nca.WithLinearScan(f.LinearScan),
		nca.WithSeed(f.Seed),
		nca.WithNumBasis(f.NumBasis),
		nca.WithArmijoConstant(f.ArmijoConstant),
		nca.WithWolfe(f.Wolfe),
		nca.WithMaxLineSearchTrials(f.MaxLineSearchTrials),
		nca.WithMinStep(f.MinStep),
		nca.WithMaxStep(f.MaxStep),
	)

	transform, err := learner.LearnDistance(data, labels, initial)
	if err != nil {
		return err
	}
	hist := learner.ObjectiveHistory()
	slog.Info("distance learned", slog.Float64("objective", hist[len(hist)-1]))

	if f.OutputDist != "" {
		if err := saveCSV(f.OutputDist, transform, false); err != nil {
			return err
		}
	}
	if f.Output != "" {
		var projected mat.Dense
		projected.Mul(transform, data)
		if err := saveCSV(f.Output, &projected, true); err != nil {
			return err
		}
	}
	return nil
}

// warnIgnoredOptions reports options that were set explicitly but have no
// effect under the selected optimizer.
func warnIgnoredOptions(cmd *cobra.Command, optimizer string) {
	sgdOnly := []string{"step_size", "batch_size", "linear_scan", "seed"}
	lbfgsOnly := []string{
		"num_basis", "armijo_constant", "wolfe",
		"max_line_search_trials", "min_step", "max_step",
	}

	ignored := lbfgsOnly
	reason := "ignored with --optimizer sgd"
	if optimizer == "lbfgs" {
		ignored = sgdOnly
		reason = "ignored with --optimizer lbfgs"
	}
	for _, name := range ignored {
		if cmd.Flags().Changed(name) {
			errors.Warn(errors.NewIgnoredParameterWarning(name, reason))
		}
	}
}

// loadDataset reads a CSV with one point per row and returns the column-wise
// feature matrix and the labels. Labels come from labelsPath when given,
// otherwise from the last column of the input.
func loadDataset(path, labelsPath string) (*mat.Dense, []int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil, errors.Wrapf(errors.ErrEmptyData, "reading %q", path)
	}

	featureCols := len(rows[0])
	var labels []int

	if labelsPath != "" {
		labelRows, err := readCSV(labelsPath)
		if err != nil {
			return nil, nil, err
		}
		labels, err = parseLabels(labelRows, labelsPath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		if featureCols < 2 {
			return nil, nil, errors.NewValueError("loadDataset",
				"input needs at least two columns when labels are taken from the last column")
		}
		featureCols--
		labels = make([]int, len(rows))
		for i, row := range rows {
			v, err := strconv.Atoi(row[featureCols])
			if err != nil {
				return nil, nil, errors.Wrapf(err, "parsing label at row %d of %q", i+1, path)
			}
			labels[i] = v
		}
	}

	if len(labels) != len(rows) {
		return nil, nil, errors.NewDimensionError("loadDataset", len(rows), len(labels), 1)
	}

	data := mat.NewDense(featureCols, len(rows), nil)
	for j, row := range rows {
		if len(row) < featureCols {
			return nil, nil, errors.NewValueError("loadDataset",
				fmt.Sprintf("row %d has %d columns, want %d", j+1, len(row), featureCols))
		}
		for i := 0; i < featureCols; i++ {
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "parsing %q at row %d, column %d", path, j+1, i+1)
			}
			data.Set(i, j, v)
		}
	}
	return data, labels, nil
}

func parseLabels(rows [][]string, path string) ([]int, error) {
	labels := make([]int, 0, len(rows))
	for i, row := range rows {
		for _, field := range row {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing label at row %d of %q", i+1, path)
			}
			labels = append(labels, v)
		}
	}
	return labels, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", path)
	}
	return rows, nil
}

// saveCSV writes a matrix to CSV. When transpose is set, columns of the
// matrix become rows of the file, restoring the one-point-per-row layout.
func saveCSV(path string, m mat.Matrix, transpose bool) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer file.Close()

	if transpose {
		m = m.T()
	}
	rows, cols := m.Dims()

	writer := csv.NewWriter(file)
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "writing %q", path)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}
	slog.Info("saved", slog.String("path", path))
	return nil
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
