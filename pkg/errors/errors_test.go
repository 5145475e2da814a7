package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "LearnDistance",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "mlpack: LearnDistance: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Transform",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "mlpack: Transform: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("LearnDistance", 10, 9, 1)

	want := "mlpack: LearnDistance: dimension mismatch on axis 1 (points). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 10 || dimErr.Got != 9 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("PCAWhitening", "Transform")

	want := "mlpack: PCAWhitening: this model is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var nfErr *NotFittedError
	if !As(err, &nfErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestWarnDispatchesToHandler(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) {
		captured = append(captured, w)
	})
	defer SetWarningHandler(nil)

	Warn(NewDegenerateSoftmaxWarning("SoftmaxObjective.Evaluate", 3))
	Warn(NewConvergenceWarning("NCA.LBFGS", 12, "line search exhausted"))

	if len(captured) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(captured))
	}

	var deg *DegenerateSoftmaxWarning
	if !As(captured[0], &deg) {
		t.Fatal("first warning should be *DegenerateSoftmaxWarning")
	}
	if deg.Points != 3 {
		t.Errorf("Points = %d, want 3", deg.Points)
	}
	if !strings.Contains(captured[0].Error(), "denominator of p_i is 0") {
		t.Errorf("unexpected message: %v", captured[0])
	}

	var conv *ConvergenceWarning
	if !As(captured[1], &conv) {
		t.Fatal("second warning should be *ConvergenceWarning")
	}
	if conv.Iterations != 12 {
		t.Errorf("Iterations = %d, want 12", conv.Iterations)
	}
}

func TestDegenerateSoftmaxWarningSingular(t *testing.T) {
	w := NewDegenerateSoftmaxWarning("SoftmaxObjective.Evaluate", 1)
	if !strings.Contains(w.Error(), "for 1 point;") {
		t.Errorf("unexpected message: %v", w)
	}
}

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("objective", 1.5, 0); err != nil {
		t.Errorf("finite value should pass: %v", err)
	}

	nan := 0.0
	nan = nan / nan
	err := CheckScalar("objective", nan, 7)
	if err == nil {
		t.Fatal("NaN should fail the check")
	}

	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatal("Error should be castable to *NumericalInstabilityError")
	}
	if numErr.Iteration != 7 {
		t.Errorf("Iteration = %d, want 7", numErr.Iteration)
	}
}

func TestClipValue(t *testing.T) {
	if got := ClipValue(5, 1e-20, 1e20); got != 5 {
		t.Errorf("ClipValue(5) = %v", got)
	}
	if got := ClipValue(1e-30, 1e-20, 1e20); got != 1e-20 {
		t.Errorf("ClipValue below min = %v", got)
	}
	if got := ClipValue(1e30, 1e-20, 1e20); got != 1e20 {
		t.Errorf("ClipValue above max = %v", got)
	}
}

func TestStabilizeExp(t *testing.T) {
	if got := StabilizeExp(-1e10); got != 0 {
		t.Errorf("StabilizeExp(-1e10) = %v, want 0", got)
	}
	if got := StabilizeExp(0); got != 1 {
		t.Errorf("StabilizeExp(0) = %v, want 1", got)
	}
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("boom")
	}

	err := fn()
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}

	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatal("Error should be castable to *PanicError")
	}
	if panicErr.Operation != "TestOperation" {
		t.Errorf("Operation = %q", panicErr.Operation)
	}
}
