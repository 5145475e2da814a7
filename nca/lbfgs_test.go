package nca

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLBFGSImprovesObjective(t *testing.T) {
	data, labels := twoBlobs()
	f := NewSoftmaxObjective(data, labels, nil)
	opt := NewLBFGS(f, LBFGSConfig{MaxIterations: 100})

	opt.Optimize(IdentityStart(2))

	hist := opt.ObjectiveHistory()
	if len(hist) < 2 {
		t.Fatalf("history has %d entries, want at least 2", len(hist))
	}
	if hist[len(hist)-1] > hist[0] {
		t.Errorf("objective rose from %v to %v", hist[0], hist[len(hist)-1])
	}
	switch opt.Status() {
	case StatusConverged, StatusMaxIterationsReached, StatusLineSearchExhausted:
	default:
		t.Errorf("terminal status %v is not a terminal state", opt.Status())
	}
}

func TestLBFGSConvergesAtStationaryPoint(t *testing.T) {
	// Two identical points of the same class: p_01 = p_10 = 1 for every
	// transform, so the gradient is identically zero and the run converges
	// without taking a step.
	data := mat.NewDense(2, 2, []float64{
		1, 1,
		2, 2,
	})
	labels := []int{0, 0}
	f := NewSoftmaxObjective(data, labels, nil)
	opt := NewLBFGS(f, LBFGSConfig{})

	result := opt.Optimize(IdentityStart(2))

	if opt.Status() != StatusConverged {
		t.Fatalf("status = %v, want %v", opt.Status(), StatusConverged)
	}
	if len(opt.ObjectiveHistory()) != 1 {
		t.Errorf("history has %d entries, want 1", len(opt.ObjectiveHistory()))
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if result.At(i, j) != want {
				t.Errorf("transform changed at (%d,%d): %v", i, j, result.At(i, j))
			}
		}
	}
}

func TestLBFGSMaxIterationsStatus(t *testing.T) {
	data, labels := twoBlobs()
	f := NewSoftmaxObjective(data, labels, nil)
	opt := NewLBFGS(f, LBFGSConfig{MaxIterations: 1})

	opt.Optimize(IdentityStart(2))

	if opt.Status() != StatusMaxIterationsReached {
		t.Errorf("status = %v, want %v", opt.Status(), StatusMaxIterationsReached)
	}
	// Exactly the initial value plus one accepted step.
	if len(opt.ObjectiveHistory()) != 2 {
		t.Errorf("history has %d entries, want 2", len(opt.ObjectiveHistory()))
	}
}

func TestTerminationStatusString(t *testing.T) {
	cases := map[TerminationStatus]string{
		StatusInitializing:         "initializing",
		StatusIterating:            "iterating",
		StatusConverged:            "converged",
		StatusMaxIterationsReached: "max_iterations_reached",
		StatusLineSearchExhausted:  "line_search_exhausted",
		TerminationStatus(99):      "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("TerminationStatus(%d).String() = %q, want %q", status, got, want)
		}
	}
}
