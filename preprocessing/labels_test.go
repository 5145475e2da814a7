package preprocessing

import (
	"reflect"
	"testing"

	"github.com/Jackqhr/mlpack/pkg/errors"
)

func TestLabelNormalizerFitTransform(t *testing.T) {
	ln := NewLabelNormalizer()

	raw := []int{7, 3, 7, 11, 3, 3}
	normalized, err := ln.FitTransform(raw)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// Classes are assigned ascending: 3 -> 0, 7 -> 1, 11 -> 2.
	want := []int{1, 0, 1, 2, 0, 0}
	if !reflect.DeepEqual(normalized, want) {
		t.Errorf("normalized = %v, want %v", normalized, want)
	}

	if got := ln.NumClasses(); got != 3 {
		t.Errorf("NumClasses = %d, want 3", got)
	}
	if !reflect.DeepEqual(ln.Classes(), []int{3, 7, 11}) {
		t.Errorf("Classes = %v", ln.Classes())
	}
}

func TestLabelNormalizerRevert(t *testing.T) {
	ln := NewLabelNormalizer()

	raw := []int{-5, 100, 0, 100, -5}
	normalized, err := ln.FitTransform(raw)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	back, err := ln.Revert(normalized)
	if err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	if !reflect.DeepEqual(back, raw) {
		t.Errorf("round trip = %v, want %v", back, raw)
	}
}

func TestLabelNormalizerUnseenLabel(t *testing.T) {
	ln := NewLabelNormalizer()
	if _, err := ln.FitTransform([]int{1, 2}); err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if _, err := ln.Transform([]int{3}); err == nil {
		t.Error("unseen label should fail")
	}
	if _, err := ln.Revert([]int{5}); err == nil {
		t.Error("out-of-range class should fail")
	}
}

func TestLabelNormalizerNotFitted(t *testing.T) {
	ln := NewLabelNormalizer()
	_, err := ln.Transform([]int{0})
	if err == nil {
		t.Fatal("Transform before FitTransform should fail")
	}
	var nfErr *errors.NotFittedError
	if !errors.As(err, &nfErr) {
		t.Errorf("expected NotFittedError, got %v", err)
	}
}

func TestLabelNormalizerEmpty(t *testing.T) {
	ln := NewLabelNormalizer()
	if _, err := ln.FitTransform(nil); err == nil {
		t.Error("empty labels should fail")
	}
}
