package preprocessing

import (
	"sort"

	"github.com/Jackqhr/mlpack/core/model"
	"github.com/Jackqhr/mlpack/pkg/errors"
)

// LabelNormalizer maps arbitrary integer class labels onto the dense range
// [0, C), where C is the number of distinct labels, and remembers the mapping
// so predictions can be reported in the caller's original label space.
// Classes are assigned in ascending order of the original values, so the
// mapping is deterministic.
type LabelNormalizer struct {
	state *model.StateManager

	classes []int       // original label of each normalized class, ascending
	index   map[int]int // original label -> normalized class
}

// NewLabelNormalizer creates an unfitted LabelNormalizer.
func NewLabelNormalizer() *LabelNormalizer {
	return &LabelNormalizer{
		state: model.NewStateManager(),
	}
}

// FitTransform learns the label mapping from raw and returns the normalized
// labels.
func (l *LabelNormalizer) FitTransform(raw []int) ([]int, error) {
	if len(raw) == 0 {
		return nil, errors.NewModelError("LabelNormalizer.FitTransform", "empty labels", errors.ErrEmptyData)
	}

	seen := make(map[int]struct{}, len(raw))
	for _, label := range raw {
		seen[label] = struct{}{}
	}

	l.classes = make([]int, 0, len(seen))
	for label := range seen {
		l.classes = append(l.classes, label)
	}
	sort.Ints(l.classes)

	l.index = make(map[int]int, len(l.classes))
	for i, label := range l.classes {
		l.index[label] = i
	}

	l.state.SetDimensions(0, len(raw))
	l.state.SetFitted()
	return l.Transform(raw)
}

// Transform maps raw labels through the learned mapping.
func (l *LabelNormalizer) Transform(raw []int) ([]int, error) {
	if err := l.state.RequireFitted("LabelNormalizer", "Transform"); err != nil {
		return nil, err
	}

	normalized := make([]int, len(raw))
	for i, label := range raw {
		class, ok := l.index[label]
		if !ok {
			return nil, errors.NewValueError("LabelNormalizer.Transform", "unseen label value")
		}
		normalized[i] = class
	}
	return normalized, nil
}

// Revert maps normalized labels back to the original label space.
func (l *LabelNormalizer) Revert(normalized []int) ([]int, error) {
	if err := l.state.RequireFitted("LabelNormalizer", "Revert"); err != nil {
		return nil, err
	}

	raw := make([]int, len(normalized))
	for i, class := range normalized {
		if class < 0 || class >= len(l.classes) {
			return nil, errors.NewValueError("LabelNormalizer.Revert", "class index out of range")
		}
		raw[i] = l.classes[class]
	}
	return raw, nil
}

// Classes returns the original label of each normalized class, ascending.
func (l *LabelNormalizer) Classes() []int {
	return l.classes
}

// NumClasses returns the number of distinct labels seen during fitting.
func (l *LabelNormalizer) NumClasses() int {
	return len(l.classes)
}

// IsFitted returns whether FitTransform has completed.
func (l *LabelNormalizer) IsFitted() bool { return l.state.IsFitted() }
