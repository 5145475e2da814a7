package parallel

import (
	"sync/atomic"
	"testing"
)

func TestSplitCoversAllItems(t *testing.T) {
	for _, items := range []int{0, 1, 2, 7, 64, 1000} {
		ranges := Split(items)

		covered := 0
		next := 0
		for _, r := range ranges {
			if r.Start != next {
				t.Errorf("items=%d: ranges not contiguous at %d", items, r.Start)
			}
			if r.End <= r.Start {
				t.Errorf("items=%d: empty range %+v", items, r)
			}
			covered += r.End - r.Start
			next = r.End
		}
		if covered != items {
			t.Errorf("items=%d: covered %d", items, covered)
		}
	}
}

func TestForEachVisitsEveryIndex(t *testing.T) {
	const items = 257
	var visited [items]int32

	ranges := Split(items)
	ForEach(ranges, func(_ int, r Range) {
		for i := r.Start; i < r.End; i++ {
			atomic.AddInt32(&visited[i], 1)
		}
	})

	for i, count := range visited {
		if count != 1 {
			t.Fatalf("index %d visited %d times", i, count)
		}
	}
}

func TestForEachChunkIndices(t *testing.T) {
	ranges := Split(100)
	seen := make([]int32, len(ranges))
	ForEach(ranges, func(chunk int, _ Range) {
		atomic.AddInt32(&seen[chunk], 1)
	})
	for i, count := range seen {
		if count != 1 {
			t.Errorf("chunk %d run %d times", i, count)
		}
	}
}

func TestSplitWithThreshold(t *testing.T) {
	ranges := SplitWithThreshold(10, 32)
	if len(ranges) != 1 || ranges[0].Start != 0 || ranges[0].End != 10 {
		t.Errorf("below threshold should be one range, got %+v", ranges)
	}

	if got := SplitWithThreshold(0, 32); got != nil {
		t.Errorf("zero items should return nil, got %+v", got)
	}
}
