// Package parallel provides small helpers for splitting index ranges across
// CPU cores. Callers that need deterministic floating-point results split
// first, compute per-chunk partials concurrently, and reduce the partials in
// chunk order.
package parallel

import (
	"runtime"
	"sync"
)

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Split divides items into at most runtime.NumCPU() contiguous ranges of
// near-equal size. It returns nil when items is zero.
func Split(items int) []Range {
	if items == 0 {
		return nil
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item is covered.
	chunkSize := (items + numWorkers - 1) / numWorkers

	ranges := make([]Range, 0, numWorkers)
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// ForEach runs fn once per range on its own goroutine and waits for all of
// them. The chunk argument is the range's position in ranges, so callers can
// write into preallocated per-chunk slots without synchronization.
func ForEach(ranges []Range, fn func(chunk int, r Range)) {
	if len(ranges) == 0 {
		return
	}
	if len(ranges) == 1 {
		fn(0, ranges[0])
		return
	}

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(chunk int, r Range) {
			defer wg.Done()
			fn(chunk, r)
		}(i, r)
	}
	wg.Wait()
}

// SplitWithThreshold behaves like Split but returns a single range covering
// everything when items does not exceed threshold, keeping small workloads
// sequential.
func SplitWithThreshold(items, threshold int) []Range {
	if items == 0 {
		return nil
	}
	if items <= threshold {
		return []Range{{Start: 0, End: items}}
	}
	return Split(items)
}
