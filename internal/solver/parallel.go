package solver

import "sync"

// parallelFor splits [lo, hi) into at most workers contiguous chunks of at
// least minChunk items and runs fn on each.
func parallelFor(lo, hi, workers, minChunk int, fn func(start, end int)) {
	n := hi - lo
	if n <= 0 {
		return
	}
	if workers > n/minChunk {
		workers = n / minChunk
	}
	if workers <= 1 {
		fn(lo, hi)
		return
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := lo; start < hi; start += chunk {
		end := start + chunk
		if end > hi {
			end = hi
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
