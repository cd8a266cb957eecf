package text

import "sync"

// ============================================================================
// Index Slice Pooling
// ============================================================================
//
// Line layout needs short-lived index slices (visual order, embedding
// levels) for every line of every relayout. Pooling them keeps typing in a
// long paragraph from allocating per keystroke.
//
// Usage:
//   levels := acquireIndexSlice(len(units))
//   ... use levels ...
//   releaseIndexSlice(levels)

var indexSlicePool = sync.Pool{
	New: func() interface{} {
		return make([]int, 0, 64)
	},
}

// acquireIndexSlice gets a slice with len == n from the pool.
// Caller must call releaseIndexSlice when done.
func acquireIndexSlice(n int) []int {
	slice := indexSlicePool.Get().([]int)
	if cap(slice) < n {
		indexSlicePool.Put(slice[:0])
		return make([]int, n, n*2)
	}
	return slice[:n]
}

// releaseIndexSlice returns a slice to the pool.
func releaseIndexSlice(slice []int) {
	if slice == nil {
		return
	}
	// Only pool slices up to a reasonable size to avoid memory bloat
	if cap(slice) <= 1024 {
		indexSlicePool.Put(slice[:0])
	}
}
