package hseq

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// projectionCache memoizes the non-void index set per distinct shape
// signature. A client typically runs a small number of distinct batch shapes
// over and over, so the index set for each shape is computed exactly once.
var projectionCache = xsync.NewMapOf[string, []int]()

// Project returns the indices of all non-void positions of the shape, in
// their original relative order.
func (s Shape) Project() []int {
	if cached, ok := projectionCache.Load(s.Signature()); ok {
		return cached
	}

	indices := make([]int, 0, len(s))
	for i, k := range s {
		if k != KindVoid {
			indices = append(indices, i)
		}
	}

	projectionCache.Store(s.Signature(), indices)
	return indices
}

// Project returns a new sequence with every void position removed, keeping
// the relative order of the remaining values. The result's shape is a pure
// function of the input shape - which values happen to be empty at runtime
// plays no role.
func (s Seq) Project() Seq {
	indices := s.shape.Project()

	shape := make(Shape, len(indices))
	values := make([]Value, len(indices))
	for out, in := range indices {
		shape[out] = s.shape[in]
		values[out] = s.values[in]
	}

	return Seq{shape: shape, values: values}
}
