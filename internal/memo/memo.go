package memo

import (
	"sync"
	"sync/atomic"
)

// Table is a bounded memo table with two generations.
//
// Stores go to the head generation. When the head reaches maxSize the
// generations swap and the older one is cleared, so at most 2*maxSize entries
// are retained. Loads consult the head first, then the previous generation.
type Table[K comparable, V any] struct {
	gens    [2]*sync.Map
	headIdx atomic.Uint32
	size    atomic.Uint32
	maxSize uint32
}

// NewTable creates a memo table holding up to maxSize entries per generation.
func NewTable[K comparable, V any](maxSize uint32) *Table[K, V] {
	if maxSize == 0 {
		panic("maxSize should be greater than 0")
	}
	return &Table[K, V]{
		gens:    [2]*sync.Map{{}, {}},
		maxSize: maxSize,
	}
}

func (t *Table[K, V]) Load(k K) (V, bool) {
	head := t.headIdx.Load()
	v, ok := t.gens[head].Load(k)
	if !ok {
		v, ok = t.gens[1-head].Load(k)
		if !ok {
			var zero V
			return zero, false
		}
	}
	return v.(V), true
}

func (t *Table[K, V]) Store(k K, v V) {
	if swapped := t.size.CompareAndSwap(t.maxSize, 0); swapped {
		next := 1 - t.headIdx.Load()
		t.gens[next].Clear()
		t.headIdx.Store(next)
	}
	t.gens[t.headIdx.Load()].Store(k, v)
	t.size.Add(1)
}

// Func memoizes a pure single-argument function.
// Do not use it on functions depending on time, I/O or mutable state.
func Func[K comparable, V any](pureFn func(K) V, maxSize uint32) func(K) V {
	table := NewTable[K, V](maxSize)
	return func(k K) V {
		v, ok := table.Load(k)
		if !ok {
			v = pureFn(k)
			table.Store(k, v)
		}
		return v
	}
}
