package alloc

import "github.com/standardbeagle/subpool/internal/alloc/dynarray"

// nilIdx marks the absence of a segment-list link or a handle slot.
const nilIdx = -1

// segment is one node in a pool's doubly-linked segment list (spec.md §3).
// A segment is a gap when used && !allocated, and dead when !used.
type segment struct {
	size      int
	base      int
	used      bool
	allocated bool
	prev      int
	next      int
}

// arena is the node arena (C3): a dense, append-growing store of segment
// records addressed by stable index. Released slots become dead in place
// and are reused by the next Acquire's linear scan (spec.md §4.2).
type arena struct {
	nodes     *dynarray.Array[segment]
	liveCount int
}

func newArena(initCapacity int, fillFactor, growthFactor float64) *arena {
	return &arena{nodes: dynarray.New[segment](initCapacity, fillFactor, growthFactor)}
}

func (a *arena) capacity() int { return a.nodes.Capacity() }

func (a *arena) get(i int) segment { return a.nodes.At(i) }

func (a *arena) set(i int, s segment) { a.nodes.Set(i, s) }

func (a *arena) usedNodes() int { return a.liveCount }

// acquire grows the arena if the live-node fill metric would otherwise be
// exceeded, then returns the index of the first dead slot, marked live.
func (a *arena) acquire() int {
	a.nodes.GrowIfNeeded(a.liveCount + 1)
	for i := 0; i < a.nodes.Capacity(); i++ {
		if !a.nodes.At(i).used {
			a.nodes.Set(i, segment{used: true, prev: nilIdx, next: nilIdx})
			a.liveCount++
			return i
		}
	}
	// GrowIfNeeded always adds capacity beyond the fill-factor threshold
	// (fillFactor < 1), so a dead slot must exist after growth. Reaching
	// this point means the arena's tuning is misconfigured.
	panic("alloc: node arena exhausted despite growth")
}

// release marks a slot dead in place; its record is zeroed per spec.md §4.2.
func (a *arena) release(i int) {
	a.nodes.Set(i, segment{})
	a.liveCount--
}

func isGap(s segment) bool { return s.used && !s.allocated }
