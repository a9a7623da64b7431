package alloc

import "github.com/standardbeagle/subpool/internal/alloc/dynarray"

// gapEntry is a (size, segment-handle) pair in the gap index (spec.md §4.3).
// Ordering is read off the referenced segment's base, not stored here, so a
// gapEntry never goes stale when the segment it names is mutated in place.
type gapEntry struct {
	size int
	node int
}

// gapIndex is a dense array of gapEntry kept sorted by (size ASC, base ASC)
// at all times via insertion during Insert (component C4).
type gapIndex struct {
	entries *dynarray.Array[gapEntry]
	count   int
}

func newGapIndex(initCapacity int, fillFactor, growthFactor float64) *gapIndex {
	return &gapIndex{entries: dynarray.New[gapEntry](initCapacity, fillFactor, growthFactor)}
}

func (g *gapIndex) len() int { return g.count }

func less(a, b gapEntry, baseOf func(int) int) bool {
	if a.size != b.size {
		return a.size < b.size
	}
	return baseOf(a.node) < baseOf(b.node)
}

// insert appends then bubbles the new entry left until the ordering holds.
func (g *gapIndex) insert(size, node int, baseOf func(int) int) {
	g.entries.GrowIfNeeded(g.count + 1)
	idx := g.count
	g.entries.Set(idx, gapEntry{size: size, node: node})
	g.count++
	for idx > 0 {
		cur := g.entries.At(idx)
		prev := g.entries.At(idx - 1)
		if !less(cur, prev, baseOf) {
			break
		}
		g.entries.Set(idx, prev)
		g.entries.Set(idx-1, cur)
		idx--
	}
}

// remove finds node by linear scan and shifts [pos+1, count) left by one.
func (g *gapIndex) remove(node int) bool {
	pos := -1
	for i := 0; i < g.count; i++ {
		if g.entries.At(i).node == node {
			pos = i
			break
		}
	}
	if pos == -1 {
		return false
	}
	for i := pos; i < g.count-1; i++ {
		g.entries.Set(i, g.entries.At(i+1))
	}
	g.entries.Set(g.count-1, gapEntry{})
	g.count--
	return true
}

// lookupBestFit returns the smallest gap whose size is >= requested, since
// the index is sorted by size ascending the first match is the minimum.
func (g *gapIndex) lookupBestFit(requested int) (gapEntry, bool) {
	for i := 0; i < g.count; i++ {
		e := g.entries.At(i)
		if e.size >= requested {
			return e, true
		}
	}
	return gapEntry{}, false
}
