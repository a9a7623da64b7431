// Package alloc implements the sub-pool allocator: a fixed-size backing
// region carved into variable-size allocations with first-fit or best-fit
// placement, coalescing on free, and a sorted gap index for fast lookup.
package alloc

import (
	"fmt"

	"github.com/standardbeagle/subpool/internal/allocerrors"
	"github.com/standardbeagle/subpool/internal/region"
)

// Segment is a read-only snapshot of one tile in a pool's address-ordered
// layout, returned by Pool.Inspect.
type Segment struct {
	Size      int
	Allocated bool
}

// Stats is a read-only snapshot of a pool's aggregate counters.
type Stats struct {
	TotalSize int
	AllocSize int
	NumAllocs int
	NumGaps   int
	Policy    Policy
}

// AllocHandle names a live allocation within one Pool. Valid reports false
// for the handle Allocate returns when nothing fits; the zero value is not
// such a marker, since it names arena slot 0 and Valid reports true for it.
type AllocHandle struct {
	node int
}

// Valid reports whether h was produced by a successful Allocate.
func (h AllocHandle) Valid() bool { return h.node >= 0 }

// Pool manager (component C5): binds one backing region to a segment list,
// node arena, and gap index, and enforces the allocator's invariants
// (spec.md §8, P1-P7).
type Pool struct {
	region region.Region
	arena  *arena
	gaps   *gapIndex

	head, tail int
	policy     Policy

	totalSize int
	allocSize int
	numAllocs int
}

// Open acquires a backing region of exactly size bytes and seeds it as one
// whole gap. It fails with an OUT_OF_MEMORY-kind error if region
// acquisition fails; nothing is left partially constructed in that case,
// since the region is the only step that can fail (spec.md §5 "scoped
// acquisition").
func Open(factory region.Factory, size int, policy Policy, tuning Tuning) (*Pool, error) {
	reg, err := factory.Acquire(size)
	if err != nil {
		return nil, allocerrors.New(allocerrors.KindOutOfMemory, "open", "", err)
	}

	a := newArena(tuning.NodeArenaInitCapacity, tuning.NodeArenaFillFactor, tuning.NodeArenaGrowthFactor)
	headIdx := a.acquire()
	a.set(headIdx, segment{size: size, base: 0, used: true, allocated: false, prev: nilIdx, next: nilIdx})

	g := newGapIndex(tuning.GapIndexInitCapacity, tuning.GapIndexFillFactor, tuning.GapIndexGrowthFactor)
	g.insert(size, headIdx, func(n int) int { return a.get(n).base })

	return &Pool{
		region:    reg,
		arena:     a,
		gaps:      g,
		head:      headIdx,
		tail:      headIdx,
		policy:    policy,
		totalSize: size,
	}, nil
}

// Closeable reports whether the pool holds exactly one gap spanning the
// whole region and no live allocations — the precondition for Close.
func (p *Pool) Closeable() bool {
	return p.gaps.len() == 1 && p.numAllocs == 0
}

// Release hands the backing region back to its factory. The caller (the
// registry) is responsible for checking Closeable first.
func (p *Pool) Release() { p.region.Release() }

func (p *Pool) baseOf(node int) int { return p.arena.get(node).base }

func (p *Pool) selectFirstFit(requested int) int {
	for i := p.head; i != nilIdx; {
		s := p.arena.get(i)
		if isGap(s) && s.size >= requested {
			return i
		}
		i = s.next
	}
	return nilIdx
}

func (p *Pool) selectBestFit(requested int) int {
	e, ok := p.gaps.lookupBestFit(requested)
	if !ok {
		return nilIdx
	}
	return e.node
}

// Allocate carves requested bytes out of the first gap the active policy
// selects, splitting the remainder into a fresh gap when the match is not
// exact (spec.md §4.4). An AllocHandle whose Valid reports false, with a nil
// error, means no gap fit the request; an error means the request was not
// positive or the pool's internal bookkeeping is inconsistent.
func (p *Pool) Allocate(requested int) (AllocHandle, error) {
	if requested <= 0 {
		return AllocHandle{node: nilIdx}, allocerrors.New(allocerrors.KindCorrupt, "new_alloc", "", fmt.Errorf("requested size must be positive, got %d", requested))
	}
	if p.gaps.len() == 0 {
		return AllocHandle{node: nilIdx}, nil
	}

	var victim int
	switch p.policy {
	case BestFit:
		victim = p.selectBestFit(requested)
	default:
		victim = p.selectFirstFit(requested)
	}
	if victim == nilIdx {
		return AllocHandle{node: nilIdx}, nil
	}

	if !p.gaps.remove(victim) {
		return AllocHandle{node: nilIdx}, allocerrors.New(allocerrors.KindCorrupt, "new_alloc", "", fmt.Errorf("gap index missing handle for segment %d", victim))
	}

	g := p.arena.get(victim)
	remainder := g.size - requested
	g.size = requested
	g.allocated = true
	p.arena.set(victim, g)

	if remainder > 0 {
		r := p.arena.acquire()
		rs := segment{size: remainder, base: g.base + requested, used: true, allocated: false, prev: victim, next: g.next}
		if g.next != nilIdx {
			succ := p.arena.get(g.next)
			succ.prev = r
			p.arena.set(g.next, succ)
		} else {
			p.tail = r
		}
		p.arena.set(r, rs)
		g.next = r
		p.arena.set(victim, g)
		p.gaps.insert(remainder, r, p.baseOf)
	}

	p.numAllocs++
	p.allocSize += requested
	return AllocHandle{node: victim}, nil
}

// Free returns an allocation to the pool, coalescing with an immediately
// adjacent forward and/or backward gap (spec.md §4.4). A gap-index removal
// failure during coalescing is fatal for the call: it indicates the index
// was already out of sync with the segment list, so Free returns an error
// rather than attempt a repair. Everything up to that point (the segment
// itself turning back into a gap, the stats update) has already committed,
// which can leave the pool logically consistent but less coalesced than it
// should be.
func (p *Pool) Free(h AllocHandle) error {
	if h.node < 0 || h.node >= p.arena.capacity() {
		return allocerrors.New(allocerrors.KindCorrupt, "del_alloc", "", fmt.Errorf("invalid allocation handle"))
	}
	m := p.arena.get(h.node)
	if !m.used || !m.allocated {
		return allocerrors.New(allocerrors.KindCorrupt, "del_alloc", "", fmt.Errorf("handle does not refer to a live allocation"))
	}

	m.allocated = false
	p.arena.set(h.node, m)
	p.numAllocs--
	p.allocSize -= m.size

	node := h.node

	if m.next != nilIdx {
		next := p.arena.get(m.next)
		if isGap(next) {
			if !p.gaps.remove(m.next) {
				return allocerrors.New(allocerrors.KindCorrupt, "del_alloc", "", fmt.Errorf("gap index missing handle for segment %d", m.next))
			}
			m.size += next.size
			if next.next != nilIdx {
				succ := p.arena.get(next.next)
				succ.prev = node
				p.arena.set(next.next, succ)
			} else {
				p.tail = node
			}
			dead := m.next
			m.next = next.next
			p.arena.set(node, m)
			p.arena.release(dead)
		}
	}

	if m.prev != nilIdx {
		prevIdx := m.prev
		prevSeg := p.arena.get(prevIdx)
		if isGap(prevSeg) {
			if !p.gaps.remove(prevIdx) {
				return allocerrors.New(allocerrors.KindCorrupt, "del_alloc", "", fmt.Errorf("gap index missing handle for segment %d", prevIdx))
			}
			prevSeg.size += m.size
			prevSeg.next = m.next
			if m.next != nilIdx {
				succ := p.arena.get(m.next)
				succ.prev = prevIdx
				p.arena.set(m.next, succ)
			} else {
				p.tail = prevIdx
			}
			p.arena.set(prevIdx, prevSeg)
			p.arena.release(node)
			node = prevIdx
			m = prevSeg
		}
	}

	p.gaps.insert(m.size, node, p.baseOf)
	return nil
}

// Inspect walks the segment list in address order.
func (p *Pool) Inspect() []Segment {
	out := make([]Segment, 0, p.arena.usedNodes())
	for i := p.head; i != nilIdx; {
		s := p.arena.get(i)
		out = append(out, Segment{Size: s.size, Allocated: s.allocated})
		i = s.next
	}
	return out
}

// Stats returns a snapshot of the pool's aggregate counters.
func (p *Pool) Stats() Stats {
	return Stats{
		TotalSize: p.totalSize,
		AllocSize: p.allocSize,
		NumAllocs: p.numAllocs,
		NumGaps:   p.gaps.len(),
		Policy:    p.policy,
	}
}
