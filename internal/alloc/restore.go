package alloc

import (
	"fmt"

	"github.com/standardbeagle/subpool/internal/allocerrors"
	"github.com/standardbeagle/subpool/internal/region"
)

// Restore rebuilds a Pool's bookkeeping from a previously captured
// address-ordered segment snapshot (Inspect's output), against a freshly
// acquired backing region of the snapshot's total size. The core itself
// carries no persistence (spec.md §1 Non-goals) — Restore exists for a host
// that keeps a pool's logical layout in its own external store (the CLI's
// session file) and wants an equivalent in-memory Pool back, not for the
// library to gain a notion of durable state.
func Restore(factory region.Factory, policy Policy, tuning Tuning, segments []Segment) (*Pool, error) {
	total := 0
	for _, s := range segments {
		total += s.Size
	}
	reg, err := factory.Acquire(total)
	if err != nil {
		return nil, allocerrors.New(allocerrors.KindOutOfMemory, "restore", "", err)
	}

	a := newArena(tuning.NodeArenaInitCapacity, tuning.NodeArenaFillFactor, tuning.NodeArenaGrowthFactor)
	g := newGapIndex(tuning.GapIndexInitCapacity, tuning.GapIndexFillFactor, tuning.GapIndexGrowthFactor)

	p := &Pool{region: reg, arena: a, gaps: g, policy: policy, totalSize: total, head: nilIdx, tail: nilIdx}

	base := 0
	prev := nilIdx
	for _, s := range segments {
		idx := a.acquire()
		a.set(idx, segment{size: s.Size, base: base, used: true, allocated: s.Allocated, prev: prev, next: nilIdx})

		if prev == nilIdx {
			p.head = idx
		} else {
			ps := a.get(prev)
			ps.next = idx
			a.set(prev, ps)
		}

		if s.Allocated {
			p.numAllocs++
			p.allocSize += s.Size
		} else {
			g.insert(s.Size, idx, p.baseOf)
		}

		prev = idx
		base += s.Size
	}
	p.tail = prev

	return p, nil
}

// BaseOf reports the byte offset an AllocHandle refers to, the address a
// host would naturally use to name the allocation externally (e.g. in a
// persisted session). It reports false for an invalid or stale handle.
func (p *Pool) BaseOf(h AllocHandle) (int, bool) {
	if h.node < 0 || h.node >= p.arena.capacity() {
		return 0, false
	}
	s := p.arena.get(h.node)
	if !s.used || !s.allocated {
		return 0, false
	}
	return s.base, true
}

// FreeAt frees the live allocation whose segment starts at base, for hosts
// that address allocations by offset rather than by AllocHandle (e.g. after
// a Restore, where the original handle's node index is no longer
// meaningful but the base address is unchanged).
func (p *Pool) FreeAt(base int) error {
	for i := p.head; i != nilIdx; {
		s := p.arena.get(i)
		if s.base == base {
			if !s.allocated {
				return allocerrors.New(allocerrors.KindCorrupt, "del_alloc", "", fmt.Errorf("segment at base %d is not allocated", base))
			}
			return p.Free(AllocHandle{node: i})
		}
		i = s.next
	}
	return allocerrors.New(allocerrors.KindCorrupt, "del_alloc", "", fmt.Errorf("no segment at base %d", base))
}
