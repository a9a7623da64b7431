package alloc

import (
	"fmt"

	"github.com/standardbeagle/subpool/internal/alloc/dynarray"
	"github.com/standardbeagle/subpool/internal/allocerrors"
	"github.com/standardbeagle/subpool/internal/region"
)

// Handle names one pool managed by a Registry. The zero value names slot 0,
// the first pool opened, so it is not an "absent" marker.
type Handle struct {
	idx int
}

// Registry (component C6) is a process-wide-shaped, lifecycle-guarded
// collection of pools: Init must run before Open, and Free refuses to run
// while any pool is still open. Closed slots are nulled rather than
// compacted, so a Handle's index stays valid for the slot's whole open
// lifetime (spec.md §4.5).
type Registry struct {
	tuning     RegistryTuning
	poolTuning Tuning

	slots *dynarray.Array[*Pool]
	count int
}

// NewRegistry constructs an uninitialized registry. Call Init before Open.
func NewRegistry(tuning RegistryTuning, poolTuning Tuning) *Registry {
	return &Registry{tuning: tuning, poolTuning: poolTuning}
}

// Init allocates the registry's pool-slot array. Calling Init twice without
// an intervening Free is a CALLED_AGAIN error.
func (r *Registry) Init() error {
	if r.slots != nil {
		return allocerrors.New(allocerrors.KindCalledAgain, "init", "", fmt.Errorf("registry already initialized"))
	}
	r.slots = dynarray.New[*Pool](r.tuning.InitCapacity, r.tuning.FillFactor, r.tuning.GrowthFactor)
	r.count = 0
	return nil
}

// Free releases the registry itself. It fails with NOT_FREED if any pool
// slot is still occupied, and with CALLED_AGAIN if the registry was never
// initialized (or was already freed).
func (r *Registry) Free() error {
	if r.slots == nil {
		return allocerrors.New(allocerrors.KindCalledAgain, "free", "", fmt.Errorf("registry not initialized"))
	}
	for i := 0; i < r.count; i++ {
		if r.slots.At(i) != nil {
			return allocerrors.New(allocerrors.KindNotFreed, "free", "", fmt.Errorf("pool at slot %d is still open", i))
		}
	}
	r.slots = nil
	r.count = 0
	return nil
}

// Open grows the slot array if needed, opens a pool against factory, and
// appends it. On failure it returns the zero Handle alongside a non-nil
// error; since the zero Handle also names slot 0, callers check the error,
// not the handle.
func (r *Registry) Open(factory region.Factory, size int, policy Policy) (Handle, error) {
	if r.slots == nil {
		return Handle{}, allocerrors.New(allocerrors.KindCalledAgain, "open", "", fmt.Errorf("registry not initialized"))
	}
	r.slots.GrowIfNeeded(r.count + 1)

	p, err := Open(factory, size, policy, r.poolTuning)
	if err != nil {
		return Handle{}, err
	}

	idx := r.count
	r.slots.Set(idx, p)
	r.count++
	return Handle{idx: idx}, nil
}

func (r *Registry) pool(h Handle) (*Pool, error) {
	if r.slots == nil || h.idx < 0 || h.idx >= r.count {
		return nil, allocerrors.New(allocerrors.KindCorrupt, "lookup", "", fmt.Errorf("invalid pool handle"))
	}
	p := r.slots.At(h.idx)
	if p == nil {
		return nil, allocerrors.New(allocerrors.KindCorrupt, "lookup", "", fmt.Errorf("pool handle refers to a closed pool"))
	}
	return p, nil
}

// Close releases h's backing region and nulls its slot. It fails with
// NOT_FREED if the pool still has live allocations or more than one gap.
func (r *Registry) Close(h Handle) error {
	p, err := r.pool(h)
	if err != nil {
		return err
	}
	if !p.Closeable() {
		return allocerrors.New(allocerrors.KindNotFreed, "close", "", fmt.Errorf("pool has live allocations or fragmented gaps"))
	}
	p.Release()
	r.slots.Set(h.idx, nil)
	return nil
}

// NewAlloc allocates requested bytes from the pool named by h.
func (r *Registry) NewAlloc(h Handle, requested int) (AllocHandle, error) {
	p, err := r.pool(h)
	if err != nil {
		return AllocHandle{node: nilIdx}, err
	}
	return p.Allocate(requested)
}

// DelAlloc frees an allocation previously returned by NewAlloc.
func (r *Registry) DelAlloc(h Handle, a AllocHandle) error {
	p, err := r.pool(h)
	if err != nil {
		return err
	}
	return p.Free(a)
}

// Inspect returns a snapshot of h's segment layout in address order.
func (r *Registry) Inspect(h Handle) ([]Segment, error) {
	p, err := r.pool(h)
	if err != nil {
		return nil, err
	}
	return p.Inspect(), nil
}

// Stats returns a snapshot of h's aggregate counters.
func (r *Registry) Stats(h Handle) (Stats, error) {
	p, err := r.pool(h)
	if err != nil {
		return Stats{}, err
	}
	return p.Stats(), nil
}
