package alloc

import (
	"sync"
	"sync/atomic"
)

// ScratchPool is a generic, tiered sync.Pool-backed recycler for the
// variable-size []byte payloads the bench command generates when it drives
// simulated workloads through a Pool. It has nothing to do with the
// sub-pool allocator's own bookkeeping; it just keeps the driver's own
// allocation traffic from dominating a benchmark run's GC overhead.
type ScratchPool[T any] struct {
	pools []*poolTier[T]
	stats atomic.Value // *ScratchStats
}

// poolTier represents a single size tier in the scratch pool.
type poolTier[T any] struct {
	capacity int
	pool     sync.Pool
}

// ScratchStats tracks allocation statistics for a ScratchPool.
type ScratchStats struct {
	Allocations   int64
	Reuses        int64
	PoolHits      int64
	PoolMisses    int64
	TotalCapacity int64
}

// ScratchTierConfig defines one size tier.
type ScratchTierConfig struct {
	Capacity int
}

// DefaultScratchTierConfigs covers the payload sizes the bench command's
// default workload mix produces.
var DefaultScratchTierConfigs = []ScratchTierConfig{
	{Capacity: 16},
	{Capacity: 64},
	{Capacity: 256},
	{Capacity: 1024},
	{Capacity: 4096},
}

// NewScratchPool creates a ScratchPool with the given tier configuration.
func NewScratchPool[T any](configs []ScratchTierConfig) *ScratchPool[T] {
	sp := &ScratchPool[T]{
		pools: make([]*poolTier[T], len(configs)),
	}
	for i, config := range configs {
		capacity := config.Capacity
		sp.pools[i] = &poolTier[T]{
			capacity: capacity,
			pool: sync.Pool{
				New: func() any {
					return make([]T, 0, capacity)
				},
			},
		}
	}
	sp.stats.Store(&ScratchStats{})
	return sp
}

// NewDefaultScratchPool creates a ScratchPool using DefaultScratchTierConfigs.
func NewDefaultScratchPool[T any]() *ScratchPool[T] {
	return NewScratchPool[T](DefaultScratchTierConfigs)
}

// Get returns a slice with length 0 and capacity >= requested.
func (sp *ScratchPool[T]) Get(capacity int) []T {
	if capacity <= 0 {
		return make([]T, 0)
	}

	for _, tier := range sp.pools {
		if tier.capacity >= capacity {
			return sp.getFromPool(tier)
		}
	}

	sp.updateStats(func(stats *ScratchStats) {
		stats.Allocations++
		stats.PoolMisses++
		stats.TotalCapacity += int64(capacity)
	})
	return make([]T, 0, capacity)
}

// Put returns a slice to the pool matching its exact capacity. Slices whose
// capacity doesn't match a configured tier are discarded.
func (sp *ScratchPool[T]) Put(slice []T) {
	if slice == nil || cap(slice) == 0 {
		return
	}

	capacity := cap(slice)
	for _, tier := range sp.pools {
		if tier.capacity == capacity {
			slice = slice[:0]
			tier.pool.Put(slice)
			sp.updateStats(func(stats *ScratchStats) {
				stats.Reuses++
				stats.PoolHits++
			})
			return
		}
	}

	sp.updateStats(func(stats *ScratchStats) {
		stats.PoolMisses++
	})
}

// Stats returns a snapshot of the recycler's own allocation statistics.
func (sp *ScratchPool[T]) Stats() ScratchStats {
	return *sp.stats.Load().(*ScratchStats)
}

// ResetStats zeroes the recycler's statistics.
func (sp *ScratchPool[T]) ResetStats() {
	sp.stats.Store(&ScratchStats{})
}

func (sp *ScratchPool[T]) getFromPool(tier *poolTier[T]) []T {
	if slice := tier.pool.Get(); slice != nil {
		sp.updateStats(func(stats *ScratchStats) {
			stats.Reuses++
			stats.PoolHits++
			stats.TotalCapacity += int64(tier.capacity)
		})
		return slice.([]T)
	}

	sp.updateStats(func(stats *ScratchStats) {
		stats.Allocations++
		stats.PoolMisses++
		stats.TotalCapacity += int64(tier.capacity)
	})
	return make([]T, 0, tier.capacity)
}

func (sp *ScratchPool[T]) updateStats(update func(*ScratchStats)) {
	current := sp.stats.Load().(*ScratchStats)
	newStats := *current
	update(&newStats)
	sp.stats.Store(&newStats)
}
