package alloc

import "github.com/standardbeagle/subpool/internal/region"

// defaultRegistry backs the package-level Init/Free/OpenDefault/
// CloseDefault/NewAllocDefault/DelAllocDefault/InspectDefault functions,
// mirroring spec.md §6's single process-wide registry. Callers that want a
// registry of their own (as the serve command does) construct one with
// NewRegistry instead of using these functions; the bench command uses no
// registry and opens each worker's pool directly with Open.
var defaultRegistry = NewRegistry(DefaultRegistryTuning(), DefaultTuning())

// Init allocates the default registry's pool-slot storage.
func Init() error { return defaultRegistry.Init() }

// Free releases the default registry.
func Free() error { return defaultRegistry.Free() }

// OpenDefault opens a pool against the default registry.
func OpenDefault(factory region.Factory, size int, policy Policy) (Handle, error) {
	return defaultRegistry.Open(factory, size, policy)
}

// CloseDefault closes a pool previously opened against the default
// registry.
func CloseDefault(h Handle) error { return defaultRegistry.Close(h) }

// NewAllocDefault allocates against a pool opened on the default registry.
func NewAllocDefault(h Handle, requested int) (AllocHandle, error) {
	return defaultRegistry.NewAlloc(h, requested)
}

// DelAllocDefault frees an allocation on the default registry.
func DelAllocDefault(h Handle, a AllocHandle) error {
	return defaultRegistry.DelAlloc(h, a)
}

// InspectDefault snapshots a pool opened on the default registry.
func InspectDefault(h Handle) ([]Segment, error) { return defaultRegistry.Inspect(h) }
