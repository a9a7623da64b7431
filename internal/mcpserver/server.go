// Package mcpserver exposes a sub-pool allocator registry's read-only
// observability surface over the Model Context Protocol, so an agent can
// inspect pool layout and counters without shelling out to the CLI. Opening,
// allocating, freeing, and closing pools all stay CLI/host operations; the
// MCP surface never mutates a pool.
package mcpserver

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/subpool/internal/alloc"
)

// Server wraps an *alloc.Registry with a read-only MCP tool surface. Pools
// are named and registered by the host (typically cmd/subpoolctl's serve
// command, opening one pool per configured preset) before Start is called;
// no tool call can open, allocate into, free from, or close a pool.
type Server struct {
	server   *mcp.Server
	registry *alloc.Registry
	logger   *log.Logger

	mu    sync.RWMutex
	pools map[string]alloc.Handle
}

// NewServer creates a Server over an already-populated registry. registry
// is expected to have its pools opened by the caller; Server never opens or
// closes pools itself.
func NewServer(registry *alloc.Registry) *Server {
	s := &Server{
		registry: registry,
		logger:   log.New(os.Stderr, "mcpserver: ", log.LstdFlags),
		pools:    make(map[string]alloc.Handle),
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "subpool-mcp-server",
		Version: "0.1.0",
	}, nil)
	s.registerTools()

	return s
}

// RegisterPool makes an already-open pool visible to pool_stats/pool_inspect
// under name. Re-registering a name replaces its handle, which lets a config
// reload swap in a freshly opened pool for the same preset name.
func (s *Server) RegisterPool(name string, h alloc.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[name] = h
}

// ForgetPool removes name from the set of pools visible over MCP. It does
// not close the pool; the caller owns that lifecycle.
func (s *Server) ForgetPool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pools, name)
}

// Start runs the server over stdio until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Printf("starting subpool MCP server")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) lookupPool(name string) (alloc.Handle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.pools[name]
	if !ok {
		return alloc.Handle{}, fmt.Errorf("unknown pool %q", name)
	}
	return h, nil
}
