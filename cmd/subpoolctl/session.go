package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/standardbeagle/subpool/internal/alloc"
)

// sessionPool is the on-disk shape of one open pool: its size/policy at
// Open time and a current address-ordered segment snapshot. It carries
// nothing from the allocator's internals (no arena/gap-index state) — a
// fresh Pool is rebuilt from this snapshot via alloc.Restore on every
// invocation.
type sessionPool struct {
	Size     int             `json:"size"`
	Policy   string          `json:"policy"`
	Segments []alloc.Segment `json:"segments"`
}

// session is the CLI's cross-invocation bookkeeping. The allocator core
// itself is explicitly non-persistent (spec.md §1 Non-goals); this file is
// a CLI-frontend convenience so that "open" in one process and "alloc" in
// the next can refer to the same logical pool.
type session struct {
	NextID int                    `json:"next_id"`
	Pools  map[string]sessionPool `json:"pools"`
}

func newSession() *session {
	return &session{Pools: make(map[string]sessionPool)}
}

func loadSession(path string) (*session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}
	if s.Pools == nil {
		s.Pools = make(map[string]sessionPool)
	}
	return &s, nil
}

func (s *session) save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *session) addPool(p sessionPool) string {
	s.NextID++
	id := strconv.Itoa(s.NextID)
	s.Pools[id] = p
	return id
}

func (s *session) pool(id string) (sessionPool, error) {
	p, ok := s.Pools[id]
	if !ok {
		return sessionPool{}, fmt.Errorf("no open pool with id %q (known to this session file)", id)
	}
	return p, nil
}

// restore rebuilds a live *alloc.Pool from a session pool's snapshot.
func (p sessionPool) restore() (*alloc.Pool, error) {
	policy, ok := alloc.ParsePolicy(p.Policy)
	if !ok {
		return nil, fmt.Errorf("unknown policy %q recorded in session", p.Policy)
	}
	return alloc.Restore(defaultFactory, policy, alloc.DefaultTuning(), p.Segments)
}

func statsOf(segments []alloc.Segment) (totalSize, allocSize, numAllocs, numGaps int) {
	for _, s := range segments {
		totalSize += s.Size
		if s.Allocated {
			allocSize += s.Size
			numAllocs++
		} else {
			numGaps++
		}
	}
	return
}
