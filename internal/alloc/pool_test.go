package alloc

import (
	"testing"

	"github.com/standardbeagle/subpool/internal/region"
)

func testTuning() Tuning {
	// Small init capacities exercise growth paths inside the scenarios below.
	return Tuning{
		NodeArenaInitCapacity: 2,
		NodeArenaFillFactor:   0.75,
		NodeArenaGrowthFactor: 2,
		GapIndexInitCapacity:  2,
		GapIndexFillFactor:    0.75,
		GapIndexGrowthFactor:  2,
	}
}

func mustOpen(t *testing.T, size int, policy Policy) *Pool {
	t.Helper()
	p, err := Open(region.HeapFactory{}, size, policy, testTuning())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return p
}

// S1: whole-pool allocate/free.
func TestScenario_WholePoolAllocateFree(t *testing.T) {
	p := mustOpen(t, 1000, BestFit)

	h, err := p.Allocate(1000)
	if err != nil || !h.Valid() {
		t.Fatalf("allocate 1000: h=%+v err=%v", h, err)
	}
	st := p.Stats()
	if st.NumGaps != 0 || st.NumAllocs != 1 || st.AllocSize != 1000 {
		t.Fatalf("unexpected stats after full allocate: %+v", st)
	}

	if err := p.Free(h); err != nil {
		t.Fatalf("free: %v", err)
	}
	st = p.Stats()
	if st.NumGaps != 1 || st.NumAllocs != 0 || st.AllocSize != 0 {
		t.Fatalf("unexpected stats after free: %+v", st)
	}

	if !p.Closeable() {
		t.Fatal("expected pool to be closeable after returning to one whole gap")
	}
}

// S2: split and merge.
func TestScenario_SplitAndMerge(t *testing.T) {
	p := mustOpen(t, 100, FirstFit)

	a, err := p.Allocate(30)
	requireValid(t, a, err, "a")
	b, err := p.Allocate(20)
	requireValid(t, b, err, "b")
	c, err := p.Allocate(50)
	requireValid(t, c, err, "c")

	assertLayout(t, p, []Segment{{30, true}, {20, true}, {50, true}})

	if err := p.Free(b); err != nil {
		t.Fatalf("free b: %v", err)
	}
	assertLayout(t, p, []Segment{{30, true}, {20, false}, {50, true}})

	if err := p.Free(a); err != nil {
		t.Fatalf("free a: %v", err)
	}
	assertLayout(t, p, []Segment{{50, false}, {50, true}})

	if err := p.Free(c); err != nil {
		t.Fatalf("free c: %v", err)
	}
	assertLayout(t, p, []Segment{{100, false}})
}

// S3: best-fit chooses the smallest sufficient gap.
func TestScenario_BestFitChoosesSmallestSufficient(t *testing.T) {
	p := mustOpen(t, 100, BestFit)

	a, _ := p.Allocate(40)
	b, _ := p.Allocate(20)
	c, _ := p.Allocate(10)
	d, _ := p.Allocate(30)
	for name, h := range map[string]AllocHandle{"a": a, "b": b, "c": c, "d": d} {
		if !h.Valid() {
			t.Fatalf("setup allocation %s failed", name)
		}
	}

	if err := p.Free(a); err != nil {
		t.Fatalf("free a: %v", err)
	}
	if err := p.Free(c); err != nil {
		t.Fatalf("free c: %v", err)
	}

	e, err := p.Allocate(10)
	if err != nil || !e.Valid() {
		t.Fatalf("allocate 10: %+v %v", e, err)
	}
	if e.node != c.node {
		t.Fatalf("expected best-fit to reuse the size-10 gap at node %d, got node %d", c.node, e.node)
	}
}

// S4: first-fit chooses the lowest-address sufficient gap.
func TestScenario_FirstFitChoosesLowestAddress(t *testing.T) {
	p := mustOpen(t, 100, FirstFit)

	a, _ := p.Allocate(40)
	_, _ = p.Allocate(20)
	c, _ := p.Allocate(10)
	_, _ = p.Allocate(30)

	if err := p.Free(a); err != nil {
		t.Fatalf("free a: %v", err)
	}
	if err := p.Free(c); err != nil {
		t.Fatalf("free c: %v", err)
	}

	e, err := p.Allocate(10)
	if err != nil || !e.Valid() {
		t.Fatalf("allocate 10: %+v %v", e, err)
	}
	if e.node != a.node {
		t.Fatalf("expected first-fit to split the size-40 gap at node %d, got node %d", a.node, e.node)
	}

	layout := p.Inspect()
	if len(layout) < 2 || layout[0].Size != 10 || !layout[0].Allocated {
		t.Fatalf("expected the new allocation to land at the front: %+v", layout)
	}
	if layout[1].Size != 30 || layout[1].Allocated {
		t.Fatalf("expected a 30-byte gap left behind: %+v", layout)
	}
}

// S5: exhaustion.
func TestScenario_Exhaustion(t *testing.T) {
	p := mustOpen(t, 16, FirstFit)

	h, err := p.Allocate(16)
	requireValid(t, h, err, "alloc(16)")

	no, err := p.Allocate(1)
	if err != nil || no.Valid() {
		t.Fatalf("expected null on exhaustion, got %+v %v", no, err)
	}

	if err := p.Free(h); err != nil {
		t.Fatalf("free: %v", err)
	}

	h1, err := p.Allocate(8)
	requireValid(t, h1, err, "alloc(8) #1")
	h2, err := p.Allocate(8)
	requireValid(t, h2, err, "alloc(8) #2")

	no2, err := p.Allocate(1)
	if err != nil || no2.Valid() {
		t.Fatalf("expected null on exhaustion, got %+v %v", no2, err)
	}
}

// L1: allocate then immediately free returns to the same shape.
func TestLaw_RoundTrip(t *testing.T) {
	p := mustOpen(t, 256, BestFit)
	before := p.Stats()

	h, err := p.Allocate(64)
	requireValid(t, h, err, "alloc")
	if err := p.Free(h); err != nil {
		t.Fatalf("free: %v", err)
	}

	after := p.Stats()
	if before.NumGaps != after.NumGaps || before.NumAllocs != after.NumAllocs {
		t.Fatalf("round-trip changed shape: before=%+v after=%+v", before, after)
	}
}

func requireValid(t *testing.T, h AllocHandle, err error, label string) {
	t.Helper()
	if err != nil || !h.Valid() {
		t.Fatalf("%s: expected a valid handle, got %+v err=%v", label, h, err)
	}
}

func assertLayout(t *testing.T, p *Pool, want []Segment) {
	t.Helper()
	got := p.Inspect()
	if len(got) != len(want) {
		t.Fatalf("layout length mismatch: got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("layout[%d]: got %+v, want %+v (full: got=%+v want=%+v)", i, got[i], want[i], got, want)
		}
	}
}
