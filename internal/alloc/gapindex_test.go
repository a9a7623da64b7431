package alloc

import "testing"

func TestGapIndex_InsertKeepsSizeThenBaseOrder(t *testing.T) {
	bases := map[int]int{0: 100, 1: 10, 2: 50, 3: 10}
	baseOf := func(n int) int { return bases[n] }

	g := newGapIndex(2, 0.75, 2)
	g.insert(30, 0, baseOf) // size 30, base 100
	g.insert(10, 1, baseOf) // size 10, base 10
	g.insert(10, 3, baseOf) // size 10, base 10 -> tie, goes after node 1 since bases equal (stable-ish)
	g.insert(20, 2, baseOf) // size 20, base 50

	if g.len() != 4 {
		t.Fatalf("expected 4 entries, got %d", g.len())
	}

	wantSizes := []int{10, 10, 20, 30}
	for i, want := range wantSizes {
		if got := g.entries.At(i).size; got != want {
			t.Fatalf("entry %d: expected size %d, got %d", i, want, got)
		}
	}
}

func TestGapIndex_RemoveShiftsTail(t *testing.T) {
	baseOf := func(n int) int { return n }

	g := newGapIndex(2, 0.75, 2)
	g.insert(10, 0, baseOf)
	g.insert(20, 1, baseOf)
	g.insert(30, 2, baseOf)

	if !g.remove(1) {
		t.Fatal("expected remove to find node 1")
	}
	if g.len() != 2 {
		t.Fatalf("expected 2 entries after remove, got %d", g.len())
	}
	if g.entries.At(0).node != 0 || g.entries.At(1).node != 2 {
		t.Fatalf("unexpected entries after remove: %+v %+v", g.entries.At(0), g.entries.At(1))
	}

	if g.remove(1) {
		t.Fatal("expected second remove of the same node to fail")
	}
}

func TestGapIndex_LookupBestFitReturnsSmallestSufficient(t *testing.T) {
	baseOf := func(n int) int { return n }

	g := newGapIndex(2, 0.75, 2)
	g.insert(10, 0, baseOf)
	g.insert(20, 1, baseOf)
	g.insert(30, 2, baseOf)

	e, ok := g.lookupBestFit(15)
	if !ok || e.size != 20 || e.node != 1 {
		t.Fatalf("expected best fit (20, node 1), got %+v ok=%v", e, ok)
	}

	if _, ok := g.lookupBestFit(31); ok {
		t.Fatal("expected no fit for a request larger than every gap")
	}
}
