package dynarray

import "testing"

func TestNew_MinimumCapacity(t *testing.T) {
	a := New[int](0, 0.75, 2)
	if a.Capacity() != 1 {
		t.Fatalf("expected capacity floor of 1, got %d", a.Capacity())
	}
}

func TestGrowIfNeeded_PreservesValues(t *testing.T) {
	a := New[int](4, 0.75, 2)
	for i := 0; i < 4; i++ {
		a.Set(i, i*10)
	}

	// 3/4 = 0.75 is not strictly greater than the fill factor, so no growth yet.
	if a.GrowIfNeeded(3) {
		t.Fatal("did not expect growth at exactly the fill factor")
	}

	// 4/4 = 1.0 > 0.75, must grow before the 5th element is appended.
	if !a.GrowIfNeeded(4) {
		t.Fatal("expected growth when pending use exceeds fill factor")
	}
	if a.Capacity() != 8 {
		t.Fatalf("expected capacity to double to 8, got %d", a.Capacity())
	}
	for i := 0; i < 4; i++ {
		if got := a.At(i); got != i*10 {
			t.Fatalf("index %d: expected %d, got %d", i, i*10, got)
		}
	}
}

func TestGrowIfNeeded_NeverShrinks(t *testing.T) {
	a := New[int](10, 0.75, 2)
	if a.GrowIfNeeded(1) {
		t.Fatal("did not expect growth well under the fill factor")
	}
	if a.Capacity() != 10 {
		t.Fatalf("capacity changed without growth: %d", a.Capacity())
	}
}

func TestGrowIfNeeded_DegenerateGrowthFactor(t *testing.T) {
	// A growth factor that would compute <= current capacity must still
	// make forward progress (spec.md §4.1: growth is the only mutator).
	a := New[int](1, 0.1, 1)
	if !a.GrowIfNeeded(1) {
		t.Fatal("expected growth")
	}
	if a.Capacity() <= 1 {
		t.Fatalf("expected capacity to increase past 1, got %d", a.Capacity())
	}
}
