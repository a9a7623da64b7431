package region

import "testing"

func TestHeapFactory_Acquire(t *testing.T) {
	r, err := HeapFactory{}.Acquire(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Bytes()) != 64 {
		t.Fatalf("expected 64 bytes, got %d", len(r.Bytes()))
	}
	r.Release()
}

func TestHeapFactory_RejectsNonPositiveSize(t *testing.T) {
	if _, err := (HeapFactory{}).Acquire(0); err == nil {
		t.Fatal("expected error for zero size")
	}
	if _, err := (HeapFactory{}).Acquire(-1); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestFlaky_FailsAfterConfiguredCalls(t *testing.T) {
	f := &Flaky{Underlying: HeapFactory{}, FailAfter: 2}

	if _, err := f.Acquire(8); err != nil {
		t.Fatalf("call 1: unexpected error: %v", err)
	}
	if _, err := f.Acquire(8); err != nil {
		t.Fatalf("call 2: unexpected error: %v", err)
	}
	if _, err := f.Acquire(8); err == nil {
		t.Fatal("call 3: expected simulated exhaustion")
	}
	if f.Calls() != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", f.Calls())
	}
}

func TestFlaky_NeverFailsWhenDisabled(t *testing.T) {
	f := &Flaky{Underlying: HeapFactory{}, FailAfter: -1}
	for i := 0; i < 10; i++ {
		if _, err := f.Acquire(8); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
}
