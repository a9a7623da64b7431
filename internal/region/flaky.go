package region

import "fmt"

// Flaky wraps another Factory and forces OUT_OF_MEMORY after a configured
// number of successful acquisitions. It lets a test drive a caller such as
// Pool.Open into its OUT_OF_MEMORY path without needing to actually exhaust
// host memory.
type Flaky struct {
	Underlying Factory
	// FailAfter is the number of Acquire calls that succeed before every
	// subsequent call fails. A negative value means never fail.
	FailAfter int

	calls int
}

func (f *Flaky) Acquire(size int) (Region, error) {
	f.calls++
	if f.FailAfter >= 0 && f.calls > f.FailAfter {
		return nil, fmt.Errorf("region: flaky factory: simulated exhaustion on call %d", f.calls)
	}
	return f.Underlying.Acquire(size)
}

// Calls reports how many times Acquire has been invoked.
func (f *Flaky) Calls() int { return f.calls }
