// Package testhelpers provides shared test utilities for the sub-pool
// allocator: goroutine-leak checks for the bench fan-out, and a condition
// poller for asynchronous behavior like config hot-reload.
package testhelpers

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

// WaitFor polls condition until it returns true or timeout elapses.
// Usage:
//
//	testhelpers.WaitFor(t, func() bool {
//	    return watcher.Reloads() > 0
//	}, 2*time.Second)
func WaitFor(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v", timeout)
			return
		}
	}
}

// AssertNoLeaks verifies no goroutine leaks occurred during the test,
// ignoring goroutines already running when the test started. Used after
// a bench run to confirm every per-preset goroutine actually exited.
func AssertNoLeaks(t *testing.T) {
	t.Helper()
	if err := goleak.Find(goleak.IgnoreCurrent()); err != nil {
		t.Errorf("goroutine leak detected: %v", err)
	}
}
