// Copyright (C) 2017 ScyllaDB

package testutils

import (
	"testing"
	"time"
)

// WaitCond fails the test when cond does not become true within wait,
// polling it every interval. A non positive wait checks cond exactly once.
func WaitCond(t *testing.T, cond func() bool, interval, wait time.Duration) {
	t.Helper()

	if wait <= 0 {
		if !cond() {
			t.Fatal("condition not met")
		}
		return
	}

	deadline := time.After(wait)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("condition not met in %s", wait)
		case <-ticker.C:
		}
	}
}
