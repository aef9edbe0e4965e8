package testing

import (
	"testing"
	"time"
)

// AssertEventually asserts that a condition becomes true within a timeout
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}
		<-ticker.C
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within timeout: %s", message)
			return
		}
	}
}

// AssertNever asserts that a condition stays false for the whole window
func AssertNever(t *testing.T, condition func() bool, window time.Duration, message string) {
	t.Helper()
	deadline := time.Now().Add(window)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		if condition() {
			t.Fatalf("Condition unexpectedly met: %s", message)
			return
		}
		<-ticker.C
	}
}
