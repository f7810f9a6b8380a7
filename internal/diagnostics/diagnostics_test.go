package diagnostics

import (
	"context"
	"testing"
	"time"
)

func TestSnapshotReportsGoroutineCount(t *testing.T) {
	c := NewCollector(time.Minute)
	snap := c.Snapshot(context.Background())
	if snap.Goroutines <= 0 {
		t.Fatalf("Goroutines = %d, want > 0", snap.Goroutines)
	}
}

func TestSnapshotIsCachedWithinTTL(t *testing.T) {
	c := NewCollector(time.Hour)
	first := c.Snapshot(context.Background())
	// Spin up extra goroutines; a cached snapshot must not reflect them.
	stop := make(chan struct{})
	defer close(stop)
	for i := 0; i < 5; i++ {
		go func() { <-stop }()
	}
	time.Sleep(10 * time.Millisecond)
	second := c.Snapshot(context.Background())
	if second.Goroutines != first.Goroutines {
		t.Fatalf("cached snapshot changed: first=%d second=%d", first.Goroutines, second.Goroutines)
	}
}

func TestSnapshotRefreshesAfterTTLExpires(t *testing.T) {
	c := NewCollector(time.Millisecond)
	first := c.Snapshot(context.Background())
	time.Sleep(5 * time.Millisecond)
	stop := make(chan struct{})
	defer close(stop)
	for i := 0; i < 5; i++ {
		go func() { <-stop }()
	}
	time.Sleep(5 * time.Millisecond)
	second := c.Snapshot(context.Background())
	if second.Goroutines <= first.Goroutines {
		t.Fatalf("expected a refreshed snapshot with more goroutines, first=%d second=%d", first.Goroutines, second.Goroutines)
	}
}
