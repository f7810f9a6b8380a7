package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDisabledLimiterNeverBlocks(t *testing.T) {
	l := New(0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait on disabled limiter: %v", err)
		}
	}
}

func TestNilLimiterNeverBlocks(t *testing.T) {
	var l *Limiter
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait on nil limiter: %v", err)
	}
}

func TestEnabledLimiterThrottles(t *testing.T) {
	l := New(10) // burst 10
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
	start := time.Now()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait after burst exhausted: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("expected Wait to block once burst is exhausted, elapsed=%v", elapsed)
	}
}
