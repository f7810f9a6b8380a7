package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestOfferRejectsEmptyRecords(t *testing.T) {
	q := New(2, true, 0)
	accepted, err := q.Offer(context.Background(), nil)
	if !accepted || err != nil {
		t.Fatalf("want accepted=true err=nil, got accepted=%v err=%v", accepted, err)
	}
	if q.Len() != 0 {
		t.Fatalf("empty record must not be enqueued, len=%d", q.Len())
	}
}

func TestDropWhenFull(t *testing.T) {
	q := New(1, true, 0)
	ctx := context.Background()

	accepted, err := q.Offer(ctx, []byte("a"))
	if !accepted || err != nil {
		t.Fatalf("first offer should be accepted, got accepted=%v err=%v", accepted, err)
	}

	accepted, err = q.Offer(ctx, []byte("b"))
	if accepted || err != nil {
		t.Fatalf("second offer into full drop queue should be rejected without error, got accepted=%v err=%v", accepted, err)
	}
}

func TestBlockingWithTimeoutFallsThrough(t *testing.T) {
	q := New(1, false, 20*time.Millisecond)
	ctx := context.Background()

	if accepted, err := q.Offer(ctx, []byte("a")); !accepted || err != nil {
		t.Fatalf("first offer should be accepted, got accepted=%v err=%v", accepted, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		accepted, err := q.Offer(ctx, []byte("b"))
		if !accepted || err != nil {
			t.Errorf("second offer should eventually be accepted, got accepted=%v err=%v", accepted, err)
		}
	}()

	// Free up space after the timeout window has elapsed once.
	time.Sleep(50 * time.Millisecond)
	if _, ok := q.Poll(0); !ok {
		t.Fatal("expected a record to drain")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("offer never unblocked after space freed")
	}
}

func TestOfferHonorsContextCancellation(t *testing.T) {
	q := New(1, false, 0)
	ctx := context.Background()
	if _, err := q.Offer(ctx, []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := q.Offer(cancelCtx, []byte("b"))
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected context cancellation error")
		}
	case <-time.After(time.Second):
		t.Fatal("offer never returned after context cancellation")
	}
}

func TestFIFOOrderingWithinSingleProducer(t *testing.T) {
	q := New(10, false, 0)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := q.Offer(ctx, []byte{byte('0' + i)}); err != nil {
			t.Fatalf("offer %d: %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		rec, ok := q.Poll(time.Second)
		if !ok {
			t.Fatalf("poll %d: expected a record", i)
		}
		if rec[0] != byte('0'+i) {
			t.Fatalf("poll %d: want %q, got %q", i, byte('0'+i), rec[0])
		}
	}
}

func TestConcurrentProducersDoNotRace(t *testing.T) {
	q := New(1000, false, time.Second)
	var wg sync.WaitGroup
	for p := 0; p < 20; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := q.Offer(context.Background(), []byte("x")); err != nil {
					t.Errorf("offer: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	if q.Len() != 1000 {
		t.Fatalf("want 1000 queued records, got %d", q.Len())
	}
}
