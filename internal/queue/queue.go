// Package queue implements the bounded in-memory FIFO that sits between
// producer goroutines and the batch aggregator.
//
// # Admission policies
//
// A Queue is constructed with one of three admission policies:
//  1. drop-on-full: Offer never blocks; it reports rejection immediately.
//  2. blocking-with-timeout: Offer blocks up to a timeout, then falls
//     through to an unconditional block until space frees up.
//  3. unbounded-wait: Offer blocks until space frees up or the caller's
//     context is cancelled.
//
// Only one consumer goroutine is expected to call Poll/TryPoll; multiple
// producer goroutines may call Offer concurrently.
package queue

import (
	"context"
	"time"
)

// Queue is a bounded, channel-backed FIFO of encoded log records.
type Queue struct {
	ch           chan []byte
	dropWhenFull bool
	offerTimeout time.Duration
}

// New returns a Queue with the given capacity and admission policy.
// offerTimeout <= 0 means wait forever once the producer commits to blocking.
func New(capacity int, dropWhenFull bool, offerTimeout time.Duration) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		ch:           make(chan []byte, capacity),
		dropWhenFull: dropWhenFull,
		offerTimeout: offerTimeout,
	}
}

// Offer admits rec into the queue according to the configured policy.
// Empty records are treated as no-ops: accepted=true, err=nil, never enqueued.
//
// accepted=false with err=nil means the record was dropped under the
// drop-on-full policy. accepted=false with a non-nil err means the
// caller's context was cancelled while waiting for space.
func (q *Queue) Offer(ctx context.Context, rec []byte) (accepted bool, err error) {
	if len(rec) == 0 {
		return true, nil
	}

	if q.dropWhenFull {
		select {
		case q.ch <- rec:
			return true, nil
		default:
			return false, nil
		}
	}

	if q.offerTimeout > 0 {
		timer := time.NewTimer(q.offerTimeout)
		defer timer.Stop()
		select {
		case q.ch <- rec:
			return true, nil
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
			// Timed out: fall through to the unconditional block below.
		}
	}

	select {
	case q.ch <- rec:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Poll waits up to timeout for a record, returning ok=false on timeout.
func (q *Queue) Poll(timeout time.Duration) (rec []byte, ok bool) {
	if timeout <= 0 {
		select {
		case rec := <-q.ch:
			return rec, true
		default:
			return nil, false
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case rec := <-q.ch:
		return rec, true
	case <-timer.C:
		return nil, false
	}
}

// TryPoll returns a record without blocking, or ok=false if the queue is empty.
func (q *Queue) TryPoll() (rec []byte, ok bool) {
	select {
	case rec := <-q.ch:
		return rec, true
	default:
		return nil, false
	}
}

// Len reports the number of records currently queued. It is a snapshot;
// concurrent producers may change it immediately after it's read.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap reports the queue's configured capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}
