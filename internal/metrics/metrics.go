// Package metrics holds the monotonic counters published by the sender.
//
// Counters are atomic.Int64 and lastErrorMessage is an atomic.Pointer[string]
// so producers and the aggregator can update them without a shared lock on
// the hot path.
package metrics

import "sync/atomic"

// Metrics is the process-wide counter set for one Sender.
type Metrics struct {
	dropped       atomic.Int64
	uploadDropped atomic.Int64
	sentBatches   atomic.Int64
	sentRecords   atomic.Int64
	lastError     atomic.Pointer[string]
}

// New returns a zeroed Metrics.
func New() *Metrics {
	return &Metrics{}
}

// IncDropped records a producer-side admission drop.
func (m *Metrics) IncDropped() {
	m.dropped.Add(1)
}

// AddUploadDropped records n records lost to a terminal upload failure.
func (m *Metrics) AddUploadDropped(n int64) {
	if n <= 0 {
		return
	}
	m.uploadDropped.Add(n)
}

// AddSent records one successfully uploaded batch of n records.
func (m *Metrics) AddSent(n int64) {
	m.sentBatches.Add(1)
	m.sentRecords.Add(n)
}

// SetLastError publishes the most recent error message, or clears it when
// err is nil.
func (m *Metrics) SetLastError(err error) {
	if err == nil {
		m.lastError.Store(nil)
		return
	}
	msg := err.Error()
	m.lastError.Store(&msg)
}

// Snapshot is a point-in-time read of the counters.
type Snapshot struct {
	DroppedCount       int64
	UploadDroppedCount int64
	SentBatches        int64
	SentRecords        int64
	LastErrorMessage   string
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		DroppedCount:       m.dropped.Load(),
		UploadDroppedCount: m.uploadDropped.Load(),
		SentBatches:        m.sentBatches.Load(),
		SentRecords:        m.sentRecords.Load(),
	}
	if p := m.lastError.Load(); p != nil {
		s.LastErrorMessage = *p
	}
	return s
}
