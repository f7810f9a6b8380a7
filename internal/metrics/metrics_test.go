package metrics

import (
	"errors"
	"testing"
)

func TestSnapshotReflectsUpdates(t *testing.T) {
	m := New()
	m.IncDropped()
	m.IncDropped()
	m.AddUploadDropped(3)
	m.AddSent(10)
	m.SetLastError(errors.New("boom"))

	s := m.Snapshot()
	if s.DroppedCount != 2 {
		t.Errorf("DroppedCount = %d, want 2", s.DroppedCount)
	}
	if s.UploadDroppedCount != 3 {
		t.Errorf("UploadDroppedCount = %d, want 3", s.UploadDroppedCount)
	}
	if s.SentBatches != 1 {
		t.Errorf("SentBatches = %d, want 1", s.SentBatches)
	}
	if s.SentRecords != 10 {
		t.Errorf("SentRecords = %d, want 10", s.SentRecords)
	}
	if s.LastErrorMessage != "boom" {
		t.Errorf("LastErrorMessage = %q, want %q", s.LastErrorMessage, "boom")
	}
}

func TestSetLastErrorNilClears(t *testing.T) {
	m := New()
	m.SetLastError(errors.New("boom"))
	m.SetLastError(nil)
	if got := m.Snapshot().LastErrorMessage; got != "" {
		t.Errorf("LastErrorMessage = %q, want empty after clear", got)
	}
}

func TestAddUploadDroppedIgnoresNonPositive(t *testing.T) {
	m := New()
	m.AddUploadDropped(0)
	m.AddUploadDropped(-5)
	if got := m.Snapshot().UploadDroppedCount; got != 0 {
		t.Errorf("UploadDroppedCount = %d, want 0", got)
	}
}
