package adapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
)

type fakeOfferer struct {
	mu    sync.Mutex
	lines [][]byte
}

func (f *fakeOfferer) Offer(ctx context.Context, line []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, append([]byte(nil), line...))
	return nil
}

func (f *fakeOfferer) snapshot() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.lines...)
}

func TestHandlerOffersOneJSONLinePerRecord(t *testing.T) {
	sender := &fakeOfferer{}
	h := New(sender, nil)
	logger := slog.New(h)

	logger.Info("hello", "key", "value")
	logger.Warn("world")

	lines := sender.snapshot()
	if len(lines) != 2 {
		t.Fatalf("got %d offered lines, want 2", len(lines))
	}

	for _, line := range lines {
		var decoded map[string]any
		if err := json.Unmarshal(line, &decoded); err != nil {
			t.Fatalf("offered line %q is not valid JSON: %v", line, err)
		}
		if decoded["msg"] == nil {
			t.Fatalf("decoded line missing msg field: %v", decoded)
		}
	}

	var first map[string]any
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first["msg"] != "hello" || first["key"] != "value" {
		t.Fatalf("first record = %v, want msg=hello key=value", first)
	}
}

func TestHandlerStripsTrailingNewline(t *testing.T) {
	sender := &fakeOfferer{}
	h := New(sender, nil)
	slog.New(h).Info("no newline please")

	lines := sender.snapshot()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0][len(lines[0])-1] == '\n' {
		t.Fatalf("offered line retains trailing newline: %q", lines[0])
	}
}

func TestWithAttrsAppliesToSubsequentRecords(t *testing.T) {
	sender := &fakeOfferer{}
	h := New(sender, nil)
	logger := slog.New(h).With("request_id", "abc123")
	logger.Info("handled request")

	lines := sender.snapshot()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	var decoded map[string]any
	if err := json.Unmarshal(lines[0], &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["request_id"] != "abc123" {
		t.Fatalf("decoded = %v, want request_id=abc123", decoded)
	}
}

func TestConcurrentHandleCallsDoNotCorruptOutput(t *testing.T) {
	sender := &fakeOfferer{}
	h := New(sender, nil)
	logger := slog.New(h)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Info("concurrent", "i", i)
		}(i)
	}
	wg.Wait()

	for _, line := range sender.snapshot() {
		var decoded map[string]any
		if err := json.Unmarshal(line, &decoded); err != nil {
			t.Fatalf("offered line %q is not valid JSON: %v", line, err)
		}
	}
	if got := len(sender.snapshot()); got != 20 {
		t.Fatalf("got %d offered lines, want 20", got)
	}
}
