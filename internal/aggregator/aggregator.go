// Package aggregator implements the single background consumer that turns
// queued log records into uploaded batches, triggered on count, byte, or
// time thresholds.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"github.com/kzy77/logback-oss-appender/internal/compress"
	"github.com/kzy77/logback-oss-appender/internal/encode"
	"github.com/kzy77/logback-oss-appender/internal/metrics"
	"github.com/kzy77/logback-oss-appender/internal/objectkey"
	"github.com/kzy77/logback-oss-appender/internal/queue"
	"github.com/kzy77/logback-oss-appender/internal/ratelimit"
	"github.com/kzy77/logback-oss-appender/internal/retry"
)

// Uploader is the destination this aggregator flushes batches to.
type Uploader interface {
	Upload(ctx context.Context, objectKey string, content []byte, contentType string, contentEncoding string) error
	Close() error
}

// Config tunes batching, compression, and retry behavior.
type Config struct {
	MaxBatchCount int
	MaxBatchBytes int
	FlushInterval time.Duration
	PollInterval  time.Duration

	Gzip        bool
	ContentType string

	ObjectKeyPrefix string
	AppName         string

	Retry retry.Config
}

// Aggregator is the single consumer draining a Queue into an Uploader.
type Aggregator struct {
	cfg      Config
	q        *queue.Queue
	uploader Uploader
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
	keys     objectkey.Builder
	logger   *slog.Logger
}

// New constructs an Aggregator. logger defaults to slog.Default() when nil.
func New(cfg Config, q *queue.Queue, uploader Uploader, limiter *ratelimit.Limiter, m *metrics.Metrics, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		cfg:      cfg,
		q:        q,
		uploader: uploader,
		limiter:  limiter,
		metrics:  m,
		keys:     objectkey.Builder{Prefix: cfg.ObjectKeyPrefix, AppName: cfg.AppName},
		logger:   logger,
	}
}

// Run drains the queue until stopping is closed and the queue (plus any
// held-over record) is empty, then returns. It never returns early on
// upload errors; those are retried and, on terminal failure, dropped.
func (a *Aggregator) Run(stopping <-chan struct{}) {
	var batch [][]byte
	batchBytes := 0
	lastFlush := time.Now()

	var pending []byte
	hasPending := false

	for {
		stopped := isClosed(stopping)
		if stopped && !hasPending && a.q.Len() == 0 && len(batch) == 0 {
			return
		}

		var rec []byte
		var polled bool
		if hasPending {
			rec, polled = pending, true
			hasPending = false
		} else {
			rec, polled = a.q.Poll(a.cfg.PollInterval)
		}

		if polled {
			batch, batchBytes, pending, hasPending = a.admit(rec, batch, batchBytes)
			batch, batchBytes, pending, hasPending = a.drainMore(batch, batchBytes, pending, hasPending)
		}

		if a.shouldFlush(batch, batchBytes, lastFlush, stopped, hasPending) {
			a.flush(batch)
			batch = nil
			batchBytes = 0
			lastFlush = time.Now()
		}
	}
}

// admit appends rec to batch if it fits (or the batch is empty, admitting an
// oversized singleton), otherwise holds it in pending for the next batch.
func (a *Aggregator) admit(rec []byte, batch [][]byte, batchBytes int) ([][]byte, int, []byte, bool) {
	recBytes := len(rec) + 1
	if len(batch) == 0 || (len(batch) < a.cfg.MaxBatchCount && batchBytes+recBytes <= a.cfg.MaxBatchBytes) {
		return append(batch, rec), batchBytes + recBytes, nil, false
	}
	return batch, batchBytes, rec, true
}

// drainMore opportunistically pulls additional queued records without
// blocking, stopping as soon as either bound would be exceeded.
func (a *Aggregator) drainMore(batch [][]byte, batchBytes int, pending []byte, hasPending bool) ([][]byte, int, []byte, bool) {
	if hasPending {
		return batch, batchBytes, pending, hasPending
	}
	for len(batch) < a.cfg.MaxBatchCount {
		next, ok := a.q.TryPoll()
		if !ok {
			break
		}
		nextBytes := len(next) + 1
		if batchBytes+nextBytes > a.cfg.MaxBatchBytes {
			return batch, batchBytes, next, true
		}
		batch = append(batch, next)
		batchBytes += nextBytes
	}
	return batch, batchBytes, pending, hasPending
}

func (a *Aggregator) shouldFlush(batch [][]byte, batchBytes int, lastFlush time.Time, stopped bool, hasPending bool) bool {
	if len(batch) == 0 {
		return false
	}
	if time.Since(lastFlush) >= a.cfg.FlushInterval {
		return true
	}
	if len(batch) >= a.cfg.MaxBatchCount {
		return true
	}
	if batchBytes >= a.cfg.MaxBatchBytes {
		return true
	}
	if stopped && !hasPending && a.q.Len() == 0 {
		return true
	}
	return false
}

// flush encodes, optionally compresses, rate-limits, and uploads batch with
// retry. Terminal failure drops the batch; errors are never propagated to
// the caller, matching the insulated-producer contract.
func (a *Aggregator) flush(batch [][]byte) {
	if len(batch) == 0 {
		return
	}

	payload := encode.Batch(batch)
	contentEncoding := ""
	if a.cfg.Gzip {
		compressed, err := compress.Gzip(payload)
		if err != nil {
			a.logger.Warn("gzip compression failed, uploading uncompressed", "error", err, "records", len(batch))
			a.metrics.SetLastError(err)
		} else {
			payload = compressed
			contentEncoding = "gzip"
		}
	}

	key := a.keys.Build(contentEncoding == "gzip", time.Now())

	ctx := context.Background()
	if err := a.limiter.Wait(ctx); err != nil {
		a.logger.Warn("rate limiter wait interrupted", "error", err, "key", key)
	}

	err := retry.Do(ctx, a.cfg.Retry, func(attempt int, rerr error) {
		a.logger.Warn("batch upload attempt failed, retrying", "key", key, "attempt", attempt, "records", len(batch), "error", rerr)
		a.metrics.SetLastError(rerr)
	}, func(ctx context.Context) error {
		return a.uploader.Upload(ctx, key, payload, a.cfg.ContentType, contentEncoding)
	})

	if err != nil {
		a.logger.Error("batch upload failed permanently, dropping batch", "key", key, "records", len(batch), "error", err)
		a.metrics.SetLastError(err)
		a.metrics.AddUploadDropped(int64(len(batch)))
		return
	}

	a.metrics.AddSent(int64(len(batch)))
	a.logger.Debug("uploaded batch", "key", key, "records", len(batch), "bytes", len(payload), "gzip", contentEncoding == "gzip")
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
