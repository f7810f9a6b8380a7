// Package appender implements the core of a log-shipping appender: an
// in-process, non-persistent pipeline that accepts pre-formatted log
// records from an application's logging framework and asynchronously
// uploads them, in compressed batches, to an S3-compatible object-storage
// bucket.
//
// Producers call Offer from arbitrary goroutines; a single background
// goroutine owned by the Sender batches, compresses, and uploads those
// records with retry. Producers never perform storage I/O and never
// observe a storage-layer error.
package appender

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/kzy77/logback-oss-appender/internal/aggregator"
	"github.com/kzy77/logback-oss-appender/internal/diagnostics"
	"github.com/kzy77/logback-oss-appender/internal/metrics"
	"github.com/kzy77/logback-oss-appender/internal/queue"
	"github.com/kzy77/logback-oss-appender/internal/ratelimit"
	"github.com/kzy77/logback-oss-appender/internal/retry"
)

// Uploader is the destination a Sender flushes batches to. Implementations
// set Content-Type and (when non-empty) Content-Encoding headers and PUT
// content at objectKey. See internal/ossuploader for the S3/OSS-backed
// implementation.
type Uploader = aggregator.Uploader

// Metrics is a point-in-time read of the sender's monotonic counters.
type Metrics = metrics.Snapshot

// ProcessSnapshot is a point-in-time process gauge (goroutines, memory, CPU).
type ProcessSnapshot = diagnostics.ProcessSnapshot

// State is one stage of the sender's lifecycle.
type State int32

const (
	// StateRunning is the initial state after construction.
	StateRunning State = iota
	// StateStopping is entered when Stop is called and the final drain begins.
	StateStopping
	// StateStopped is the terminal state, entered after the drain completes
	// or ShutdownTimeout elapses.
	StateStopped
)

// String renders the state for logging.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config is an immutable snapshot of the sender's tuning parameters,
// captured at construction and never mutated.
type Config struct {
	// Storage destination.
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string

	// Object naming.
	AppName         string
	ObjectKeyPrefix string

	// Queue admission.
	MaxQueueSize      int
	OfferTimeout      time.Duration
	DropWhenQueueFull bool

	// Batch triggers and payload shape.
	MaxBatchCount int
	MaxBatchBytes int
	FlushInterval time.Duration
	PollInterval  time.Duration
	Gzip          bool
	ContentType   string

	// Retry/backoff.
	MaxRetries        int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	NonRetriable      func(error) bool

	// Lifecycle.
	ShutdownTimeout      time.Duration
	RegisterShutdownHook bool

	// Throughput.
	UploadRateLimit float64

	// DiagnosticsCacheTTL controls how long Diagnostics() caches a process
	// snapshot. Zero selects a 1 second default.
	DiagnosticsCacheTTL time.Duration
}

// DefaultConfig returns the documented defaults. Endpoint, Bucket, and
// credentials have no sensible default and must be set by the caller.
func DefaultConfig() Config {
	return Config{
		AppName:              "app",
		ObjectKeyPrefix:      "logs/",
		MaxQueueSize:         200000,
		OfferTimeout:         500 * time.Millisecond,
		DropWhenQueueFull:    false,
		MaxBatchCount:        5000,
		MaxBatchBytes:        4 * 1024 * 1024,
		FlushInterval:        2 * time.Second,
		PollInterval:         200 * time.Millisecond,
		Gzip:                 true,
		ContentType:          "application/x-ndjson",
		MaxRetries:           5,
		InitialBackoff:       200 * time.Millisecond,
		BackoffMultiplier:    2.0,
		ShutdownTimeout:      5 * time.Second,
		RegisterShutdownHook: true,
		DiagnosticsCacheTTL:  time.Second,
	}
}

// Validate checks the fields required to construct a Sender.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("appender: Endpoint is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("appender: Bucket is required")
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("appender: MaxQueueSize must be positive")
	}
	if c.MaxBatchCount <= 0 {
		return fmt.Errorf("appender: MaxBatchCount must be positive")
	}
	if c.MaxBatchBytes <= 0 {
		return fmt.Errorf("appender: MaxBatchBytes must be positive")
	}
	return nil
}

// Sender owns the queue, background aggregator, and Uploader handle for
// one destination bucket.
type Sender struct {
	cfg      Config
	q        *queue.Queue
	agg      *aggregator.Aggregator
	uploader Uploader
	metrics  *metrics.Metrics
	diag     *diagnostics.Collector
	logger   *slog.Logger

	state   atomic.Int32
	started atomic.Bool

	startOnce sync.Once
	stopOnce  sync.Once
	stopping  chan struct{}
	done      chan struct{}

	sigCh chan os.Signal
}

// New constructs a Sender in the Running state. It does not start the
// background aggregator; call Start for that. logger defaults to
// slog.Default() when nil.
func New(cfg Config, uploader Uploader, logger *slog.Logger) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if uploader == nil {
		return nil, fmt.Errorf("appender: uploader is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ttl := cfg.DiagnosticsCacheTTL
	if ttl <= 0 {
		ttl = time.Second
	}

	q := queue.New(cfg.MaxQueueSize, cfg.DropWhenQueueFull, cfg.OfferTimeout)
	m := metrics.New()

	aggCfg := aggregator.Config{
		MaxBatchCount:   cfg.MaxBatchCount,
		MaxBatchBytes:   cfg.MaxBatchBytes,
		FlushInterval:   cfg.FlushInterval,
		PollInterval:    cfg.PollInterval,
		Gzip:            cfg.Gzip,
		ContentType:     cfg.ContentType,
		ObjectKeyPrefix: cfg.ObjectKeyPrefix,
		AppName:         cfg.AppName,
		Retry: retry.Config{
			MaxRetries:        cfg.MaxRetries,
			InitialBackoff:    cfg.InitialBackoff,
			BackoffMultiplier: cfg.BackoffMultiplier,
			NonRetriable:      cfg.NonRetriable,
		},
	}

	s := &Sender{
		cfg:      cfg,
		q:        q,
		uploader: uploader,
		metrics:  m,
		diag:     diagnostics.NewCollector(ttl),
		logger:   logger,
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.agg = aggregator.New(aggCfg, q, uploader, ratelimit.New(cfg.UploadRateLimit), m, logger)
	s.state.Store(int32(StateRunning))
	return s, nil
}

// Start spawns the background aggregator goroutine and, if configured,
// registers a SIGINT/SIGTERM hook that calls Stop. Start is idempotent.
func (s *Sender) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go func() {
			defer close(s.done)
			s.agg.Run(s.stopping)
		}()
		s.logger.Info("sender started", "bucket", s.cfg.Bucket, "app", s.cfg.AppName)

		if s.cfg.RegisterShutdownHook {
			s.sigCh = make(chan os.Signal, 1)
			signal.Notify(s.sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				if _, ok := <-s.sigCh; ok {
					s.logger.Info("received shutdown signal")
					s.Stop(context.Background())
				}
			}()
		}
	})
}

// Offer enqueues line for asynchronous upload. Empty/nil input is a no-op.
// The only errors returned are admission errors: a context cancelled while
// blocked, or (implicitly, via the returned nil with an incremented
// droppedCount) a full queue under the drop-on-full policy.
func (s *Sender) Offer(ctx context.Context, line []byte) error {
	accepted, err := s.q.Offer(ctx, line)
	if accepted {
		return nil
	}
	s.metrics.IncDropped()
	return err
}

// State reports the sender's current lifecycle stage.
func (s *Sender) State() State {
	return State(s.state.Load())
}

// Metrics returns the current counter values.
func (s *Sender) Metrics() Metrics {
	return s.metrics.Snapshot()
}

// Diagnostics returns a (possibly cached) process snapshot.
func (s *Sender) Diagnostics(ctx context.Context) ProcessSnapshot {
	return s.diag.Snapshot(ctx)
}

// Stop marks the sender Stopping, waits up to ShutdownTimeout for the
// aggregator to drain, then closes the Uploader and marks Stopped. Stop is
// idempotent and safe to call on a sender that was never started.
func (s *Sender) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.state.Store(int32(StateStopping))
		close(s.stopping)

		if s.sigCh != nil {
			signal.Stop(s.sigCh)
			close(s.sigCh)
		}

		if s.started.Load() {
			select {
			case <-s.done:
			case <-time.After(s.cfg.ShutdownTimeout):
				s.logger.Warn("shutdown timeout elapsed before aggregator drained", "timeout", s.cfg.ShutdownTimeout)
			case <-ctx.Done():
			}
		}

		if err := s.uploader.Close(); err != nil {
			s.logger.Warn("closing uploader", "error", err)
		}
		s.state.Store(int32(StateStopped))
		s.logger.Info("sender stopped")
	})
	return nil
}
