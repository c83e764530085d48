package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ServiceConfig holds configuration for the telemetry service
type ServiceConfig struct {
	BufferSize    int           // Queue capacity (default: 64)
	BatchSize     int           // Records per store write (default: 16)
	FlushInterval time.Duration // How often to flush (default: 5s)
	FlushTimeout  time.Duration // Deadline of a single store write (default: 10s)
	Logger        logrus.FieldLogger
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		BufferSize:    64,
		BatchSize:     16,
		FlushInterval: 5 * time.Second,
		FlushTimeout:  10 * time.Second,
	}
}

// Service queues records and writes them to a Store in the background
type Service struct {
	store         Store
	logger        logrus.FieldLogger
	batchSize     int
	flushInterval time.Duration
	flushTimeout  time.Duration

	records chan Record
	stopCh  chan struct{}
	doneCh  chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
	dropped   atomic.Int64
	written   atomic.Int64
}

// NewService creates a Service and starts its worker
func NewService(store Store, cfg ServiceConfig) *Service {
	defaults := DefaultServiceConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaults.BufferSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaults.FlushInterval
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = defaults.FlushTimeout
	}
	if cfg.Logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.WarnLevel)
		cfg.Logger = logger
	}

	s := &Service{
		store:         store,
		logger:        cfg.Logger.WithField("component", "telemetry"),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		flushTimeout:  cfg.FlushTimeout,
		records:       make(chan Record, cfg.BufferSize),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}

	go s.worker()

	return s
}

// CollectTelemetry queues r without blocking. Records arriving while the
// queue is full, or after Close, are dropped.
func (s *Service) CollectTelemetry(r Record) {
	if s.closed.Load() {
		s.dropped.Add(1)
		return
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Args != nil {
		r.Args = append([]string(nil), r.Args...)
	}

	select {
	case s.records <- r:
	default:
		s.dropped.Add(1)
		s.logger.WithField("command", r.CommandName).Warn("telemetry queue full, record dropped")
	}
}

// Dropped returns the number of records that were not queued
func (s *Service) Dropped() int64 {
	return s.dropped.Load()
}

// Written returns the number of records the store accepted
func (s *Service) Written() int64 {
	return s.written.Load()
}

// Close flushes queued records and stops the worker. It returns ctx.Err()
// if the flush does not finish in time; the worker still stops after its
// current write.
func (s *Service) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.stopCh)
	})

	select {
	case <-s.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker batches queued records and flushes them to the store
func (s *Service) worker() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	batch := make([]Record, 0, s.batchSize)
	for {
		select {
		case r := <-s.records:
			batch = append(batch, r)
			if len(batch) >= s.batchSize {
				s.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = batch[:0]
			}

		case <-s.stopCh:
			for {
				select {
				case r := <-s.records:
					batch = append(batch, r)
				default:
					s.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes batch to the store; failures are logged only
func (s *Service) flush(batch []Record) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
	defer cancel()

	if err := s.store.Save(ctx, batch); err != nil {
		s.logger.WithError(err).WithField("records", len(batch)).Warn("failed to store telemetry")
		return
	}

	s.written.Add(int64(len(batch)))
	s.logger.WithField("records", len(batch)).Debug("telemetry flushed")
}
