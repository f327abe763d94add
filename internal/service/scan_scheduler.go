package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultScanInterval = 24 * time.Hour

// ScanScheduler runs the expiry scan on a fixed interval until context
// cancellation. One panicking run must not take the loop down with it.
type ScanScheduler struct {
	job      *ExpiryScanJob
	logger   *zap.Logger
	interval time.Duration
}

func NewScanScheduler(job *ExpiryScanJob, interval time.Duration, logger *zap.Logger) (*ScanScheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("expiry scan job is required")
	}
	if interval <= 0 {
		interval = defaultScanInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ScanScheduler{
		job:      job,
		logger:   logger,
		interval: interval,
	}, nil
}

func (s *ScanScheduler) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial scan so an already-due sweep does not wait for the first ticker edge.
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *ScanScheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("expiry scan panicked", zap.Any("panic", r))
		}
	}()

	if _, err := s.job.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("expiry scan failed", zap.Error(err))
	}
}
