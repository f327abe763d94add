package service

import (
	"context"
	"fmt"
	"time"

	"github.com/umutkoseali/gymnotify/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultSweepInterval = time.Minute
	defaultClaimMaxAge   = 5 * time.Minute
)

// ClaimSweeper periodically releases drafts stranded in the sending state.
// The sending status is a transient dispatch claim; a process that crashes
// between claiming a draft and marking it sent or failed leaves the row
// behind, and nothing else would ever pick it up again.
type ClaimSweeper struct {
	drafts   repository.DraftRepository
	logger   *zap.Logger
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

func NewClaimSweeper(
	drafts repository.DraftRepository,
	interval time.Duration,
	maxAge time.Duration,
	logger *zap.Logger,
) (*ClaimSweeper, error) {
	if drafts == nil {
		return nil, fmt.Errorf("draft repository is required")
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if maxAge <= 0 {
		maxAge = defaultClaimMaxAge
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ClaimSweeper{
		drafts:   drafts,
		logger:   logger,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}, nil
}

func (s *ClaimSweeper) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Sweep once on startup so claims orphaned by the previous process do
	// not wait for the first ticker edge.
	if err := s.sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("claim sweeper initial sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("claim sweeper sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *ClaimSweeper) sweep(ctx context.Context) error {
	cutoff := s.now().UTC().Add(-s.maxAge)

	released, err := s.drafts.ReleaseStaleClaims(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to release stale claims: %w", err)
	}
	if released > 0 {
		s.logger.Warn("released stale dispatch claims",
			zap.Int64("released", released),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
