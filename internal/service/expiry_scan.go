package service

import (
	"context"
	"fmt"
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/observability"
	"github.com/umutkoseali/gymnotify/internal/repository"
	"go.uber.org/zap"
)

// ExpiryScanJob runs the daily membership sweep across all branches:
// first draft expiry reminders for members inside the notification window,
// then flip overdue memberships to expired. Drafting before expiring keeps
// a member whose window closes today eligible for their reminder.
type ExpiryScanJob struct {
	messages *MessageService
	members  repository.MemberRepository
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

type ScanSummary struct {
	DraftsCreated  int
	DraftsSkipped  int
	MembersExpired int64
}

func NewExpiryScanJob(
	messages *MessageService,
	members repository.MemberRepository,
	logger *zap.Logger,
) (*ExpiryScanJob, error) {
	if messages == nil {
		return nil, fmt.Errorf("message service is required")
	}
	if members == nil {
		return nil, fmt.Errorf("member repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExpiryScanJob{
		messages: messages,
		members:  members,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (j *ExpiryScanJob) SetMetrics(metrics *observability.Metrics) {
	if j == nil {
		return
	}
	j.metrics = metrics
}

func (j *ExpiryScanJob) Run(ctx context.Context) (*ScanSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := j.now()
	summary := &ScanSummary{}

	report, err := j.messages.GenerateDrafts(ctx, GenerateParams{
		Type: domain.MessageTypeExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate expiry drafts: %w", err)
	}
	summary.DraftsCreated = len(report.Created)
	summary.DraftsSkipped = report.Skipped

	expired, err := j.members.ExpireOverdue(ctx, j.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to expire overdue memberships: %w", err)
	}
	summary.MembersExpired = expired

	if j.metrics != nil {
		j.metrics.AddMembersExpired(expired)
		j.metrics.ObserveScanDuration(j.now().Sub(start))
	}

	j.logger.Info("expiry scan finished",
		zap.Int("draftsCreated", summary.DraftsCreated),
		zap.Int("draftsSkipped", summary.DraftsSkipped),
		zap.Int64("membersExpired", summary.MembersExpired),
	)

	return summary, nil
}
