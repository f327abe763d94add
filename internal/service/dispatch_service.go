package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/umutkoseali/gymnotify/internal/channel"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/observability"
	"github.com/umutkoseali/gymnotify/internal/ratelimit"
	"github.com/umutkoseali/gymnotify/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minDispatchConcurrency = 1
	defaultSendTimeout     = 10 * time.Second
)

// DispatchService sends open drafts through channel transports. A batch
// never fails as a whole once dispatch starts: every draft resolves to its
// own sent or failed outcome.
type DispatchService struct {
	drafts      repository.DraftRepository
	members     repository.MemberRepository
	logs        repository.LogRepository
	registry    *channel.Registry
	rateLimiter ratelimit.RateLimiter
	metrics     *observability.Metrics
	logger      *zap.Logger
	concurrency int
	sendTimeout time.Duration
	now         func() time.Time
}

type OutcomeStatus string

const (
	OutcomeSent    OutcomeStatus = "sent"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

type SendOutcome struct {
	DraftID string
	Phone   string
	Status  OutcomeStatus
	Error   string
}

type SendReport struct {
	Outcomes []SendOutcome
	Sent     int
	Failed   int
	Skipped  int
}

func NewDispatchService(
	drafts repository.DraftRepository,
	members repository.MemberRepository,
	logs repository.LogRepository,
	registry *channel.Registry,
	rateLimiter ratelimit.RateLimiter,
	concurrency int,
	sendTimeout time.Duration,
	logger *zap.Logger,
) (*DispatchService, error) {
	if drafts == nil {
		return nil, fmt.Errorf("draft repository is required")
	}
	if members == nil {
		return nil, fmt.Errorf("member repository is required")
	}
	if logs == nil {
		return nil, fmt.Errorf("log repository is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("channel registry is required")
	}
	if rateLimiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if concurrency < minDispatchConcurrency {
		concurrency = minDispatchConcurrency
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DispatchService{
		drafts:      drafts,
		members:     members,
		logs:        logs,
		registry:    registry,
		rateLimiter: rateLimiter,
		logger:      logger,
		concurrency: concurrency,
		sendTimeout: sendTimeout,
		now:         time.Now,
	}, nil
}

func (s *DispatchService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// SendDrafts dispatches the named open drafts over the given channel.
// Identifiers that do not resolve to an open draft are dropped silently;
// a batch where nothing resolves is a validation error. A channel with no
// registered transport does not reject the batch: each draft fails
// individually when the transport lookup comes up empty.
func (s *DispatchService) SendDrafts(ctx context.Context, branchID string, ids []string, ch domain.Channel, sentBy *string) (*SendReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ch = domain.Channel(strings.ToLower(strings.TrimSpace(string(ch))))
	if ch == "" {
		return nil, fmt.Errorf("%w: channel is required", domain.ErrValidation)
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one draft id is required", domain.ErrValidation)
	}

	open, err := s.drafts.ListOpenByIDs(ctx, branchID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load drafts: %w", err)
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("%w: no open drafts matched the given ids", domain.ErrValidation)
	}

	outcomes := make([]SendOutcome, len(open))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range open {
		draft := open[i]
		g.Go(func() error {
			outcomes[i] = s.sendOne(groupCtx, &draft, ch, sentBy)
			return nil
		})
	}
	_ = g.Wait()

	report := &SendReport{Outcomes: outcomes}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case OutcomeSent:
			report.Sent++
		case OutcomeFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}

	s.logger.Info("dispatch batch finished",
		zap.String("branchId", branchID),
		zap.String("channel", ch.String()),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)

	return report, nil
}

func (s *DispatchService) sendOne(ctx context.Context, draft *domain.MessageDraft, ch domain.Channel, sentBy *string) SendOutcome {
	outcome := SendOutcome{DraftID: draft.ID, Phone: draft.Phone}

	claimed, err := s.drafts.ClaimForSending(ctx, draft.ID)
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = fmt.Sprintf("failed to claim draft: %v", err)
		return outcome
	}
	if !claimed {
		// Another dispatcher owns or already finished this draft.
		outcome.Status = OutcomeSkipped
		return outcome
	}

	transport, err := s.registry.Resolve(ch)
	if err != nil {
		// No transport was invoked, so no message log is written.
		s.failDraft(ctx, draft, ch, err.Error())
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	if err := s.rateLimiter.Wait(ctx, ch.String()); err != nil {
		s.failDraft(ctx, draft, ch, fmt.Sprintf("rate limiter wait failed: %v", err))
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	sendStart := s.now()
	result, sendErr := transport.Send(sendCtx, draft.Phone, draft.Message)
	if s.metrics != nil {
		s.metrics.ObserveSendDuration(ch.String(), s.now().Sub(sendStart))
	}

	sentAt := s.now().UTC()

	if sendErr != nil {
		s.failDraft(ctx, draft, ch, sendErr.Error())
		s.writeLog(ctx, draft, ch, domain.LogOutcomeFailed, result, sentAt, sentBy)
		if s.metrics != nil {
			s.metrics.IncMessageFailed(ch.String(), failureReason(sendErr))
		}
		outcome.Status = OutcomeFailed
		outcome.Error = sendErr.Error()
		return outcome
	}

	if err := s.drafts.MarkSent(ctx, draft.ID, ch, sentBy, sentAt); err != nil {
		s.logger.Error("failed to mark draft as sent",
			zap.String("draftId", draft.ID),
			zap.Error(err),
		)
	}
	s.writeLog(ctx, draft, ch, domain.LogOutcomeSent, result, sentAt, sentBy)

	if draft.Type == domain.MessageTypeExpiry {
		if err := s.members.MarkExpiryNotified(ctx, draft.MemberID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to mark member as expiry-notified",
				zap.String("memberId", draft.MemberID),
				zap.Error(err),
			)
		}
	}

	if s.metrics != nil {
		s.metrics.IncMessageSent(ch.String(), draft.Type.String())
	}

	outcome.Status = OutcomeSent
	return outcome
}

func (s *DispatchService) failDraft(ctx context.Context, draft *domain.MessageDraft, ch domain.Channel, reason string) {
	if err := s.drafts.MarkFailed(ctx, draft.ID, ch, reason); err != nil {
		s.logger.Error("failed to mark draft as failed",
			zap.String("draftId", draft.ID),
			zap.Error(err),
		)
	}
}

func (s *DispatchService) writeLog(
	ctx context.Context,
	draft *domain.MessageDraft,
	ch domain.Channel,
	logOutcome domain.LogOutcome,
	result *channel.SendResult,
	sentAt time.Time,
	sentBy *string,
) {
	entry := &domain.MessageLog{
		ID:       uuid.NewString(),
		MemberID: draft.MemberID,
		BranchID: draft.BranchID,
		Phone:    draft.Phone,
		Type:     draft.Type,
		Message:  draft.Message,
		Channel:  ch,
		Outcome:  logOutcome,
		SentAt:   sentAt,
		SentBy:   sentBy,
	}
	if result != nil {
		if result.ProviderID != "" {
			providerID := result.ProviderID
			entry.ProviderID = &providerID
		}
		if result.Body != "" {
			body := result.Body
			entry.ProviderResponse = &body
		}
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write message log",
			zap.String("draftId", draft.ID),
			zap.Error(err),
		)
	}
}

func failureReason(err error) string {
	var transportErr *channel.TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Transient {
			return "transient_error"
		}
		return "permanent_error"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "provider_error"
}
