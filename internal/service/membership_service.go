package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/repository"
	"go.uber.org/zap"
)

const codeGenerationAttempts = 3

type MembershipService struct {
	members  repository.MemberRepository
	payments repository.PaymentRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewMembershipService(
	members repository.MemberRepository,
	payments repository.PaymentRepository,
	logger *zap.Logger,
) (*MembershipService, error) {
	if members == nil {
		return nil, fmt.Errorf("member repository is required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MembershipService{
		members:  members,
		payments: payments,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Enroll registers a member: generates the branch-scoped code, derives the
// expiry date from the membership type and seeds the last payment date with
// the joining date.
func (s *MembershipService) Enroll(ctx context.Context, member *domain.Member) (*domain.Member, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if member == nil {
		return nil, fmt.Errorf("%w: member is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	if member.JoiningDate.IsZero() {
		member.JoiningDate = now
	}
	if !member.MembershipType.IsValid() {
		return nil, fmt.Errorf("%w: invalid membership type %q", domain.ErrValidation, member.MembershipType)
	}

	member.ID = uuid.NewString()
	member.ExpiryDate = domain.ComputeExpiry(member.JoiningDate, member.MembershipType)
	joined := member.JoiningDate
	member.LastPaymentDate = &joined
	member.Status = domain.MemberStatusActive
	member.ExpiryNotified = false

	// Codes are derived from a count, so two concurrent enrollments can
	// collide on the (branch_id, code) unique index. Recount and retry.
	err := retryOnUniqueViolation(func() error {
		code, err := s.nextMemberCode(ctx, member.BranchID, member.JoiningDate)
		if err != nil {
			return fmt.Errorf("failed to generate member code: %w", err)
		}
		member.Code = code
		if err := member.Validate(); err != nil {
			return err
		}
		return s.members.Create(ctx, member)
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.logger.Info("member enrolled",
		zap.String("memberId", member.ID),
		zap.String("code", member.Code),
		zap.String("branchId", member.BranchID),
	)

	return member, nil
}

func (s *MembershipService) GetMember(ctx context.Context, branchID, id string) (*domain.Member, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.members.GetByID(ctx, branchID, id)
}

func (s *MembershipService) ListMembers(ctx context.Context, branchID string, params repository.MemberListParams) ([]domain.Member, int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.members.List(ctx, branchID, params)
}

// RecordPayment persists a renewal payment and applies it to the member:
// expiry moved to validUntil, status back to active, expiry notification
// flag cleared so the next cycle can notify again.
func (s *MembershipService) RecordPayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: payment is required", domain.ErrValidation)
	}

	member, err := s.members.GetByID(ctx, payment.BranchID, payment.MemberID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if payment.ValidFrom.IsZero() {
		payment.ValidFrom = now
	}

	payment.ID = uuid.NewString()

	err = retryOnUniqueViolation(func() error {
		code, err := s.nextPaymentCode(ctx, payment.BranchID, now)
		if err != nil {
			return fmt.Errorf("failed to generate payment code: %w", err)
		}
		payment.Code = code
		if err := payment.Validate(); err != nil {
			return err
		}
		return s.payments.Create(ctx, payment)
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if err := s.members.ApplyPayment(ctx, member.ID, payment.ValidUntil, now); err != nil {
		return nil, fmt.Errorf("failed to apply payment to member: %w", err)
	}

	s.logger.Info("payment recorded",
		zap.String("paymentId", payment.ID),
		zap.String("memberId", member.ID),
		zap.Float64("amount", payment.Amount),
	)

	return payment, nil
}

func (s *MembershipService) GetPayment(ctx context.Context, branchID, id string) (*domain.Payment, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.payments.GetByID(ctx, branchID, id)
}

func (s *MembershipService) ListPayments(ctx context.Context, branchID string, params repository.PaymentListParams) ([]domain.Payment, int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.payments.List(ctx, branchID, params)
}

func (s *MembershipService) nextMemberCode(ctx context.Context, branchID string, joined time.Time) (string, error) {
	count, err := s.members.CountByBranch(ctx, branchID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("GYM-%d-%04d", joined.Year(), count+1), nil
}

// nextPaymentCode numbers payments within the calendar month of paidAt, so
// the sequence in PAY-YYYYMM-NNNN starts over every month.
func (s *MembershipService) nextPaymentCode(ctx context.Context, branchID string, paidAt time.Time) (string, error) {
	monthStart := time.Date(paidAt.Year(), paidAt.Month(), 1, 0, 0, 0, 0, time.UTC)
	count, err := s.payments.CountCreatedBetween(ctx, branchID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PAY-%s-%04d", paidAt.Format("200601"), count+1), nil
}

// retryOnUniqueViolation reruns fn while it keeps hitting the unique index,
// giving a count-based code generator a fresh count on each attempt.
func retryOnUniqueViolation(fn func() error) error {
	var err error
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		err = fn()
		if err == nil || !isUniqueViolationError(err) {
			return err
		}
	}
	return err
}
