package service

import (
	"context"
	"fmt"
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/repository"
)

const (
	expiryLookaheadDays  = 7
	welcomeLookbackHours = 24
	paymentOverdueDays   = 30
)

// EligibilityResolver selects the members a message type applies to.
// Offer and custom messages are manual-only: they never auto-select, so
// callers must supply explicit member ids for them.
type EligibilityResolver struct {
	members repository.MemberRepository
	now     func() time.Time
}

func NewEligibilityResolver(members repository.MemberRepository) (*EligibilityResolver, error) {
	if members == nil {
		return nil, fmt.Errorf("member repository is required")
	}
	return &EligibilityResolver{members: members, now: time.Now}, nil
}

// SelectCandidates returns the members eligible for the given message type.
// An empty branchID spans all branches.
func (r *EligibilityResolver) SelectCandidates(ctx context.Context, branchID string, messageType domain.MessageType) ([]domain.Member, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := r.now().UTC()

	switch messageType {
	case domain.MessageTypeExpiry:
		from := startOfDay(now)
		to := endOfDay(now.AddDate(0, 0, expiryLookaheadDays))
		return r.members.FindExpiring(ctx, branchID, from, to)
	case domain.MessageTypeWelcome:
		return r.members.FindJoinedSince(ctx, branchID, now.Add(-welcomeLookbackHours*time.Hour))
	case domain.MessageTypePayment:
		return r.members.FindPaymentOverdue(ctx, branchID, now.AddDate(0, 0, -paymentOverdueDays))
	case domain.MessageTypeOffer, domain.MessageTypeCustom:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: invalid message type %q", domain.ErrValidation, messageType)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
