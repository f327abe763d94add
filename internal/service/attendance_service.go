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

// AttendanceService tracks gym visits. Check-in opens a visit, check-out
// closes it; a member can hold at most one open visit per day.
type AttendanceService struct {
	attendance repository.AttendanceRepository
	members    repository.MemberRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewAttendanceService(
	attendance repository.AttendanceRepository,
	members repository.MemberRepository,
	logger *zap.Logger,
) (*AttendanceService, error) {
	if attendance == nil {
		return nil, fmt.Errorf("attendance repository is required")
	}
	if members == nil {
		return nil, fmt.Errorf("member repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AttendanceService{
		attendance: attendance,
		members:    members,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// CheckIn opens a visit for an active member. A member already holding an
// open visit today cannot check in again.
func (s *AttendanceService) CheckIn(ctx context.Context, branchID, memberID string, remarks, recordedBy *string) (*domain.Attendance, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	member, err := s.members.GetByID(ctx, branchID, memberID)
	if err != nil {
		return nil, err
	}
	if member.Status != domain.MemberStatusActive {
		return nil, fmt.Errorf("%w: member status is %s, only active members can check in", domain.ErrValidation, member.Status)
	}

	now := s.now().UTC()
	_, err = s.attendance.FindOpenVisit(ctx, branchID, memberID, startOfDay(now))
	if err == nil {
		return nil, fmt.Errorf("%w: member is already checked in", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up open visit: %w", err)
	}

	visit := &domain.Attendance{
		ID:         uuid.NewString(),
		MemberID:   memberID,
		BranchID:   branchID,
		CheckInAt:  now,
		Remarks:    remarks,
		RecordedBy: recordedBy,
	}
	if err := visit.Validate(); err != nil {
		return nil, err
	}

	if err := s.attendance.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}

	s.logger.Info("member checked in",
		zap.String("attendanceId", visit.ID),
		zap.String("memberId", memberID),
		zap.String("branchId", branchID),
	)

	return visit, nil
}

// CheckOut closes an open visit. Closing a visit that is already closed is
// a conflict, not an update.
func (s *AttendanceService) CheckOut(ctx context.Context, branchID, id string) (*domain.Attendance, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := s.now().UTC()
	closed, err := s.attendance.CloseVisit(ctx, branchID, id, now)
	if err != nil {
		return nil, fmt.Errorf("failed to close visit: %w", err)
	}
	if !closed {
		// Distinguish a missing visit from one already checked out.
		if _, err := s.attendance.GetByID(ctx, branchID, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: member is already checked out", domain.ErrConflict)
	}

	visit, err := s.attendance.GetByID(ctx, branchID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("member checked out",
		zap.String("attendanceId", visit.ID),
		zap.String("memberId", visit.MemberID),
	)

	return visit, nil
}

func (s *AttendanceService) ListVisits(ctx context.Context, branchID string, params repository.AttendanceListParams) ([]domain.Attendance, int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.attendance.List(ctx, branchID, params)
}

// ListToday returns the branch's visits since midnight UTC, most recent
// check-in first.
func (s *AttendanceService) ListToday(ctx context.Context, branchID string, page, pageSize int) ([]domain.Attendance, int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	from := startOfDay(s.now().UTC())
	return s.attendance.List(ctx, branchID, repository.AttendanceListParams{
		From:     &from,
		Page:     page,
		PageSize: pageSize,
	})
}
