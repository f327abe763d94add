package service

import (
	"context"
	"time"

	"github.com/umutkoseali/gymnotify/internal/channel"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/repository"
)

type fakeMemberRepo struct {
	createFn             func(ctx context.Context, m *domain.Member) error
	getByIDFn            func(ctx context.Context, branchID, id string) (*domain.Member, error)
	getByIDsFn           func(ctx context.Context, branchID string, ids []string) ([]domain.Member, error)
	listFn               func(ctx context.Context, branchID string, params repository.MemberListParams) ([]domain.Member, int64, error)
	countByBranchFn      func(ctx context.Context, branchID string) (int64, error)
	findExpiringFn       func(ctx context.Context, branchID string, from, to time.Time) ([]domain.Member, error)
	findJoinedSinceFn    func(ctx context.Context, branchID string, since time.Time) ([]domain.Member, error)
	findPaymentOverdueFn func(ctx context.Context, branchID string, before time.Time) ([]domain.Member, error)
	applyPaymentFn       func(ctx context.Context, id string, validUntil, paidAt time.Time) error
	expireOverdueFn      func(ctx context.Context, now time.Time) (int64, error)
	markExpiryNotifiedFn func(ctx context.Context, id string) error
}

func (f *fakeMemberRepo) Create(ctx context.Context, m *domain.Member) error {
	if f.createFn != nil {
		return f.createFn(ctx, m)
	}
	return nil
}

func (f *fakeMemberRepo) GetByID(ctx context.Context, branchID, id string) (*domain.Member, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, branchID, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMemberRepo) GetByIDs(ctx context.Context, branchID string, ids []string) ([]domain.Member, error) {
	if f.getByIDsFn != nil {
		return f.getByIDsFn(ctx, branchID, ids)
	}
	return nil, nil
}

func (f *fakeMemberRepo) List(ctx context.Context, branchID string, params repository.MemberListParams) ([]domain.Member, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, branchID, params)
	}
	return nil, 0, nil
}

func (f *fakeMemberRepo) CountByBranch(ctx context.Context, branchID string) (int64, error) {
	if f.countByBranchFn != nil {
		return f.countByBranchFn(ctx, branchID)
	}
	return 0, nil
}

func (f *fakeMemberRepo) FindExpiring(ctx context.Context, branchID string, from, to time.Time) ([]domain.Member, error) {
	if f.findExpiringFn != nil {
		return f.findExpiringFn(ctx, branchID, from, to)
	}
	return nil, nil
}

func (f *fakeMemberRepo) FindJoinedSince(ctx context.Context, branchID string, since time.Time) ([]domain.Member, error) {
	if f.findJoinedSinceFn != nil {
		return f.findJoinedSinceFn(ctx, branchID, since)
	}
	return nil, nil
}

func (f *fakeMemberRepo) FindPaymentOverdue(ctx context.Context, branchID string, before time.Time) ([]domain.Member, error) {
	if f.findPaymentOverdueFn != nil {
		return f.findPaymentOverdueFn(ctx, branchID, before)
	}
	return nil, nil
}

func (f *fakeMemberRepo) ApplyPayment(ctx context.Context, id string, validUntil, paidAt time.Time) error {
	if f.applyPaymentFn != nil {
		return f.applyPaymentFn(ctx, id, validUntil, paidAt)
	}
	return nil
}

func (f *fakeMemberRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	if f.expireOverdueFn != nil {
		return f.expireOverdueFn(ctx, now)
	}
	return 0, nil
}

func (f *fakeMemberRepo) MarkExpiryNotified(ctx context.Context, id string) error {
	if f.markExpiryNotifiedFn != nil {
		return f.markExpiryNotifiedFn(ctx, id)
	}
	return nil
}

type fakeDraftRepo struct {
	createFn          func(ctx context.Context, d *domain.MessageDraft) error
	getByIDFn         func(ctx context.Context, branchID, id string) (*domain.MessageDraft, error)
	listFn            func(ctx context.Context, branchID string, params repository.DraftListParams) ([]domain.MessageDraft, int64, error)
	listOpenByIDsFn   func(ctx context.Context, branchID string, ids []string) ([]domain.MessageDraft, error)
	updateMessageFn   func(ctx context.Context, branchID, id, message string) error
	claimForSendingFn func(ctx context.Context, id string) (bool, error)
	markSentFn        func(ctx context.Context, id string, channel domain.Channel, sentBy *string, sentAt time.Time) error
	markFailedFn      func(ctx context.Context, id string, channel domain.Channel, reason string) error
	releaseStaleFn    func(ctx context.Context, before time.Time) (int64, error)
	deleteOpenFn      func(ctx context.Context, branchID string, ids []string) (int64, error)
}

func (f *fakeDraftRepo) Create(ctx context.Context, d *domain.MessageDraft) error {
	if f.createFn != nil {
		return f.createFn(ctx, d)
	}
	return nil
}

func (f *fakeDraftRepo) GetByID(ctx context.Context, branchID, id string) (*domain.MessageDraft, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, branchID, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDraftRepo) List(ctx context.Context, branchID string, params repository.DraftListParams) ([]domain.MessageDraft, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, branchID, params)
	}
	return nil, 0, nil
}

func (f *fakeDraftRepo) ListOpenByIDs(ctx context.Context, branchID string, ids []string) ([]domain.MessageDraft, error) {
	if f.listOpenByIDsFn != nil {
		return f.listOpenByIDsFn(ctx, branchID, ids)
	}
	return nil, nil
}

func (f *fakeDraftRepo) UpdateMessage(ctx context.Context, branchID, id, message string) error {
	if f.updateMessageFn != nil {
		return f.updateMessageFn(ctx, branchID, id, message)
	}
	return nil
}

func (f *fakeDraftRepo) ClaimForSending(ctx context.Context, id string) (bool, error) {
	if f.claimForSendingFn != nil {
		return f.claimForSendingFn(ctx, id)
	}
	return true, nil
}

func (f *fakeDraftRepo) MarkSent(ctx context.Context, id string, channel domain.Channel, sentBy *string, sentAt time.Time) error {
	if f.markSentFn != nil {
		return f.markSentFn(ctx, id, channel, sentBy, sentAt)
	}
	return nil
}

func (f *fakeDraftRepo) MarkFailed(ctx context.Context, id string, channel domain.Channel, reason string) error {
	if f.markFailedFn != nil {
		return f.markFailedFn(ctx, id, channel, reason)
	}
	return nil
}

func (f *fakeDraftRepo) ReleaseStaleClaims(ctx context.Context, before time.Time) (int64, error) {
	if f.releaseStaleFn != nil {
		return f.releaseStaleFn(ctx, before)
	}
	return 0, nil
}

func (f *fakeDraftRepo) DeleteOpen(ctx context.Context, branchID string, ids []string) (int64, error) {
	if f.deleteOpenFn != nil {
		return f.deleteOpenFn(ctx, branchID, ids)
	}
	return 0, nil
}

type fakeLogRepo struct {
	createFn func(ctx context.Context, l *domain.MessageLog) error
	listFn   func(ctx context.Context, branchID string, params repository.LogListParams) ([]domain.MessageLog, int64, error)
}

func (f *fakeLogRepo) Create(ctx context.Context, l *domain.MessageLog) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLogRepo) List(ctx context.Context, branchID string, params repository.LogListParams) ([]domain.MessageLog, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, branchID, params)
	}
	return nil, 0, nil
}

type fakePaymentRepo struct {
	createFn              func(ctx context.Context, p *domain.Payment) error
	getByIDFn             func(ctx context.Context, branchID, id string) (*domain.Payment, error)
	listFn                func(ctx context.Context, branchID string, params repository.PaymentListParams) ([]domain.Payment, int64, error)
	countCreatedBetweenFn func(ctx context.Context, branchID string, from, to time.Time) (int64, error)
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, branchID, id string) (*domain.Payment, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, branchID, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakePaymentRepo) List(ctx context.Context, branchID string, params repository.PaymentListParams) ([]domain.Payment, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, branchID, params)
	}
	return nil, 0, nil
}

func (f *fakePaymentRepo) CountCreatedBetween(ctx context.Context, branchID string, from, to time.Time) (int64, error) {
	if f.countCreatedBetweenFn != nil {
		return f.countCreatedBetweenFn(ctx, branchID, from, to)
	}
	return 0, nil
}

type fakeAttendanceRepo struct {
	createFn        func(ctx context.Context, a *domain.Attendance) error
	getByIDFn       func(ctx context.Context, branchID, id string) (*domain.Attendance, error)
	listFn          func(ctx context.Context, branchID string, params repository.AttendanceListParams) ([]domain.Attendance, int64, error)
	findOpenVisitFn func(ctx context.Context, branchID, memberID string, since time.Time) (*domain.Attendance, error)
	closeVisitFn    func(ctx context.Context, branchID, id string, at time.Time) (bool, error)
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, a *domain.Attendance) error {
	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	return nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, branchID, id string) (*domain.Attendance, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, branchID, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAttendanceRepo) List(ctx context.Context, branchID string, params repository.AttendanceListParams) ([]domain.Attendance, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, branchID, params)
	}
	return nil, 0, nil
}

func (f *fakeAttendanceRepo) FindOpenVisit(ctx context.Context, branchID, memberID string, since time.Time) (*domain.Attendance, error) {
	if f.findOpenVisitFn != nil {
		return f.findOpenVisitFn(ctx, branchID, memberID, since)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAttendanceRepo) CloseVisit(ctx context.Context, branchID, id string, at time.Time) (bool, error) {
	if f.closeVisitFn != nil {
		return f.closeVisitFn(ctx, branchID, id, at)
	}
	return true, nil
}

type fakeTransport struct {
	sendFn func(ctx context.Context, phone, message string) (*channel.SendResult, error)
}

func (f *fakeTransport) Send(ctx context.Context, phone, message string) (*channel.SendResult, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, phone, message)
	}
	return &channel.SendResult{ProviderID: "fake-1", StatusCode: 200}, nil
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, channel string) (bool, error)
	waitFn  func(ctx context.Context, channel string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, channel string) (bool, error) {
	if f.allowFn != nil {
		return f.allowFn(ctx, channel)
	}
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, channel string) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, channel)
	}
	return nil
}
