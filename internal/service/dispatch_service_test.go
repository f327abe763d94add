package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/umutkoseali/gymnotify/internal/channel"
	"github.com/umutkoseali/gymnotify/internal/domain"
)

func newDispatchService(
	t *testing.T,
	drafts *fakeDraftRepo,
	members *fakeMemberRepo,
	logs *fakeLogRepo,
	registry *channel.Registry,
) *DispatchService {
	t.Helper()

	svc, err := NewDispatchService(drafts, members, logs, registry, &fakeRateLimiter{}, 2, time.Second, nil)
	if err != nil {
		t.Fatalf("NewDispatchService() error = %v", err)
	}
	return svc
}

func TestSendDraftsHappyPath(t *testing.T) {
	t.Parallel()

	open := []domain.MessageDraft{
		{ID: "draft-1", MemberID: "member-1", BranchID: "branch-1", Phone: "+911111111111", Type: domain.MessageTypeExpiry, Message: "renew soon", Status: domain.DraftStatusDraft},
	}

	var mu sync.Mutex
	markedSent := false
	drafts := &fakeDraftRepo{
		listOpenByIDsFn: func(ctx context.Context, branchID string, ids []string) ([]domain.MessageDraft, error) {
			return open, nil
		},
		markSentFn: func(ctx context.Context, id string, ch domain.Channel, sentBy *string, sentAt time.Time) error {
			mu.Lock()
			defer mu.Unlock()
			if ch != domain.ChannelSMS {
				t.Errorf("channel = %s, want sms", ch)
			}
			markedSent = true
			return nil
		},
	}

	notified := false
	members := &fakeMemberRepo{
		markExpiryNotifiedFn: func(ctx context.Context, id string) error {
			mu.Lock()
			defer mu.Unlock()
			if id != "member-1" {
				t.Errorf("member id = %s, want member-1", id)
			}
			notified = true
			return nil
		},
	}

	var loggedOutcome domain.LogOutcome
	var loggedProviderID *string
	logs := &fakeLogRepo{
		createFn: func(ctx context.Context, l *domain.MessageLog) error {
			mu.Lock()
			defer mu.Unlock()
			loggedOutcome = l.Outcome
			loggedProviderID = l.ProviderID
			return nil
		},
	}

	registry := channel.NewRegistry()
	registry.Register(domain.ChannelSMS, &fakeTransport{
		sendFn: func(ctx context.Context, phone, message string) (*channel.SendResult, error) {
			return &channel.SendResult{ProviderID: "MSG-77", StatusCode: 200}, nil
		},
	})

	svc := newDispatchService(t, drafts, members, logs, registry)

	report, err := svc.SendDrafts(context.Background(), "branch-1", []string{"draft-1"}, domain.ChannelSMS, nil)
	if err != nil {
		t.Fatalf("SendDrafts() error = %v", err)
	}

	if report.Sent != 1 || report.Failed != 0 || report.Skipped != 0 {
		t.Fatalf("report = %+v, want one sent", report)
	}
	if !markedSent {
		t.Fatal("expected draft to be marked sent")
	}
	if !notified {
		t.Fatal("expected member to be marked expiry-notified")
	}
	if loggedOutcome != domain.LogOutcomeSent {
		t.Fatalf("log outcome = %s, want sent", loggedOutcome)
	}
	if loggedProviderID == nil || *loggedProviderID != "MSG-77" {
		t.Fatalf("log provider id = %v, want MSG-77", loggedProviderID)
	}
}

func TestSendDraftsTransportFailureIsolated(t *testing.T) {
	t.Parallel()

	open := []domain.MessageDraft{
		{ID: "draft-1", MemberID: "member-1", BranchID: "branch-1", Phone: "+911111111111", Type: domain.MessageTypeWelcome, Message: "welcome", Status: domain.DraftStatusDraft},
		{ID: "draft-2", MemberID: "member-2", BranchID: "branch-1", Phone: "+912222222222", Type: domain.MessageTypeWelcome, Message: "welcome", Status: domain.DraftStatusDraft},
	}

	var mu sync.Mutex
	failedIDs := map[string]string{}
	drafts := &fakeDraftRepo{
		listOpenByIDsFn: func(ctx context.Context, branchID string, ids []string) ([]domain.MessageDraft, error) {
			return open, nil
		},
		markFailedFn: func(ctx context.Context, id string, ch domain.Channel, reason string) error {
			mu.Lock()
			defer mu.Unlock()
			failedIDs[id] = reason
			return nil
		},
	}

	var logOutcomes []domain.LogOutcome
	logs := &fakeLogRepo{
		createFn: func(ctx context.Context, l *domain.MessageLog) error {
			mu.Lock()
			defer mu.Unlock()
			logOutcomes = append(logOutcomes, l.Outcome)
			return nil
		},
	}

	registry := channel.NewRegistry()
	registry.Register(domain.ChannelSMS, &fakeTransport{
		sendFn: func(ctx context.Context, phone, message string) (*channel.SendResult, error) {
			if phone == "+911111111111" {
				return &channel.SendResult{StatusCode: 400, Body: "invalid number"}, &channel.TransportError{
					StatusCode: 400,
					Message:    "invalid number",
				}
			}
			return &channel.SendResult{ProviderID: "MSG-2", StatusCode: 200}, nil
		},
	})

	svc := newDispatchService(t, drafts, &fakeMemberRepo{}, logs, registry)

	report, err := svc.SendDrafts(context.Background(), "branch-1", []string{"draft-1", "draft-2"}, domain.ChannelSMS, nil)
	if err != nil {
		t.Fatalf("SendDrafts() error = %v", err)
	}

	if report.Sent != 1 || report.Failed != 1 {
		t.Fatalf("report = %+v, want one sent one failed", report)
	}
	if _, ok := failedIDs["draft-1"]; !ok {
		t.Fatal("expected draft-1 to be marked failed")
	}
	if len(logOutcomes) != 2 {
		t.Fatalf("logs written = %d, want 2 (failure still reached the provider)", len(logOutcomes))
	}
}

func TestSendDraftsUnsupportedChannelFailsWithoutLog(t *testing.T) {
	t.Parallel()

	open := []domain.MessageDraft{
		{ID: "draft-1", MemberID: "member-1", BranchID: "branch-1", Phone: "+911111111111", Type: domain.MessageTypeOffer, Message: "offer", Status: domain.DraftStatusDraft},
	}

	var mu sync.Mutex
	markedFailed := false
	drafts := &fakeDraftRepo{
		listOpenByIDsFn: func(ctx context.Context, branchID string, ids []string) ([]domain.MessageDraft, error) {
			return open, nil
		},
		markFailedFn: func(ctx context.Context, id string, ch domain.Channel, reason string) error {
			mu.Lock()
			defer mu.Unlock()
			markedFailed = true
			return nil
		},
	}

	logWritten := false
	logs := &fakeLogRepo{
		createFn: func(ctx context.Context, l *domain.MessageLog) error {
			mu.Lock()
			defer mu.Unlock()
			logWritten = true
			return nil
		},
	}

	svc := newDispatchService(t, drafts, &fakeMemberRepo{}, logs, channel.NewRegistry())

	report, err := svc.SendDrafts(context.Background(), "branch-1", []string{"draft-1"}, domain.ChannelWhatsApp, nil)
	if err != nil {
		t.Fatalf("SendDrafts() error = %v", err)
	}

	if report.Failed != 1 {
		t.Fatalf("report = %+v, want one failed", report)
	}
	if !markedFailed {
		t.Fatal("expected draft to be marked failed")
	}
	if logWritten {
		t.Fatal("no transport was invoked, so no log should be written")
	}
}

func TestSendDraftsUnknownChannelIsPerItemFailure(t *testing.T) {
	t.Parallel()

	open := []domain.MessageDraft{
		{ID: "draft-1", MemberID: "member-1", BranchID: "branch-1", Phone: "+911111111111", Type: domain.MessageTypeCustom, Message: "hello", Status: domain.DraftStatusDraft},
	}

	var mu sync.Mutex
	var failedReason string
	drafts := &fakeDraftRepo{
		listOpenByIDsFn: func(ctx context.Context, branchID string, ids []string) ([]domain.MessageDraft, error) {
			return open, nil
		},
		markFailedFn: func(ctx context.Context, id string, ch domain.Channel, reason string) error {
			mu.Lock()
			defer mu.Unlock()
			failedReason = reason
			return nil
		},
	}

	logWritten := false
	logs := &fakeLogRepo{
		createFn: func(ctx context.Context, l *domain.MessageLog) error {
			mu.Lock()
			defer mu.Unlock()
			logWritten = true
			return nil
		},
	}

	registry := channel.NewRegistry()
	registry.Register(domain.ChannelSMS, &fakeTransport{})

	svc := newDispatchService(t, drafts, &fakeMemberRepo{}, logs, registry)

	report, err := svc.SendDrafts(context.Background(), "branch-1", []string{"draft-1"}, domain.Channel("email"), nil)
	if err != nil {
		t.Fatalf("SendDrafts() error = %v, want per-draft failure outcomes", err)
	}

	if report.Failed != 1 || report.Sent != 0 || report.Skipped != 0 {
		t.Fatalf("report = %+v, want one failed", report)
	}
	if len(report.Outcomes) != 1 || report.Outcomes[0].Status != OutcomeFailed {
		t.Fatalf("outcomes = %+v, want one failed outcome", report.Outcomes)
	}
	if failedReason == "" {
		t.Fatal("expected draft to be marked failed with a reason")
	}
	if logWritten {
		t.Fatal("no transport was invoked, so no log should be written")
	}
}

func TestSendDraftsSkipsAlreadyClaimed(t *testing.T) {
	t.Parallel()

	open := []domain.MessageDraft{
		{ID: "draft-1", MemberID: "member-1", BranchID: "branch-1", Phone: "+911111111111", Type: domain.MessageTypeExpiry, Message: "renew", Status: domain.DraftStatusDraft},
	}

	drafts := &fakeDraftRepo{
		listOpenByIDsFn: func(ctx context.Context, branchID string, ids []string) ([]domain.MessageDraft, error) {
			return open, nil
		},
		claimForSendingFn: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}

	registry := channel.NewRegistry()
	registry.Register(domain.ChannelSMS, &fakeTransport{})

	svc := newDispatchService(t, drafts, &fakeMemberRepo{}, &fakeLogRepo{}, registry)

	report, err := svc.SendDrafts(context.Background(), "branch-1", []string{"draft-1"}, domain.ChannelSMS, nil)
	if err != nil {
		t.Fatalf("SendDrafts() error = %v", err)
	}
	if report.Skipped != 1 || report.Sent != 0 || report.Failed != 0 {
		t.Fatalf("report = %+v, want one skipped", report)
	}
}

func TestSendDraftsValidation(t *testing.T) {
	t.Parallel()

	registry := channel.NewRegistry()
	registry.Register(domain.ChannelSMS, &fakeTransport{})

	svc := newDispatchService(t, &fakeDraftRepo{}, &fakeMemberRepo{}, &fakeLogRepo{}, registry)

	if _, err := svc.SendDrafts(context.Background(), "branch-1", nil, domain.ChannelSMS, nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty ids error = %v, want ErrValidation", err)
	}

	if _, err := svc.SendDrafts(context.Background(), "branch-1", []string{"draft-1"}, domain.Channel("  "), nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank channel error = %v, want ErrValidation", err)
	}

	if _, err := svc.SendDrafts(context.Background(), "branch-1", []string{"draft-1"}, domain.ChannelSMS, nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("no open drafts error = %v, want ErrValidation", err)
	}
}
