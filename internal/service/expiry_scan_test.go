package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
)

func newExpiryScanJob(t *testing.T, drafts *fakeDraftRepo, members *fakeMemberRepo) *ExpiryScanJob {
	t.Helper()

	messages := newMessageService(t, drafts, members)
	job, err := NewExpiryScanJob(messages, members, nil)
	if err != nil {
		t.Fatalf("NewExpiryScanJob() error = %v", err)
	}
	return job
}

func TestExpiryScanDraftsBeforeExpiring(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var order []string

	members := &fakeMemberRepo{
		findExpiringFn: func(ctx context.Context, branchID string, from, to time.Time) ([]domain.Member, error) {
			mu.Lock()
			defer mu.Unlock()
			if branchID != "" {
				t.Errorf("branch id = %q, want empty (all branches)", branchID)
			}
			order = append(order, "draft")
			return []domain.Member{
				{ID: "member-1", BranchID: "branch-1", Name: "Asha", Phone: "+911111111111"},
			}, nil
		},
		expireOverdueFn: func(ctx context.Context, now time.Time) (int64, error) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, "expire")
			return 3, nil
		},
	}
	drafts := &fakeDraftRepo{}

	job := newExpiryScanJob(t, drafts, members)

	summary, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.DraftsCreated != 1 || summary.DraftsSkipped != 0 || summary.MembersExpired != 3 {
		t.Fatalf("summary = %+v, want 1 draft and 3 expired", summary)
	}
	if len(order) != 2 || order[0] != "draft" || order[1] != "expire" {
		t.Fatalf("order = %v, want drafts generated before memberships expire", order)
	}
}

func TestExpiryScanCountsSkippedDrafts(t *testing.T) {
	t.Parallel()

	members := &fakeMemberRepo{
		findExpiringFn: func(ctx context.Context, branchID string, from, to time.Time) ([]domain.Member, error) {
			return []domain.Member{
				{ID: "member-1", BranchID: "branch-1", Name: "Asha", Phone: "+911111111111"},
			}, nil
		},
	}
	drafts := &fakeDraftRepo{
		createFn: func(ctx context.Context, d *domain.MessageDraft) error {
			return errors.New("duplicate key value violates unique constraint")
		},
	}

	job := newExpiryScanJob(t, drafts, members)

	summary, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.DraftsCreated != 0 || summary.DraftsSkipped != 1 {
		t.Fatalf("summary = %+v, want one skipped draft", summary)
	}
}

func TestExpiryScanPropagatesRepositoryError(t *testing.T) {
	t.Parallel()

	members := &fakeMemberRepo{
		expireOverdueFn: func(ctx context.Context, now time.Time) (int64, error) {
			return 0, errors.New("connection reset")
		},
	}

	job := newExpiryScanJob(t, &fakeDraftRepo{}, members)

	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error when expiring overdue members fails")
	}
}
