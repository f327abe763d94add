package repository

import (
	"context"
	"errors"
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
	"gorm.io/gorm"
)

type DraftListParams struct {
	Status   *domain.DraftStatus
	Type     *domain.MessageType
	MemberID *string
	Page     int
	PageSize int
}

type DraftRepository interface {
	Create(ctx context.Context, d *domain.MessageDraft) error
	GetByID(ctx context.Context, branchID, id string) (*domain.MessageDraft, error)
	List(ctx context.Context, branchID string, params DraftListParams) ([]domain.MessageDraft, int64, error)
	ListOpenByIDs(ctx context.Context, branchID string, ids []string) ([]domain.MessageDraft, error)
	UpdateMessage(ctx context.Context, branchID, id, message string) error
	ClaimForSending(ctx context.Context, id string) (bool, error)
	MarkSent(ctx context.Context, id string, channel domain.Channel, sentBy *string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, channel domain.Channel, reason string) error
	ReleaseStaleClaims(ctx context.Context, before time.Time) (int64, error)
	DeleteOpen(ctx context.Context, branchID string, ids []string) (int64, error)
}

type GormDraftRepo struct {
	db *gorm.DB
}

func NewGormDraftRepo(db *gorm.DB) *GormDraftRepo {
	return &GormDraftRepo{db: db}
}

// Create inserts a new draft. The partial unique index on
// (member_id, type) WHERE status = 'draft' makes the one-open-draft
// guard atomic; callers translate the unique violation into a skip.
func (r *GormDraftRepo) Create(ctx context.Context, d *domain.MessageDraft) error {
	model := draftModelFromDomain(d)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if d != nil {
		*d = *draftModelToDomain(model)
	}
	return nil
}

func (r *GormDraftRepo) GetByID(ctx context.Context, branchID, id string) (*domain.MessageDraft, error) {
	var model MessageDraftModel
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return draftModelToDomain(&model), nil
}

func (r *GormDraftRepo) List(ctx context.Context, branchID string, params DraftListParams) ([]domain.MessageDraft, int64, error) {
	query := r.db.WithContext(ctx).Model(&MessageDraftModel{}).Where("branch_id = ?", branchID)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.MemberID != nil {
		query = query.Where("member_id = ?", *params.MemberID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []MessageDraftModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	return draftsToDomain(models), total, nil
}

// ListOpenByIDs returns only drafts that are still open; identifiers that do
// not resolve to an open draft are dropped without error.
func (r *GormDraftRepo) ListOpenByIDs(ctx context.Context, branchID string, ids []string) ([]domain.MessageDraft, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []MessageDraftModel
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND id IN ? AND status = ?", branchID, ids, domain.DraftStatusDraft).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return draftsToDomain(models), nil
}

func (r *GormDraftRepo) UpdateMessage(ctx context.Context, branchID, id, message string) error {
	result := r.db.WithContext(ctx).
		Model(&MessageDraftModel{}).
		Where("branch_id = ? AND id = ? AND status = ?", branchID, id, domain.DraftStatusDraft).
		Update("message", message)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ClaimForSending is the per-draft compare-and-set: draft -> sending.
// A false return means another dispatcher already owns or finished it.
func (r *GormDraftRepo) ClaimForSending(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&MessageDraftModel{}).
		Where("id = ? AND status = ?", id, domain.DraftStatusDraft).
		Update("status", domain.DraftStatusSending)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormDraftRepo) MarkSent(ctx context.Context, id string, channel domain.Channel, sentBy *string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&MessageDraftModel{}).
		Where("id = ? AND status = ?", id, domain.DraftStatusSending).
		Updates(map[string]any{
			"status":  domain.DraftStatusSent,
			"channel": channel,
			"sent_by": sentBy,
			"sent_at": sentAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *GormDraftRepo) MarkFailed(ctx context.Context, id string, channel domain.Channel, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&MessageDraftModel{}).
		Where("id = ? AND status = ?", id, domain.DraftStatusSending).
		Updates(map[string]any{
			"status":         domain.DraftStatusFailed,
			"channel":        channel,
			"failure_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ReleaseStaleClaims reverts drafts stuck in sending since before the cutoff
// back to draft. A claim only lives for the span of one transport call, so
// anything older belongs to a dispatcher that died between the claim and the
// sent/failed mark.
func (r *GormDraftRepo) ReleaseStaleClaims(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&MessageDraftModel{}).
		Where("status = ? AND updated_at < ?", domain.DraftStatusSending, before).
		Update("status", domain.DraftStatusDraft)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteOpen removes unsent drafts only; sent and failed drafts are part of
// the historical record and stay put.
func (r *GormDraftRepo) DeleteOpen(ctx context.Context, branchID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Where("branch_id = ? AND id IN ? AND status = ?", branchID, ids, domain.DraftStatusDraft).
		Delete(&MessageDraftModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func draftsToDomain(models []MessageDraftModel) []domain.MessageDraft {
	drafts := make([]domain.MessageDraft, 0, len(models))
	for i := range models {
		drafts = append(drafts, *draftModelToDomain(&models[i]))
	}
	return drafts
}
