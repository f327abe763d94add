package repository

import (
	"context"
	"errors"
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
	"gorm.io/gorm"
)

type MemberListParams struct {
	Status         *domain.MemberStatus
	MembershipType *domain.MembershipType
	Search         string
	Page           int
	PageSize       int
}

type MemberRepository interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByID(ctx context.Context, branchID, id string) (*domain.Member, error)
	GetByIDs(ctx context.Context, branchID string, ids []string) ([]domain.Member, error)
	List(ctx context.Context, branchID string, params MemberListParams) ([]domain.Member, int64, error)
	CountByBranch(ctx context.Context, branchID string) (int64, error)
	FindExpiring(ctx context.Context, branchID string, from, to time.Time) ([]domain.Member, error)
	FindJoinedSince(ctx context.Context, branchID string, since time.Time) ([]domain.Member, error)
	FindPaymentOverdue(ctx context.Context, branchID string, before time.Time) ([]domain.Member, error)
	ApplyPayment(ctx context.Context, id string, validUntil, paidAt time.Time) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	MarkExpiryNotified(ctx context.Context, id string) error
}

type GormMemberRepo struct {
	db *gorm.DB
}

func NewGormMemberRepo(db *gorm.DB) *GormMemberRepo {
	return &GormMemberRepo{db: db}
}

func (r *GormMemberRepo) Create(ctx context.Context, m *domain.Member) error {
	model := memberModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if m != nil {
		*m = *memberModelToDomain(model)
	}
	return nil
}

func (r *GormMemberRepo) GetByID(ctx context.Context, branchID, id string) (*domain.Member, error) {
	var model MemberModel
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return memberModelToDomain(&model), nil
}

func (r *GormMemberRepo) GetByIDs(ctx context.Context, branchID string, ids []string) ([]domain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []MemberModel
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND id IN ?", branchID, ids).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return membersToDomain(models), nil
}

func (r *GormMemberRepo) List(ctx context.Context, branchID string, params MemberListParams) ([]domain.Member, int64, error) {
	query := r.db.WithContext(ctx).Model(&MemberModel{}).Where("branch_id = ?", branchID)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.MembershipType != nil {
		query = query.Where("membership_type = ?", *params.MembershipType)
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ? OR code ILIKE ?", pattern, pattern, pattern)
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

	var models []MemberModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	return membersToDomain(models), total, nil
}

func (r *GormMemberRepo) CountByBranch(ctx context.Context, branchID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&MemberModel{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error
	return count, err
}

// FindExpiring returns active, not-yet-notified members whose expiry date
// falls inside [from, to]. An empty branchID spans all branches.
func (r *GormMemberRepo) FindExpiring(ctx context.Context, branchID string, from, to time.Time) ([]domain.Member, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", domain.MemberStatusActive).
		Where("expiry_notified = ?", false).
		Where("expiry_date >= ? AND expiry_date <= ?", from, to)
	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	var models []MemberModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return membersToDomain(models), nil
}

func (r *GormMemberRepo) FindJoinedSince(ctx context.Context, branchID string, since time.Time) ([]domain.Member, error) {
	query := r.db.WithContext(ctx).Where("joining_date >= ?", since)
	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	var models []MemberModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return membersToDomain(models), nil
}

func (r *GormMemberRepo) FindPaymentOverdue(ctx context.Context, branchID string, before time.Time) ([]domain.Member, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", domain.MemberStatusActive).
		Where("last_payment_date < ?", before)
	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	var models []MemberModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return membersToDomain(models), nil
}

// ApplyPayment renews a membership in one narrow update: new expiry, payment
// timestamp, status back to active, and the expiry notification flag cleared.
func (r *GormMemberRepo) ApplyPayment(ctx context.Context, id string, validUntil, paidAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&MemberModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"expiry_date":       validUntil,
			"last_payment_date": paidAt,
			"status":            domain.MemberStatusActive,
			"expiry_notified":   false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExpireOverdue transitions every active member whose expiry date has passed.
// The strict less-than comparator keeps a member expiring exactly now out of
// this sweep, so the scan can still notify them first.
func (r *GormMemberRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&MemberModel{}).
		Where("status = ? AND expiry_date < ?", domain.MemberStatusActive, now).
		Update("status", domain.MemberStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormMemberRepo) MarkExpiryNotified(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&MemberModel{}).
		Where("id = ?", id).
		Update("expiry_notified", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func membersToDomain(models []MemberModel) []domain.Member {
	members := make([]domain.Member, 0, len(models))
	for i := range models {
		members = append(members, *memberModelToDomain(&models[i]))
	}
	return members
}
