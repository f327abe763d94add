package repository

import (
	"context"
	"errors"
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
	"gorm.io/gorm"
)

type PaymentListParams struct {
	MemberID *string
	Mode     *domain.PaymentMode
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, branchID, id string) (*domain.Payment, error)
	List(ctx context.Context, branchID string, params PaymentListParams) ([]domain.Payment, int64, error)
	CountCreatedBetween(ctx context.Context, branchID string, from, to time.Time) (int64, error)
}

type GormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) *GormPaymentRepo {
	return &GormPaymentRepo{db: db}
}

func (r *GormPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	model := paymentModelFromDomain(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if p != nil {
		*p = *paymentModelToDomain(model)
	}
	return nil
}

func (r *GormPaymentRepo) GetByID(ctx context.Context, branchID, id string) (*domain.Payment, error) {
	var model PaymentModel
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return paymentModelToDomain(&model), nil
}

func (r *GormPaymentRepo) List(ctx context.Context, branchID string, params PaymentListParams) ([]domain.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&PaymentModel{}).Where("branch_id = ?", branchID)

	if params.MemberID != nil {
		query = query.Where("member_id = ?", *params.MemberID)
	}
	if params.Mode != nil {
		query = query.Where("mode = ?", *params.Mode)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at <= ?", *params.To)
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

	var models []PaymentModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	payments := make([]domain.Payment, 0, len(models))
	for i := range models {
		payments = append(payments, *paymentModelToDomain(&models[i]))
	}

	return payments, total, nil
}

// CountCreatedBetween counts branch payments created in [from, to). Payment
// codes carry a month segment, so the sequence resets at each month boundary.
func (r *GormPaymentRepo) CountCreatedBetween(ctx context.Context, branchID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("branch_id = ? AND created_at >= ? AND created_at < ?", branchID, from, to).
		Count(&count).Error
	return count, err
}
