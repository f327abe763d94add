package repository

import (
	"context"
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
	"gorm.io/gorm"
)

type LogListParams struct {
	MemberID *string
	Type     *domain.MessageType
	Channel  *domain.Channel
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// LogRepository is append-only: message logs are never updated or deleted.
type LogRepository interface {
	Create(ctx context.Context, l *domain.MessageLog) error
	List(ctx context.Context, branchID string, params LogListParams) ([]domain.MessageLog, int64, error)
}

type GormLogRepo struct {
	db *gorm.DB
}

func NewGormLogRepo(db *gorm.DB) *GormLogRepo {
	return &GormLogRepo{db: db}
}

func (r *GormLogRepo) Create(ctx context.Context, l *domain.MessageLog) error {
	model := logModelFromDomain(l)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if l != nil {
		*l = *logModelToDomain(model)
	}
	return nil
}

func (r *GormLogRepo) List(ctx context.Context, branchID string, params LogListParams) ([]domain.MessageLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&MessageLogModel{}).Where("branch_id = ?", branchID)

	if params.MemberID != nil {
		query = query.Where("member_id = ?", *params.MemberID)
	}
	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.Channel != nil {
		query = query.Where("channel = ?", *params.Channel)
	}
	if params.From != nil {
		query = query.Where("sent_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("sent_at <= ?", *params.To)
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

	var models []MessageLogModel
	err := query.
		Order("sent_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	logs := make([]domain.MessageLog, 0, len(models))
	for i := range models {
		logs = append(logs, *logModelToDomain(&models[i]))
	}

	return logs, total, nil
}
