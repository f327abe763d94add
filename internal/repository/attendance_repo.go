package repository

import (
	"context"
	"errors"
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
	"gorm.io/gorm"
)

type AttendanceListParams struct {
	MemberID *string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type AttendanceRepository interface {
	Create(ctx context.Context, a *domain.Attendance) error
	GetByID(ctx context.Context, branchID, id string) (*domain.Attendance, error)
	List(ctx context.Context, branchID string, params AttendanceListParams) ([]domain.Attendance, int64, error)
	FindOpenVisit(ctx context.Context, branchID, memberID string, since time.Time) (*domain.Attendance, error)
	CloseVisit(ctx context.Context, branchID, id string, at time.Time) (bool, error)
}

type GormAttendanceRepo struct {
	db *gorm.DB
}

func NewGormAttendanceRepo(db *gorm.DB) *GormAttendanceRepo {
	return &GormAttendanceRepo{db: db}
}

func (r *GormAttendanceRepo) Create(ctx context.Context, a *domain.Attendance) error {
	model := attendanceModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if a != nil {
		*a = *attendanceModelToDomain(model)
	}
	return nil
}

func (r *GormAttendanceRepo) GetByID(ctx context.Context, branchID, id string) (*domain.Attendance, error) {
	var model AttendanceModel
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return attendanceModelToDomain(&model), nil
}

func (r *GormAttendanceRepo) List(ctx context.Context, branchID string, params AttendanceListParams) ([]domain.Attendance, int64, error) {
	query := r.db.WithContext(ctx).Model(&AttendanceModel{}).Where("branch_id = ?", branchID)

	if params.MemberID != nil {
		query = query.Where("member_id = ?", *params.MemberID)
	}
	if params.From != nil {
		query = query.Where("check_in_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("check_in_at <= ?", *params.To)
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

	var models []AttendanceModel
	err := query.
		Order("check_in_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	visits := make([]domain.Attendance, 0, len(models))
	for i := range models {
		visits = append(visits, *attendanceModelToDomain(&models[i]))
	}

	return visits, total, nil
}

// FindOpenVisit returns the member's open visit checked in at or after
// since, or ErrNotFound when there is none.
func (r *GormAttendanceRepo) FindOpenVisit(ctx context.Context, branchID, memberID string, since time.Time) (*domain.Attendance, error) {
	var model AttendanceModel
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND member_id = ? AND check_out_at IS NULL AND check_in_at >= ?", branchID, memberID, since).
		Order("check_in_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return attendanceModelToDomain(&model), nil
}

// CloseVisit stamps the check-out time on an open visit. A false return
// means the visit is either missing or already closed; the caller decides
// which by re-reading.
func (r *GormAttendanceRepo) CloseVisit(ctx context.Context, branchID, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&AttendanceModel{}).
		Where("branch_id = ? AND id = ? AND check_out_at IS NULL", branchID, id).
		Update("check_out_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
