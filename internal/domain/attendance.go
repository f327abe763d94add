package domain

import (
	"fmt"
	"strings"
	"time"
)

// Attendance records a single gym visit. A visit is open while CheckOutAt
// is nil; a member can have at most one open visit per day.
type Attendance struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	MemberID   string    `gorm:"type:uuid;not null"`
	BranchID   string    `gorm:"type:uuid;not null"`
	CheckInAt  time.Time `gorm:"not null"`
	CheckOutAt *time.Time
	Remarks    *string `gorm:"type:text"`
	RecordedBy *string `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a *Attendance) Validate() error {
	if strings.TrimSpace(a.MemberID) == "" {
		return fmt.Errorf("%w: member id is required", ErrValidation)
	}
	if strings.TrimSpace(a.BranchID) == "" {
		return fmt.Errorf("%w: branch id is required", ErrValidation)
	}
	if a.CheckInAt.IsZero() {
		return fmt.Errorf("%w: check-in time is required", ErrValidation)
	}
	if a.CheckOutAt != nil && a.CheckOutAt.Before(a.CheckInAt) {
		return fmt.Errorf("%w: check-out precedes check-in", ErrValidation)
	}
	return nil
}
