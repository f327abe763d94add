package domain

import (
	"fmt"
	"strings"
	"time"
)

// MemberStatus represents the lifecycle state of a gym membership.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusExpired   MemberStatus = "expired"
	MemberStatusSuspended MemberStatus = "suspended"
)

func (s MemberStatus) String() string { return string(s) }

func (s MemberStatus) IsValid() bool {
	switch s {
	case MemberStatusActive, MemberStatusExpired, MemberStatusSuspended:
		return true
	}
	return false
}

func ParseMemberStatusFromString(s string) (MemberStatus, error) {
	st := MemberStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid member status %q", ErrValidation, s)
	}
	return st, nil
}

// MembershipType determines the subscription duration purchased at enrollment.
type MembershipType string

const (
	MembershipMonthly    MembershipType = "monthly"
	MembershipQuarterly  MembershipType = "quarterly"
	MembershipHalfYearly MembershipType = "half_yearly"
	MembershipYearly     MembershipType = "yearly"
)

func (t MembershipType) String() string { return string(t) }

func (t MembershipType) IsValid() bool {
	switch t {
	case MembershipMonthly, MembershipQuarterly, MembershipHalfYearly, MembershipYearly:
		return true
	}
	return false
}

func ParseMembershipTypeFromString(s string) (MembershipType, error) {
	mt := MembershipType(strings.ToLower(strings.TrimSpace(s)))
	if !mt.IsValid() {
		return "", fmt.Errorf("%w: invalid membership type %q", ErrValidation, s)
	}
	return mt, nil
}

// Member is a gym member owned by a branch.
type Member struct {
	ID              string         `gorm:"type:uuid;primaryKey"`
	Code            string         `gorm:"type:varchar(20);not null"`
	BranchID        string         `gorm:"type:uuid;not null"`
	Name            string         `gorm:"type:varchar(255);not null"`
	Phone           string         `gorm:"type:varchar(20);not null"`
	Email           *string        `gorm:"type:varchar(255)"`
	MembershipType  MembershipType `gorm:"type:varchar(20);not null"`
	MembershipFee   float64        `gorm:"not null"`
	JoiningDate     time.Time      `gorm:"not null"`
	ExpiryDate      time.Time      `gorm:"not null"`
	LastPaymentDate *time.Time
	Status          MemberStatus `gorm:"type:varchar(20);not null"`
	ExpiryNotified  bool         `gorm:"not null;default:false"`
	CreatedBy       *string      `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: member name is required", ErrValidation)
	}
	if strings.TrimSpace(m.Phone) == "" {
		return fmt.Errorf("%w: member phone is required", ErrValidation)
	}
	if strings.TrimSpace(m.BranchID) == "" {
		return fmt.Errorf("%w: branch id is required", ErrValidation)
	}
	if !m.MembershipType.IsValid() {
		return fmt.Errorf("%w: invalid membership type %q", ErrValidation, m.MembershipType)
	}
	if !m.Status.IsValid() {
		return fmt.Errorf("%w: invalid member status %q", ErrValidation, m.Status)
	}
	if m.ExpiryDate.Before(m.JoiningDate) {
		return fmt.Errorf("%w: expiry date precedes joining date", ErrValidation)
	}
	return nil
}

// ComputeExpiry derives the expiry date for a membership starting at joining.
// Unrecognized types fall back to one month. Month arithmetic follows
// time.AddDate normalization, so Jan 31 + 1 month lands on Mar 2/3 rather
// than clamping to the end of February.
func ComputeExpiry(joining time.Time, membershipType MembershipType) time.Time {
	switch membershipType {
	case MembershipQuarterly:
		return joining.AddDate(0, 3, 0)
	case MembershipHalfYearly:
		return joining.AddDate(0, 6, 0)
	case MembershipYearly:
		return joining.AddDate(1, 0, 0)
	default:
		return joining.AddDate(0, 1, 0)
	}
}
