package domain

import (
	"fmt"
	"strings"
	"time"
)

// PaymentMode is the method used to settle a membership payment.
type PaymentMode string

const (
	PaymentModeCash       PaymentMode = "cash"
	PaymentModeUPI        PaymentMode = "upi"
	PaymentModeCard       PaymentMode = "card"
	PaymentModeNetBanking PaymentMode = "netbanking"
)

func (m PaymentMode) String() string { return string(m) }

func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard, PaymentModeNetBanking:
		return true
	}
	return false
}

func ParsePaymentModeFromString(s string) (PaymentMode, error) {
	pm := PaymentMode(strings.ToLower(strings.TrimSpace(s)))
	if !pm.IsValid() {
		return "", fmt.Errorf("%w: invalid payment mode %q", ErrValidation, s)
	}
	return pm, nil
}

// Payment records a membership renewal payment. Recording one renews the
// member: status back to active, expiry extended to ValidUntil, expiry
// notification flag reset.
type Payment struct {
	ID             string      `gorm:"type:uuid;primaryKey"`
	Code           string      `gorm:"type:varchar(20);not null"`
	MemberID       string      `gorm:"type:uuid;not null"`
	BranchID       string      `gorm:"type:uuid;not null"`
	Amount         float64     `gorm:"not null"`
	Mode           PaymentMode `gorm:"type:varchar(15);not null"`
	ValidFrom      time.Time   `gorm:"not null"`
	ValidUntil     time.Time   `gorm:"not null"`
	TransactionRef *string     `gorm:"type:varchar(255)"`
	Remarks        *string     `gorm:"type:text"`
	CollectedBy    *string     `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p *Payment) Validate() error {
	if strings.TrimSpace(p.MemberID) == "" {
		return fmt.Errorf("%w: member id is required", ErrValidation)
	}
	if strings.TrimSpace(p.BranchID) == "" {
		return fmt.Errorf("%w: branch id is required", ErrValidation)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !p.Mode.IsValid() {
		return fmt.Errorf("%w: invalid payment mode %q", ErrValidation, p.Mode)
	}
	if p.ValidUntil.IsZero() {
		return fmt.Errorf("%w: valid-until date is required", ErrValidation)
	}
	return nil
}
