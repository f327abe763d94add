package repository

import (
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
)

// MemberModel is the persistence model for the members table.
type MemberModel struct {
	ID              string                `gorm:"type:uuid;primaryKey"`
	Code            string                `gorm:"type:varchar(20);not null"`
	BranchID        string                `gorm:"type:uuid;not null"`
	Name            string                `gorm:"type:varchar(255);not null"`
	Phone           string                `gorm:"type:varchar(20);not null"`
	Email           *string               `gorm:"type:varchar(255)"`
	MembershipType  domain.MembershipType `gorm:"type:varchar(20);not null"`
	MembershipFee   float64               `gorm:"not null"`
	JoiningDate     time.Time             `gorm:"not null"`
	ExpiryDate      time.Time             `gorm:"not null"`
	LastPaymentDate *time.Time
	Status          domain.MemberStatus `gorm:"type:varchar(20);not null"`
	ExpiryNotified  bool                `gorm:"not null;default:false"`
	CreatedBy       *string             `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (MemberModel) TableName() string {
	return "members"
}

// MessageDraftModel is the persistence model for message_drafts.
type MessageDraftModel struct {
	ID            string             `gorm:"type:uuid;primaryKey"`
	MemberID      string             `gorm:"type:uuid;not null"`
	BranchID      string             `gorm:"type:uuid;not null"`
	Phone         string             `gorm:"type:varchar(20);not null"`
	Type          domain.MessageType `gorm:"type:varchar(10);not null"`
	Message       string             `gorm:"type:text;not null"`
	Status        domain.DraftStatus `gorm:"type:varchar(10);not null"`
	Channel       *domain.Channel    `gorm:"type:varchar(10)"`
	FailureReason *string            `gorm:"type:text"`
	SentAt        *time.Time
	SentBy        *string `gorm:"type:uuid"`
	CreatedBy     *string `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (MessageDraftModel) TableName() string {
	return "message_drafts"
}

// MessageLogModel is the persistence model for message_logs.
type MessageLogModel struct {
	ID               string             `gorm:"type:uuid;primaryKey"`
	MemberID         string             `gorm:"type:uuid;not null"`
	BranchID         string             `gorm:"type:uuid;not null"`
	Phone            string             `gorm:"type:varchar(20);not null"`
	Type             domain.MessageType `gorm:"type:varchar(10);not null"`
	Message          string             `gorm:"type:text;not null"`
	Channel          domain.Channel     `gorm:"type:varchar(10);not null"`
	Outcome          domain.LogOutcome  `gorm:"type:varchar(10);not null"`
	ProviderID       *string            `gorm:"type:varchar(255)"`
	ProviderResponse *string            `gorm:"type:text"`
	SentAt           time.Time          `gorm:"not null"`
	SentBy           *string            `gorm:"type:uuid"`
	CreatedAt        time.Time
}

func (MessageLogModel) TableName() string {
	return "message_logs"
}

// PaymentModel is the persistence model for payments.
type PaymentModel struct {
	ID             string             `gorm:"type:uuid;primaryKey"`
	Code           string             `gorm:"type:varchar(20);not null"`
	MemberID       string             `gorm:"type:uuid;not null"`
	BranchID       string             `gorm:"type:uuid;not null"`
	Amount         float64            `gorm:"not null"`
	Mode           domain.PaymentMode `gorm:"type:varchar(15);not null"`
	ValidFrom      time.Time          `gorm:"not null"`
	ValidUntil     time.Time          `gorm:"not null"`
	TransactionRef *string            `gorm:"type:varchar(255)"`
	Remarks        *string            `gorm:"type:text"`
	CollectedBy    *string            `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}

// AttendanceModel is the persistence model for attendances.
type AttendanceModel struct {
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

func (AttendanceModel) TableName() string {
	return "attendances"
}

func memberModelFromDomain(m *domain.Member) *MemberModel {
	if m == nil {
		return nil
	}

	return &MemberModel{
		ID:              m.ID,
		Code:            m.Code,
		BranchID:        m.BranchID,
		Name:            m.Name,
		Phone:           m.Phone,
		Email:           m.Email,
		MembershipType:  m.MembershipType,
		MembershipFee:   m.MembershipFee,
		JoiningDate:     m.JoiningDate,
		ExpiryDate:      m.ExpiryDate,
		LastPaymentDate: m.LastPaymentDate,
		Status:          m.Status,
		ExpiryNotified:  m.ExpiryNotified,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func memberModelToDomain(m *MemberModel) *domain.Member {
	if m == nil {
		return nil
	}

	return &domain.Member{
		ID:              m.ID,
		Code:            m.Code,
		BranchID:        m.BranchID,
		Name:            m.Name,
		Phone:           m.Phone,
		Email:           m.Email,
		MembershipType:  m.MembershipType,
		MembershipFee:   m.MembershipFee,
		JoiningDate:     m.JoiningDate,
		ExpiryDate:      m.ExpiryDate,
		LastPaymentDate: m.LastPaymentDate,
		Status:          m.Status,
		ExpiryNotified:  m.ExpiryNotified,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func draftModelFromDomain(d *domain.MessageDraft) *MessageDraftModel {
	if d == nil {
		return nil
	}

	return &MessageDraftModel{
		ID:            d.ID,
		MemberID:      d.MemberID,
		BranchID:      d.BranchID,
		Phone:         d.Phone,
		Type:          d.Type,
		Message:       d.Message,
		Status:        d.Status,
		Channel:       d.Channel,
		FailureReason: d.FailureReason,
		SentAt:        d.SentAt,
		SentBy:        d.SentBy,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func draftModelToDomain(m *MessageDraftModel) *domain.MessageDraft {
	if m == nil {
		return nil
	}

	return &domain.MessageDraft{
		ID:            m.ID,
		MemberID:      m.MemberID,
		BranchID:      m.BranchID,
		Phone:         m.Phone,
		Type:          m.Type,
		Message:       m.Message,
		Status:        m.Status,
		Channel:       m.Channel,
		FailureReason: m.FailureReason,
		SentAt:        m.SentAt,
		SentBy:        m.SentBy,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func logModelFromDomain(l *domain.MessageLog) *MessageLogModel {
	if l == nil {
		return nil
	}

	return &MessageLogModel{
		ID:               l.ID,
		MemberID:         l.MemberID,
		BranchID:         l.BranchID,
		Phone:            l.Phone,
		Type:             l.Type,
		Message:          l.Message,
		Channel:          l.Channel,
		Outcome:          l.Outcome,
		ProviderID:       l.ProviderID,
		ProviderResponse: l.ProviderResponse,
		SentAt:           l.SentAt,
		SentBy:           l.SentBy,
		CreatedAt:        l.CreatedAt,
	}
}

func logModelToDomain(m *MessageLogModel) *domain.MessageLog {
	if m == nil {
		return nil
	}

	return &domain.MessageLog{
		ID:               m.ID,
		MemberID:         m.MemberID,
		BranchID:         m.BranchID,
		Phone:            m.Phone,
		Type:             m.Type,
		Message:          m.Message,
		Channel:          m.Channel,
		Outcome:          m.Outcome,
		ProviderID:       m.ProviderID,
		ProviderResponse: m.ProviderResponse,
		SentAt:           m.SentAt,
		SentBy:           m.SentBy,
		CreatedAt:        m.CreatedAt,
	}
}

func paymentModelFromDomain(p *domain.Payment) *PaymentModel {
	if p == nil {
		return nil
	}

	return &PaymentModel{
		ID:             p.ID,
		Code:           p.Code,
		MemberID:       p.MemberID,
		BranchID:       p.BranchID,
		Amount:         p.Amount,
		Mode:           p.Mode,
		ValidFrom:      p.ValidFrom,
		ValidUntil:     p.ValidUntil,
		TransactionRef: p.TransactionRef,
		Remarks:        p.Remarks,
		CollectedBy:    p.CollectedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func paymentModelToDomain(m *PaymentModel) *domain.Payment {
	if m == nil {
		return nil
	}

	return &domain.Payment{
		ID:             m.ID,
		Code:           m.Code,
		MemberID:       m.MemberID,
		BranchID:       m.BranchID,
		Amount:         m.Amount,
		Mode:           m.Mode,
		ValidFrom:      m.ValidFrom,
		ValidUntil:     m.ValidUntil,
		TransactionRef: m.TransactionRef,
		Remarks:        m.Remarks,
		CollectedBy:    m.CollectedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func attendanceModelFromDomain(a *domain.Attendance) *AttendanceModel {
	if a == nil {
		return nil
	}

	return &AttendanceModel{
		ID:         a.ID,
		MemberID:   a.MemberID,
		BranchID:   a.BranchID,
		CheckInAt:  a.CheckInAt,
		CheckOutAt: a.CheckOutAt,
		Remarks:    a.Remarks,
		RecordedBy: a.RecordedBy,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func attendanceModelToDomain(m *AttendanceModel) *domain.Attendance {
	if m == nil {
		return nil
	}

	return &domain.Attendance{
		ID:         m.ID,
		MemberID:   m.MemberID,
		BranchID:   m.BranchID,
		CheckInAt:  m.CheckInAt,
		CheckOutAt: m.CheckOutAt,
		Remarks:    m.Remarks,
		RecordedBy: m.RecordedBy,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
