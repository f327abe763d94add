package domain

import "time"

// LogOutcome records whether the provider reported success or failure.
type LogOutcome string

const (
	LogOutcomeSent   LogOutcome = "sent"
	LogOutcomeFailed LogOutcome = "failed"
)

func (o LogOutcome) String() string { return string(o) }

// MessageLog is the append-only audit record of a send attempt that reached
// the channel transport. Logs are never updated or deleted.
type MessageLog struct {
	ID               string      `gorm:"type:uuid;primaryKey"`
	MemberID         string      `gorm:"type:uuid;not null"`
	BranchID         string      `gorm:"type:uuid;not null"`
	Phone            string      `gorm:"type:varchar(20);not null"`
	Type             MessageType `gorm:"type:varchar(10);not null"`
	Message          string      `gorm:"type:text;not null"`
	Channel          Channel     `gorm:"type:varchar(10);not null"`
	Outcome          LogOutcome  `gorm:"type:varchar(10);not null"`
	ProviderID       *string     `gorm:"type:varchar(255)"`
	ProviderResponse *string     `gorm:"type:text"`
	SentAt           time.Time   `gorm:"not null"`
	SentBy           *string     `gorm:"type:uuid"`
	CreatedAt        time.Time
}
