package domain

import (
	"fmt"
	"strings"
	"time"
)

// MessageType classifies outbound member messages.
type MessageType string

const (
	MessageTypeExpiry  MessageType = "expiry"
	MessageTypePayment MessageType = "payment"
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeOffer   MessageType = "offer"
	MessageTypeCustom  MessageType = "custom"
)

func (t MessageType) String() string { return string(t) }

func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeExpiry, MessageTypePayment, MessageTypeWelcome, MessageTypeOffer, MessageTypeCustom:
		return true
	}
	return false
}

func ParseMessageTypeFromString(s string) (MessageType, error) {
	mt := MessageType(strings.ToLower(strings.TrimSpace(s)))
	if !mt.IsValid() {
		return "", fmt.Errorf("%w: invalid message type %q", ErrValidation, s)
	}
	return mt, nil
}

// DraftStatus represents the lifecycle state of a message draft.
// Sending is a transient claim state held only while a dispatch worker
// owns the draft; it never survives a completed batch.
type DraftStatus string

const (
	DraftStatusDraft   DraftStatus = "draft"
	DraftStatusSending DraftStatus = "sending"
	DraftStatusSent    DraftStatus = "sent"
	DraftStatusFailed  DraftStatus = "failed"
)

func (s DraftStatus) String() string { return string(s) }

func (s DraftStatus) IsValid() bool {
	switch s {
	case DraftStatusDraft, DraftStatusSending, DraftStatusSent, DraftStatusFailed:
		return true
	}
	return false
}

func ParseDraftStatusFromString(s string) (DraftStatus, error) {
	st := DraftStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid draft status %q", ErrValidation, s)
	}
	return st, nil
}

// Channel represents the delivery channel for member messages.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) String() string { return string(c) }

func (c Channel) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelWhatsApp:
		return true
	}
	return false
}

func ParseChannelFromString(s string) (Channel, error) {
	ch := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !ch.IsValid() {
		return "", fmt.Errorf("%w: invalid channel %q", ErrValidation, s)
	}
	return ch, nil
}

// MessageDraft is an unsent, editable candidate notification for a member.
// At most one draft may be open (status=draft) per (member, type) pair.
type MessageDraft struct {
	ID            string      `gorm:"type:uuid;primaryKey"`
	MemberID      string      `gorm:"type:uuid;not null"`
	BranchID      string      `gorm:"type:uuid;not null"`
	Phone         string      `gorm:"type:varchar(20);not null"`
	Type          MessageType `gorm:"type:varchar(10);not null"`
	Message       string      `gorm:"type:text;not null"`
	Status        DraftStatus `gorm:"type:varchar(10);not null"`
	Channel       *Channel    `gorm:"type:varchar(10)"`
	FailureReason *string     `gorm:"type:text"`
	SentAt        *time.Time
	SentBy        *string `gorm:"type:uuid"`
	CreatedBy     *string `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (d *MessageDraft) Validate() error {
	if strings.TrimSpace(d.MemberID) == "" {
		return fmt.Errorf("%w: member id is required", ErrValidation)
	}
	if strings.TrimSpace(d.BranchID) == "" {
		return fmt.Errorf("%w: branch id is required", ErrValidation)
	}
	if strings.TrimSpace(d.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("%w: invalid message type %q", ErrValidation, d.Type)
	}
	if strings.TrimSpace(d.Message) == "" {
		return fmt.Errorf("%w: message content is required", ErrValidation)
	}
	return nil
}
