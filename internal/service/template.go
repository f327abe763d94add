package service

import (
	"fmt"
	"time"

	"github.com/umutkoseali/gymnotify/internal/domain"
)

const messageDateLayout = "02 Jan 2006"

// RenderMessage produces the outbound text for a member and message type.
// Custom messages bypass templates entirely and are provided by the caller.
func RenderMessage(member *domain.Member, messageType domain.MessageType, orgName string, now time.Time) string {
	name := member.Name
	expiry := member.ExpiryDate.Format(messageDateLayout)

	switch messageType {
	case domain.MessageTypeExpiry:
		return fmt.Sprintf(
			"Hi %s, your gym membership expires on %s. Please renew to continue enjoying our services. Contact us for renewal. - %s",
			name, expiry, orgName,
		)
	case domain.MessageTypeWelcome:
		return fmt.Sprintf(
			"Welcome %s! We're excited to have you at %s. Your membership is active until %s. See you at the gym! - %s",
			name, orgName, expiry, orgName,
		)
	case domain.MessageTypePayment:
		return fmt.Sprintf(
			"Hi %s, this is a reminder to renew your gym membership. Visit us or call to complete your payment. - %s",
			name, orgName,
		)
	case domain.MessageTypeOffer:
		monthEnd := endOfMonth(now).Format("02 Jan")
		return fmt.Sprintf(
			"Hi %s, special offer just for you! Get 20%% off on membership renewal this month. Valid until %s. - %s",
			name, monthEnd, orgName,
		)
	default:
		return fmt.Sprintf("Hi %s, this is a message from %s.", name, orgName)
	}
}

func endOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.Add(-time.Nanosecond)
}
