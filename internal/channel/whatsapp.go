package channel

import "context"

// WhatsAppTransport is the placeholder for the WhatsApp Business API
// integration. It exists as a contract only: every send fails with a
// permanent error, which dispatch records as a normal per-item failure.
type WhatsAppTransport struct{}

func NewWhatsAppTransport() *WhatsAppTransport {
	return &WhatsAppTransport{}
}

func (t *WhatsAppTransport) Send(ctx context.Context, phone, message string) (*SendResult, error) {
	return nil, &TransportError{
		Message:   "whatsapp transport not implemented",
		Transient: false,
	}
}
