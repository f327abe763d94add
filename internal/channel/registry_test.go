package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/umutkoseali/gymnotify/internal/domain"
)

func TestRegistryResolveUnknownChannel(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	transport, _ := NewSMSTransport("", "", "GYMNOTIFY")
	registry.Register(domain.ChannelSMS, transport)

	if _, err := registry.Resolve(domain.ChannelSMS); err != nil {
		t.Fatalf("Resolve(sms) error = %v", err)
	}

	_, err := registry.Resolve(domain.Channel("pigeon"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Resolve(pigeon) error = %v, want ErrUnsupported", err)
	}
}

func TestWhatsAppTransportAlwaysFailsPermanently(t *testing.T) {
	t.Parallel()

	transport := NewWhatsAppTransport()

	_, err := transport.Send(context.Background(), "+919876543210", "hello")
	if err == nil {
		t.Fatal("expected error")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if transportErr.Transient {
		t.Fatal("whatsapp failure should be permanent")
	}
	if want := "whatsapp transport not implemented"; transportErr.Message != want {
		t.Fatalf("message = %q, want %q", transportErr.Message, want)
	}
}
