package channel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSMSTransportSendSuccess(t *testing.T) {
	t.Parallel()

	var gotBody smsRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messageId":"sms-msg-1","status":"sent"}`))
	}))
	defer server.Close()

	transport, err := NewSMSTransport(server.URL, "test-key", "GYMNOTIFY")
	if err != nil {
		t.Fatalf("NewSMSTransport() error = %v", err)
	}

	result, err := transport.Send(context.Background(), "+919876543210", "hello")
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}

	if result.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want %d", result.StatusCode, http.StatusOK)
	}
	if result.ProviderID != "sms-msg-1" {
		t.Fatalf("ProviderID = %q, want %q", result.ProviderID, "sms-msg-1")
	}
	if gotBody.To != "+919876543210" {
		t.Fatalf("request.to = %q, want %q", gotBody.To, "+919876543210")
	}
	if gotBody.From != "GYMNOTIFY" {
		t.Fatalf("request.from = %q, want %q", gotBody.From, "GYMNOTIFY")
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization = %q, want %q", gotAuth, "Bearer test-key")
	}
}

func TestSMSTransportSendStatusClassification(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		statusCode    int
		wantTransient bool
	}{
		{name: "too many requests is transient", statusCode: http.StatusTooManyRequests, wantTransient: true},
		{name: "bad request is permanent", statusCode: http.StatusBadRequest, wantTransient: false},
		{name: "internal server error is transient", statusCode: http.StatusInternalServerError, wantTransient: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte("provider failed"))
			}))
			defer server.Close()

			transport, err := NewSMSTransport(server.URL, "test-key", "GYMNOTIFY")
			if err != nil {
				t.Fatalf("NewSMSTransport() error = %v", err)
			}

			_, err = transport.Send(context.Background(), "+919876543210", "hello")
			if err == nil {
				t.Fatal("expected error")
			}

			if got := IsTransient(err); got != tc.wantTransient {
				t.Fatalf("IsTransient() = %v, want %v", got, tc.wantTransient)
			}

			var transportErr *TransportError
			if !errors.As(err, &transportErr) {
				t.Fatalf("expected TransportError, got %T", err)
			}
			if transportErr.StatusCode != tc.statusCode {
				t.Fatalf("TransportError.StatusCode = %d, want %d", transportErr.StatusCode, tc.statusCode)
			}
		})
	}
}

func TestSMSTransportSimulationWithoutEndpoint(t *testing.T) {
	t.Parallel()

	transport, err := NewSMSTransport("", "", "GYMNOTIFY")
	if err != nil {
		t.Fatalf("NewSMSTransport() error = %v", err)
	}

	result, err := transport.Send(context.Background(), "+919876543210", "hello")
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}
	if !strings.HasPrefix(result.ProviderID, "SMS-SIM-") {
		t.Fatalf("ProviderID = %q, want SMS-SIM- prefix", result.ProviderID)
	}
}

func TestSMSTransportRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	transport, err := NewSMSTransport("", "", "GYMNOTIFY")
	if err != nil {
		t.Fatalf("NewSMSTransport() error = %v", err)
	}

	if _, err := transport.Send(context.Background(), " ", "hello"); err == nil {
		t.Fatal("expected error for empty phone")
	}
	if _, err := transport.Send(context.Background(), "+919876543210", ""); err == nil {
		t.Fatal("expected error for empty message")
	}
}
