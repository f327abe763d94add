package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const defaultSMSTimeout = 10 * time.Second

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type smsResponse struct {
	MessageID string `json:"messageId"`
	ID        string `json:"id"`
	Status    string `json:"status"`
}

// SMSTransport delivers messages through an HTTP SMS gateway. When no
// endpoint is configured the transport runs in simulation mode and reports
// success with a generated provider id, which keeps development and demo
// environments working without provider credentials.
type SMSTransport struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	senderID string
}

func NewSMSTransport(endpoint, apiKey, senderID string) (*SMSTransport, error) {
	client := resty.New()
	client.SetTimeout(defaultSMSTimeout)
	client.SetRetryCount(0)

	return NewSMSTransportWithClient(endpoint, apiKey, senderID, client)
}

func NewSMSTransportWithClient(endpoint, apiKey, senderID string, client *resty.Client) (*SMSTransport, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed != "" {
		if _, err := url.ParseRequestURI(trimmed); err != nil {
			return nil, fmt.Errorf("invalid sms endpoint: %w", err)
		}
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultSMSTimeout)
	}
	client.SetRetryCount(0)

	return &SMSTransport{
		client:   client,
		endpoint: trimmed,
		apiKey:   strings.TrimSpace(apiKey),
		senderID: strings.TrimSpace(senderID),
	}, nil
}

func (t *SMSTransport) Send(ctx context.Context, phone, message string) (*SendResult, error) {
	if t == nil || t.client == nil {
		return nil, fmt.Errorf("sms transport is not initialized")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, &TransportError{Message: "phone is required"}
	}
	if strings.TrimSpace(message) == "" {
		return nil, &TransportError{Message: "message is required"}
	}

	if t.endpoint == "" {
		return t.simulate(), nil
	}

	reqBody := smsRequest{
		To:      phone,
		From:    t.senderID,
		Message: message,
	}

	response, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+t.apiKey).
		SetBody(reqBody).
		Post(t.endpoint)
	if err != nil {
		return nil, &TransportError{
			Message:   "sms provider request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	statusCode := response.StatusCode()
	responseBody := strings.TrimSpace(response.String())

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return &SendResult{
			ProviderID: providerMessageID(responseBody),
			StatusCode: statusCode,
			Body:       responseBody,
		}, nil
	}

	return nil, &TransportError{
		StatusCode: statusCode,
		Message:    providerErrorMessage(statusCode, responseBody),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func (t *SMSTransport) simulate() *SendResult {
	id := fmt.Sprintf("SMS-SIM-%s", uuid.NewString())
	return &SendResult{
		ProviderID: id,
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"messageId":%q,"status":"sent","simulated":true}`, id),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func providerErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("sms provider returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}

func providerMessageID(body string) string {
	if body == "" {
		return ""
	}

	var parsed smsResponse
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return ""
	}
	if parsed.MessageID != "" {
		return parsed.MessageID
	}
	return parsed.ID
}
