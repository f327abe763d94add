package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/repository"
	"github.com/umutkoseali/gymnotify/internal/service"
	"github.com/umutkoseali/gymnotify/internal/transport"
	"go.uber.org/zap"
)

type stubMessageService struct {
	generateFn func(ctx context.Context, params service.GenerateParams) (*service.GenerateReport, error)
	getFn      func(ctx context.Context, branchID, id string) (*domain.MessageDraft, error)
	listFn     func(ctx context.Context, branchID string, params repository.DraftListParams) ([]domain.MessageDraft, int64, error)
	updateFn   func(ctx context.Context, branchID, id, message string) (*domain.MessageDraft, error)
	deleteFn   func(ctx context.Context, branchID string, ids []string) (int64, error)
}

func (s *stubMessageService) GenerateDrafts(ctx context.Context, params service.GenerateParams) (*service.GenerateReport, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, params)
	}
	return &service.GenerateReport{}, nil
}

func (s *stubMessageService) GetDraft(ctx context.Context, branchID, id string) (*domain.MessageDraft, error) {
	if s.getFn != nil {
		return s.getFn(ctx, branchID, id)
	}
	return nil, domain.ErrNotFound
}

func (s *stubMessageService) ListDrafts(ctx context.Context, branchID string, params repository.DraftListParams) ([]domain.MessageDraft, int64, error) {
	if s.listFn != nil {
		return s.listFn(ctx, branchID, params)
	}
	return nil, 0, nil
}

func (s *stubMessageService) UpdateDraftMessage(ctx context.Context, branchID, id, message string) (*domain.MessageDraft, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, branchID, id, message)
	}
	return nil, domain.ErrNotFound
}

func (s *stubMessageService) DeleteDrafts(ctx context.Context, branchID string, ids []string) (int64, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, branchID, ids)
	}
	return 0, nil
}

type stubDispatchService struct {
	sendFn func(ctx context.Context, branchID string, ids []string, ch domain.Channel, sentBy *string) (*service.SendReport, error)
}

func (s *stubDispatchService) SendDrafts(ctx context.Context, branchID string, ids []string, ch domain.Channel, sentBy *string) (*service.SendReport, error) {
	if s.sendFn != nil {
		return s.sendFn(ctx, branchID, ids, ch, sentBy)
	}
	return &service.SendReport{}, nil
}

type stubLogLister struct {
	listFn func(ctx context.Context, branchID string, params repository.LogListParams) ([]domain.MessageLog, int64, error)
}

func (s *stubLogLister) List(ctx context.Context, branchID string, params repository.LogListParams) ([]domain.MessageLog, int64, error) {
	if s.listFn != nil {
		return s.listFn(ctx, branchID, params)
	}
	return nil, 0, nil
}

func newMessageTestApp(t *testing.T, messages MessageService, dispatch DispatchService, logs MessageLogLister) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})
	if err := RegisterMessageRoutes(app, messages, dispatch, logs); err != nil {
		t.Fatalf("RegisterMessageRoutes() error = %v", err)
	}
	return app
}

func performRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Branch-ID", "branch-1")
	req.Header.Set("X-User-ID", "user-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}
	_ = resp.Body.Close()
	return resp, respBody
}

func TestMessageHandlerGenerateDrafts(t *testing.T) {
	t.Parallel()

	messages := &stubMessageService{
		generateFn: func(ctx context.Context, params service.GenerateParams) (*service.GenerateReport, error) {
			if params.BranchID != "branch-1" {
				t.Errorf("branch id = %s, want branch-1", params.BranchID)
			}
			if params.Type != domain.MessageTypeExpiry {
				t.Errorf("type = %s, want expiry", params.Type)
			}
			if params.CreatedBy == nil || *params.CreatedBy != "user-1" {
				t.Errorf("created by = %v, want user-1", params.CreatedBy)
			}
			return &service.GenerateReport{
				Created: []domain.MessageDraft{{ID: "draft-1", Status: domain.DraftStatusDraft}},
				Skipped: 2,
			}, nil
		},
	}

	app := newMessageTestApp(t, messages, &stubDispatchService{}, &stubLogLister{})

	resp, body := performRequest(t, app, http.MethodPost, "/v1/messages/drafts/generate", `{"type":"expiry"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		Created []map[string]any `json:"created"`
		Skipped int              `json:"skipped"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if len(out.Created) != 1 || out.Skipped != 2 {
		t.Fatalf("created = %d skipped = %d, want 1/2", len(out.Created), out.Skipped)
	}
}

func TestMessageHandlerGenerateDraftsInvalidType(t *testing.T) {
	t.Parallel()

	app := newMessageTestApp(t, &stubMessageService{}, &stubDispatchService{}, &stubLogLister{})

	resp, _ := performRequest(t, app, http.MethodPost, "/v1/messages/drafts/generate", `{"type":"newsletter"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMessageHandlerRequiresBranchHeader(t *testing.T) {
	t.Parallel()

	app := newMessageTestApp(t, &stubMessageService{}, &stubDispatchService{}, &stubLogLister{})

	req := httptest.NewRequest(http.MethodGet, "/v1/messages/drafts", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without X-Branch-ID", resp.StatusCode)
	}
}

func TestMessageHandlerSendDrafts(t *testing.T) {
	t.Parallel()

	dispatch := &stubDispatchService{
		sendFn: func(ctx context.Context, branchID string, ids []string, ch domain.Channel, sentBy *string) (*service.SendReport, error) {
			if ch != domain.ChannelSMS {
				t.Errorf("channel = %s, want sms", ch)
			}
			if len(ids) != 2 {
				t.Errorf("ids = %v, want two", ids)
			}
			return &service.SendReport{
				Sent:   1,
				Failed: 1,
				Outcomes: []service.SendOutcome{
					{DraftID: "draft-1", Status: service.OutcomeSent},
					{DraftID: "draft-2", Status: service.OutcomeFailed, Error: "invalid number"},
				},
			}, nil
		},
	}

	app := newMessageTestApp(t, &stubMessageService{}, dispatch, &stubLogLister{})

	resp, body := performRequest(t, app, http.MethodPost, "/v1/messages/send",
		`{"draftIds":["draft-1","draft-2"],"channel":"sms"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var out sendDraftsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if out.Sent != 1 || out.Failed != 1 || len(out.Outcomes) != 2 {
		t.Fatalf("report = %+v, want 1 sent 1 failed", out)
	}
}

func TestMessageHandlerSendDraftsUnknownChannelPassesThrough(t *testing.T) {
	t.Parallel()

	dispatch := &stubDispatchService{
		sendFn: func(ctx context.Context, branchID string, ids []string, ch domain.Channel, sentBy *string) (*service.SendReport, error) {
			if ch != domain.Channel("email") {
				t.Errorf("channel = %s, want email forwarded untouched", ch)
			}
			return &service.SendReport{
				Failed: 1,
				Outcomes: []service.SendOutcome{
					{DraftID: "draft-1", Status: service.OutcomeFailed, Error: "unsupported channel"},
				},
			}, nil
		},
	}

	app := newMessageTestApp(t, &stubMessageService{}, dispatch, &stubLogLister{})

	resp, body := performRequest(t, app, http.MethodPost, "/v1/messages/send",
		`{"draftIds":["draft-1"],"channel":"email"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var out sendDraftsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Failed != 1 || len(out.Outcomes) != 1 || out.Outcomes[0].Status != "failed" {
		t.Fatalf("report = %+v, want one failed outcome", out)
	}
}

func TestMessageHandlerSendDraftsValidationMapsTo400(t *testing.T) {
	t.Parallel()

	dispatch := &stubDispatchService{
		sendFn: func(ctx context.Context, branchID string, ids []string, ch domain.Channel, sentBy *string) (*service.SendReport, error) {
			return nil, fmt.Errorf("%w: no open drafts matched the given ids", domain.ErrValidation)
		},
	}

	app := newMessageTestApp(t, &stubMessageService{}, dispatch, &stubLogLister{})

	resp, _ := performRequest(t, app, http.MethodPost, "/v1/messages/send",
		`{"draftIds":["draft-1"],"channel":"sms"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMessageHandlerUpdateDraftConflict(t *testing.T) {
	t.Parallel()

	messages := &stubMessageService{
		updateFn: func(ctx context.Context, branchID, id, message string) (*domain.MessageDraft, error) {
			return nil, fmt.Errorf("%w: draft is no longer editable", domain.ErrConflict)
		},
	}

	app := newMessageTestApp(t, messages, &stubDispatchService{}, &stubLogLister{})

	resp, _ := performRequest(t, app, http.MethodPut, "/v1/messages/drafts/draft-1", `{"message":"updated"}`)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestMessageHandlerListLogs(t *testing.T) {
	t.Parallel()

	logs := &stubLogLister{
		listFn: func(ctx context.Context, branchID string, params repository.LogListParams) ([]domain.MessageLog, int64, error) {
			if params.Type == nil || *params.Type != domain.MessageTypeExpiry {
				t.Errorf("type filter = %v, want expiry", params.Type)
			}
			return []domain.MessageLog{{ID: "log-1", Outcome: domain.LogOutcomeSent, Channel: domain.ChannelSMS}}, 1, nil
		},
	}

	app := newMessageTestApp(t, &stubMessageService{}, &stubDispatchService{}, logs)

	resp, body := performRequest(t, app, http.MethodGet, "/v1/messages/logs?type=expiry", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var out listLogsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if len(out.Data) != 1 || out.Meta.Total != 1 {
		t.Fatalf("logs = %+v, want one entry", out)
	}
}
