package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/repository"
	"github.com/umutkoseali/gymnotify/internal/service"
)

type MessageService interface {
	GenerateDrafts(ctx context.Context, params service.GenerateParams) (*service.GenerateReport, error)
	GetDraft(ctx context.Context, branchID, id string) (*domain.MessageDraft, error)
	ListDrafts(ctx context.Context, branchID string, params repository.DraftListParams) ([]domain.MessageDraft, int64, error)
	UpdateDraftMessage(ctx context.Context, branchID, id, message string) (*domain.MessageDraft, error)
	DeleteDrafts(ctx context.Context, branchID string, ids []string) (int64, error)
}

type DispatchService interface {
	SendDrafts(ctx context.Context, branchID string, ids []string, ch domain.Channel, sentBy *string) (*service.SendReport, error)
}

type MessageLogLister interface {
	List(ctx context.Context, branchID string, params repository.LogListParams) ([]domain.MessageLog, int64, error)
}

type MessageHandler struct {
	messages MessageService
	dispatch DispatchService
	logs     MessageLogLister
}

func NewMessageHandler(messages MessageService, dispatch DispatchService, logs MessageLogLister) (*MessageHandler, error) {
	if messages == nil {
		return nil, fmt.Errorf("message service is required")
	}
	if dispatch == nil {
		return nil, fmt.Errorf("dispatch service is required")
	}
	if logs == nil {
		return nil, fmt.Errorf("log lister is required")
	}
	return &MessageHandler{messages: messages, dispatch: dispatch, logs: logs}, nil
}

func RegisterMessageRoutes(router fiber.Router, messages MessageService, dispatch DispatchService, logs MessageLogLister) error {
	h, err := NewMessageHandler(messages, dispatch, logs)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/messages/drafts/generate", h.GenerateDrafts)
	v1.Get("/messages/drafts", h.ListDrafts)
	v1.Get("/messages/drafts/:id", h.GetDraft)
	v1.Put("/messages/drafts/:id", h.UpdateDraft)
	v1.Delete("/messages/drafts", h.DeleteDrafts)
	v1.Post("/messages/send", h.SendDrafts)
	v1.Get("/messages/logs", h.ListLogs)

	return nil
}

type generateDraftsRequest struct {
	Type      string   `json:"type"`
	MemberIDs []string `json:"memberIds,omitempty"`
	Message   *string  `json:"message,omitempty"`
}

type generateDraftsResponse struct {
	Created []draftResponse `json:"created"`
	Skipped int             `json:"skipped"`
}

type updateDraftRequest struct {
	Message string `json:"message"`
}

type deleteDraftsRequest struct {
	DraftIDs []string `json:"draftIds"`
}

type sendDraftsRequest struct {
	DraftIDs []string `json:"draftIds"`
	Channel  string   `json:"channel"`
}

type draftResponse struct {
	ID            string     `json:"id"`
	MemberID      string     `json:"memberId"`
	BranchID      string     `json:"branchId"`
	Phone         string     `json:"phone"`
	Type          string     `json:"type"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	Channel       *string    `json:"channel,omitempty"`
	FailureReason *string    `json:"failureReason,omitempty"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type listDraftsResponse struct {
	Data []draftResponse `json:"data"`
	Meta listMeta        `json:"meta"`
}

type sendOutcomeItem struct {
	DraftID string `json:"draftId"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type sendDraftsResponse struct {
	Sent     int               `json:"sent"`
	Failed   int               `json:"failed"`
	Skipped  int               `json:"skipped"`
	Outcomes []sendOutcomeItem `json:"outcomes"`
}

type logResponse struct {
	ID               string    `json:"id"`
	MemberID         string    `json:"memberId"`
	BranchID         string    `json:"branchId"`
	Phone            string    `json:"phone"`
	Type             string    `json:"type"`
	Message          string    `json:"message"`
	Channel          string    `json:"channel"`
	Outcome          string    `json:"outcome"`
	ProviderID       *string   `json:"providerId,omitempty"`
	ProviderResponse *string   `json:"providerResponse,omitempty"`
	SentAt           time.Time `json:"sentAt"`
	SentBy           *string   `json:"sentBy,omitempty"`
}

type listLogsResponse struct {
	Data []logResponse `json:"data"`
	Meta listMeta      `json:"meta"`
}

func (h *MessageHandler) GenerateDrafts(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req generateDraftsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	messageType, err := domain.ParseMessageTypeFromString(req.Type)
	if err != nil {
		return toHTTPError(err)
	}

	report, err := h.messages.GenerateDrafts(c.Context(), service.GenerateParams{
		BranchID:  branchID,
		Type:      messageType,
		MemberIDs: req.MemberIDs,
		Message:   req.Message,
		CreatedBy: requestUserID(c),
	})
	if err != nil {
		return toHTTPError(err)
	}

	created := make([]draftResponse, 0, len(report.Created))
	for i := range report.Created {
		created = append(created, toDraftResponse(&report.Created[i]))
	}

	return c.Status(fiber.StatusCreated).JSON(generateDraftsResponse{
		Created: created,
		Skipped: report.Skipped,
	})
}

func (h *MessageHandler) GetDraft(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	id := strings.TrimSpace(c.Params("id"))
	draft, err := h.messages.GetDraft(c.Context(), branchID, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toDraftResponse(draft))
}

func (h *MessageHandler) ListDrafts(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return toHTTPError(err)
	}

	params := repository.DraftListParams{
		Page:     page,
		PageSize: pageSize,
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseDraftStatusFromString(rawStatus)
		if err != nil {
			return toHTTPError(err)
		}
		params.Status = &status
	}
	if rawType := strings.TrimSpace(c.Query("type")); rawType != "" {
		messageType, err := domain.ParseMessageTypeFromString(rawType)
		if err != nil {
			return toHTTPError(err)
		}
		params.Type = &messageType
	}
	if rawMemberID := strings.TrimSpace(c.Query("memberId")); rawMemberID != "" {
		params.MemberID = &rawMemberID
	}

	drafts, total, err := h.messages.ListDrafts(c.Context(), branchID, params)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]draftResponse, 0, len(drafts))
	for i := range drafts {
		responses = append(responses, toDraftResponse(&drafts[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listDraftsResponse{
		Data: responses,
		Meta: listMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func (h *MessageHandler) UpdateDraft(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req updateDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id := strings.TrimSpace(c.Params("id"))
	draft, err := h.messages.UpdateDraftMessage(c.Context(), branchID, id, req.Message)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toDraftResponse(draft))
}

func (h *MessageHandler) DeleteDrafts(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req deleteDraftsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	deleted, err := h.messages.DeleteDrafts(c.Context(), branchID, req.DraftIDs)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"deleted": deleted,
	})
}

func (h *MessageHandler) SendDrafts(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req sendDraftsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	// The channel is passed through as-is: one without a registered
	// transport surfaces as per-draft failures in the report, not a 400.
	report, err := h.dispatch.SendDrafts(c.Context(), branchID, req.DraftIDs, domain.Channel(req.Channel), requestUserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	outcomes := make([]sendOutcomeItem, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		outcomes = append(outcomes, sendOutcomeItem{
			DraftID: outcome.DraftID,
			Phone:   outcome.Phone,
			Status:  string(outcome.Status),
			Error:   outcome.Error,
		})
	}

	return c.Status(fiber.StatusOK).JSON(sendDraftsResponse{
		Sent:     report.Sent,
		Failed:   report.Failed,
		Skipped:  report.Skipped,
		Outcomes: outcomes,
	})
}

func (h *MessageHandler) ListLogs(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return toHTTPError(err)
	}

	params := repository.LogListParams{
		Page:     page,
		PageSize: pageSize,
	}

	if rawMemberID := strings.TrimSpace(c.Query("memberId")); rawMemberID != "" {
		params.MemberID = &rawMemberID
	}
	if rawType := strings.TrimSpace(c.Query("type")); rawType != "" {
		messageType, err := domain.ParseMessageTypeFromString(rawType)
		if err != nil {
			return toHTTPError(err)
		}
		params.Type = &messageType
	}
	if rawChannel := strings.TrimSpace(c.Query("channel")); rawChannel != "" {
		ch, err := domain.ParseChannelFromString(rawChannel)
		if err != nil {
			return toHTTPError(err)
		}
		params.Channel = &ch
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return toHTTPError(err)
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return toHTTPError(err)
	}
	params.From = from
	params.To = to

	logs, total, err := h.logs.List(c.Context(), branchID, params)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]logResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, toLogResponse(&logs[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listLogsResponse{
		Data: responses,
		Meta: listMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func toDraftResponse(d *domain.MessageDraft) draftResponse {
	if d == nil {
		return draftResponse{}
	}

	resp := draftResponse{
		ID:            d.ID,
		MemberID:      d.MemberID,
		BranchID:      d.BranchID,
		Phone:         d.Phone,
		Type:          d.Type.String(),
		Message:       d.Message,
		Status:        d.Status.String(),
		FailureReason: d.FailureReason,
		SentAt:        d.SentAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.Channel != nil {
		ch := d.Channel.String()
		resp.Channel = &ch
	}
	return resp
}

func toLogResponse(l *domain.MessageLog) logResponse {
	if l == nil {
		return logResponse{}
	}

	return logResponse{
		ID:               l.ID,
		MemberID:         l.MemberID,
		BranchID:         l.BranchID,
		Phone:            l.Phone,
		Type:             l.Type.String(),
		Message:          l.Message,
		Channel:          l.Channel.String(),
		Outcome:          l.Outcome.String(),
		ProviderID:       l.ProviderID,
		ProviderResponse: l.ProviderResponse,
		SentAt:           l.SentAt,
		SentBy:           l.SentBy,
	}
}
