package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/repository"
)

type PaymentHandler struct {
	service MembershipService
}

func NewPaymentHandler(service MembershipService) (*PaymentHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("membership service is required")
	}
	return &PaymentHandler{service: service}, nil
}

func RegisterPaymentRoutes(router fiber.Router, service MembershipService) error {
	h, err := NewPaymentHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/payments", h.RecordPayment)
	v1.Get("/payments", h.ListPayments)
	v1.Get("/payments/:id", h.GetPayment)

	return nil
}

type recordPaymentRequest struct {
	MemberID       string  `json:"memberId"`
	Amount         float64 `json:"amount"`
	Mode           string  `json:"mode"`
	ValidFrom      *string `json:"validFrom,omitempty"`
	ValidUntil     string  `json:"validUntil"`
	TransactionRef *string `json:"transactionRef,omitempty"`
	Remarks        *string `json:"remarks,omitempty"`
}

type paymentResponse struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	MemberID       string    `json:"memberId"`
	BranchID       string    `json:"branchId"`
	Amount         float64   `json:"amount"`
	Mode           string    `json:"mode"`
	ValidFrom      time.Time `json:"validFrom"`
	ValidUntil     time.Time `json:"validUntil"`
	TransactionRef *string   `json:"transactionRef,omitempty"`
	Remarks        *string   `json:"remarks,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type listPaymentsResponse struct {
	Data []paymentResponse `json:"data"`
	Meta listMeta          `json:"meta"`
}

func (h *PaymentHandler) RecordPayment(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req recordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	mode, err := domain.ParsePaymentModeFromString(req.Mode)
	if err != nil {
		return toHTTPError(err)
	}

	validUntil, err := parseRFC3339Query(req.ValidUntil, "validUntil")
	if err != nil {
		return toHTTPError(err)
	}

	payment := domain.Payment{
		MemberID:       strings.TrimSpace(req.MemberID),
		BranchID:       branchID,
		Amount:         req.Amount,
		Mode:           mode,
		TransactionRef: req.TransactionRef,
		Remarks:        req.Remarks,
		CollectedBy:    requestUserID(c),
	}
	if validUntil != nil {
		payment.ValidUntil = *validUntil
	}
	if req.ValidFrom != nil {
		validFrom, parseErr := parseRFC3339Query(*req.ValidFrom, "validFrom")
		if parseErr != nil {
			return toHTTPError(parseErr)
		}
		if validFrom != nil {
			payment.ValidFrom = *validFrom
		}
	}

	created, err := h.service.RecordPayment(c.Context(), &payment)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toPaymentResponse(created))
}

func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	id := strings.TrimSpace(c.Params("id"))
	payment, err := h.service.GetPayment(c.Context(), branchID, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toPaymentResponse(payment))
}

func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return toHTTPError(err)
	}

	params := repository.PaymentListParams{
		Page:     page,
		PageSize: pageSize,
	}

	if rawMemberID := strings.TrimSpace(c.Query("memberId")); rawMemberID != "" {
		params.MemberID = &rawMemberID
	}
	if rawMode := strings.TrimSpace(c.Query("mode")); rawMode != "" {
		mode, err := domain.ParsePaymentModeFromString(rawMode)
		if err != nil {
			return toHTTPError(err)
		}
		params.Mode = &mode
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

	payments, total, err := h.service.ListPayments(c.Context(), branchID, params)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]paymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, toPaymentResponse(&payments[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listPaymentsResponse{
		Data: responses,
		Meta: listMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func toPaymentResponse(p *domain.Payment) paymentResponse {
	if p == nil {
		return paymentResponse{}
	}

	return paymentResponse{
		ID:             p.ID,
		Code:           p.Code,
		MemberID:       p.MemberID,
		BranchID:       p.BranchID,
		Amount:         p.Amount,
		Mode:           p.Mode.String(),
		ValidFrom:      p.ValidFrom,
		ValidUntil:     p.ValidUntil,
		TransactionRef: p.TransactionRef,
		Remarks:        p.Remarks,
		CreatedAt:      p.CreatedAt,
	}
}
