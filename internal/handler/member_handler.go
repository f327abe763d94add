package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/repository"
)

type MembershipService interface {
	Enroll(ctx context.Context, member *domain.Member) (*domain.Member, error)
	GetMember(ctx context.Context, branchID, id string) (*domain.Member, error)
	ListMembers(ctx context.Context, branchID string, params repository.MemberListParams) ([]domain.Member, int64, error)
	RecordPayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	GetPayment(ctx context.Context, branchID, id string) (*domain.Payment, error)
	ListPayments(ctx context.Context, branchID string, params repository.PaymentListParams) ([]domain.Payment, int64, error)
}

type MemberHandler struct {
	service MembershipService
}

func NewMemberHandler(service MembershipService) (*MemberHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("membership service is required")
	}
	return &MemberHandler{service: service}, nil
}

func RegisterMemberRoutes(router fiber.Router, service MembershipService) error {
	h, err := NewMemberHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/members", h.EnrollMember)
	v1.Get("/members", h.ListMembers)
	v1.Get("/members/:id", h.GetMember)

	return nil
}

type enrollMemberRequest struct {
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Email          *string  `json:"email,omitempty"`
	MembershipType string   `json:"membershipType"`
	MembershipFee  float64  `json:"membershipFee"`
	JoiningDate    *string  `json:"joiningDate,omitempty"`
}

type memberResponse struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	BranchID        string     `json:"branchId"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           *string    `json:"email,omitempty"`
	MembershipType  string     `json:"membershipType"`
	MembershipFee   float64    `json:"membershipFee"`
	JoiningDate     time.Time  `json:"joiningDate"`
	ExpiryDate      time.Time  `json:"expiryDate"`
	LastPaymentDate *time.Time `json:"lastPaymentDate,omitempty"`
	Status          string     `json:"status"`
	ExpiryNotified  bool       `json:"expiryNotified"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type listMembersResponse struct {
	Data []memberResponse `json:"data"`
	Meta listMeta         `json:"meta"`
}

func (h *MemberHandler) EnrollMember(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req enrollMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	membershipType, err := domain.ParseMembershipTypeFromString(req.MembershipType)
	if err != nil {
		return toHTTPError(err)
	}

	member := domain.Member{
		BranchID:       branchID,
		Name:           strings.TrimSpace(req.Name),
		Phone:          strings.TrimSpace(req.Phone),
		Email:          req.Email,
		MembershipType: membershipType,
		MembershipFee:  req.MembershipFee,
		CreatedBy:      requestUserID(c),
	}

	if req.JoiningDate != nil {
		joined, parseErr := parseRFC3339Query(*req.JoiningDate, "joiningDate")
		if parseErr != nil {
			return toHTTPError(parseErr)
		}
		if joined != nil {
			member.JoiningDate = *joined
		}
	}

	created, err := h.service.Enroll(c.Context(), &member)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toMemberResponse(created))
}

func (h *MemberHandler) GetMember(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	id := strings.TrimSpace(c.Params("id"))
	member, err := h.service.GetMember(c.Context(), branchID, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toMemberResponse(member))
}

func (h *MemberHandler) ListMembers(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return toHTTPError(err)
	}

	params := repository.MemberListParams{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseMemberStatusFromString(rawStatus)
		if err != nil {
			return toHTTPError(err)
		}
		params.Status = &status
	}
	if rawType := strings.TrimSpace(c.Query("membershipType")); rawType != "" {
		membershipType, err := domain.ParseMembershipTypeFromString(rawType)
		if err != nil {
			return toHTTPError(err)
		}
		params.MembershipType = &membershipType
	}

	members, total, err := h.service.ListMembers(c.Context(), branchID, params)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]memberResponse, 0, len(members))
	for i := range members {
		responses = append(responses, toMemberResponse(&members[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listMembersResponse{
		Data: responses,
		Meta: listMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func toMemberResponse(m *domain.Member) memberResponse {
	if m == nil {
		return memberResponse{}
	}

	return memberResponse{
		ID:              m.ID,
		Code:            m.Code,
		BranchID:        m.BranchID,
		Name:            m.Name,
		Phone:           m.Phone,
		Email:           m.Email,
		MembershipType:  m.MembershipType.String(),
		MembershipFee:   m.MembershipFee,
		JoiningDate:     m.JoiningDate,
		ExpiryDate:      m.ExpiryDate,
		LastPaymentDate: m.LastPaymentDate,
		Status:          m.Status.String(),
		ExpiryNotified:  m.ExpiryNotified,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
