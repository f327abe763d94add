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

type AttendanceService interface {
	CheckIn(ctx context.Context, branchID, memberID string, remarks, recordedBy *string) (*domain.Attendance, error)
	CheckOut(ctx context.Context, branchID, id string) (*domain.Attendance, error)
	ListVisits(ctx context.Context, branchID string, params repository.AttendanceListParams) ([]domain.Attendance, int64, error)
	ListToday(ctx context.Context, branchID string, page, pageSize int) ([]domain.Attendance, int64, error)
}

type AttendanceHandler struct {
	attendance AttendanceService
}

func NewAttendanceHandler(attendance AttendanceService) (*AttendanceHandler, error) {
	if attendance == nil {
		return nil, fmt.Errorf("attendance service is required")
	}
	return &AttendanceHandler{attendance: attendance}, nil
}

func RegisterAttendanceRoutes(router fiber.Router, attendance AttendanceService) error {
	h, err := NewAttendanceHandler(attendance)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/attendance/check-in", h.CheckIn)
	v1.Post("/attendance/:id/check-out", h.CheckOut)
	v1.Get("/attendance/today", h.ListToday)
	v1.Get("/attendance", h.ListVisits)

	return nil
}

type checkInRequest struct {
	MemberID string  `json:"memberId"`
	Remarks  *string `json:"remarks,omitempty"`
}

type attendanceResponse struct {
	ID         string     `json:"id"`
	MemberID   string     `json:"memberId"`
	BranchID   string     `json:"branchId"`
	CheckInAt  time.Time  `json:"checkInAt"`
	CheckOutAt *time.Time `json:"checkOutAt,omitempty"`
	Remarks    *string    `json:"remarks,omitempty"`
	RecordedBy *string    `json:"recordedBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type listAttendanceResponse struct {
	Data []attendanceResponse `json:"data"`
	Meta listMeta             `json:"meta"`
}

func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req checkInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.MemberID) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "memberId is required")
	}

	visit, err := h.attendance.CheckIn(c.Context(), branchID, req.MemberID, req.Remarks, requestUserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toAttendanceResponse(visit))
}

func (h *AttendanceHandler) CheckOut(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	id := strings.TrimSpace(c.Params("id"))
	visit, err := h.attendance.CheckOut(c.Context(), branchID, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toAttendanceResponse(visit))
}

func (h *AttendanceHandler) ListVisits(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return toHTTPError(err)
	}

	params := repository.AttendanceListParams{
		Page:     page,
		PageSize: pageSize,
	}

	if rawMemberID := strings.TrimSpace(c.Query("memberId")); rawMemberID != "" {
		params.MemberID = &rawMemberID
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

	visits, total, err := h.attendance.ListVisits(c.Context(), branchID, params)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listAttendanceResponse{
		Data: toAttendanceResponses(visits),
		Meta: listMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func (h *AttendanceHandler) ListToday(c *fiber.Ctx) error {
	branchID, err := requestBranchID(c)
	if err != nil {
		return toHTTPError(err)
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return toHTTPError(err)
	}

	visits, total, err := h.attendance.ListToday(c.Context(), branchID, page, pageSize)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listAttendanceResponse{
		Data: toAttendanceResponses(visits),
		Meta: listMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func toAttendanceResponse(a *domain.Attendance) attendanceResponse {
	if a == nil {
		return attendanceResponse{}
	}

	return attendanceResponse{
		ID:         a.ID,
		MemberID:   a.MemberID,
		BranchID:   a.BranchID,
		CheckInAt:  a.CheckInAt,
		CheckOutAt: a.CheckOutAt,
		Remarks:    a.Remarks,
		RecordedBy: a.RecordedBy,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toAttendanceResponses(visits []domain.Attendance) []attendanceResponse {
	responses := make([]attendanceResponse, 0, len(visits))
	for i := range visits {
		responses = append(responses, toAttendanceResponse(&visits[i]))
	}
	return responses
}
