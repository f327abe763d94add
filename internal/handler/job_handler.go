package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/umutkoseali/gymnotify/internal/service"
)

type ExpiryScanRunner interface {
	Run(ctx context.Context) (*service.ScanSummary, error)
}

type JobHandler struct {
	scan ExpiryScanRunner
}

func NewJobHandler(scan ExpiryScanRunner) (*JobHandler, error) {
	if scan == nil {
		return nil, fmt.Errorf("expiry scan runner is required")
	}
	return &JobHandler{scan: scan}, nil
}

func RegisterJobRoutes(router fiber.Router, scan ExpiryScanRunner) error {
	h, err := NewJobHandler(scan)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/jobs/expiry-scan", h.TriggerExpiryScan)

	return nil
}

// TriggerExpiryScan runs the sweep on demand, outside the scheduler cadence.
func (h *JobHandler) TriggerExpiryScan(c *fiber.Ctx) error {
	summary, err := h.scan.Run(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"draftsCreated":  summary.DraftsCreated,
		"draftsSkipped":  summary.DraftsSkipped,
		"membersExpired": summary.MembersExpired,
	})
}
