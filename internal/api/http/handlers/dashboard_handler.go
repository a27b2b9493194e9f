package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itsd-platform/helpdesk-service/internal/auth"
	"github.com/itsd-platform/helpdesk-service/internal/service"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

// DashboardHandler serves KPI and chart aggregates.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// KPIs GET /dashboard/kpis.
func (h *DashboardHandler) KPIs(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	kpis, err := h.service.KPIs(c.UserContext(), principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": kpis})
}

// Charts GET /dashboard/charts.
func (h *DashboardHandler) Charts(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	charts, err := h.service.Charts(c.UserContext(), principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": charts})
}
