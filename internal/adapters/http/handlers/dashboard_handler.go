package handlers

import (
	"bloodlink-api/internal/core/services"
	"bloodlink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	userService      *services.UserService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService, userService *services.UserService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		userService:      userService,
	}
}

// GetAdminDashboard returns admin dashboard data
// @Summary Admin Dashboard
// @Description Get admin dashboard with platform overview (Admin only)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get admin dashboard")
	}

	return response.Success(c, "Admin dashboard retrieved successfully", data)
}

// GetVolunteerDashboard returns volunteer dashboard data
// @Summary Volunteer Dashboard
// @Description Get volunteer dashboard with the open request queue (Volunteer/Admin)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/volunteer [get]
func (h *DashboardHandler) GetVolunteerDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetVolunteerDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get volunteer dashboard")
	}

	return response.Success(c, "Volunteer dashboard retrieved successfully", data)
}

// GetDonorDashboard returns donor dashboard data
// @Summary Donor Dashboard
// @Description Get donor dashboard with own requests, commitments and matching requests
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard/donor [get]
func (h *DashboardHandler) GetDonorDashboard(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.donorDashboard(c, userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get donor dashboard")
	}

	return response.Success(c, "Donor dashboard retrieved successfully", data)
}

// GetMyDashboard returns dashboard based on user role
// @Summary My Dashboard
// @Description Get dashboard based on current user's role (auto-detect)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetMyDashboard(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var data interface{}
	var err error

	switch role {
	case "ADMIN":
		data, err = h.dashboardService.GetAdminDashboard(c.Context())
	case "VOLUNTEER":
		data, err = h.dashboardService.GetVolunteerDashboard(c.Context())
	default:
		data, err = h.donorDashboard(c, userID)
	}

	if err != nil {
		return response.InternalServerError(c, "Failed to get dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", fiber.Map{
		"role": role,
		"data": data,
	})
}

// donorDashboard loads the donor's blood group so matching requests line up
func (h *DashboardHandler) donorDashboard(c *fiber.Ctx, userID uint) (interface{}, error) {
	bloodGroup := ""
	if user, err := h.userService.GetByID(c.Context(), userID); err == nil {
		bloodGroup = user.BloodGroup
	}
	return h.dashboardService.GetDonorDashboard(c.Context(), userID, bloodGroup)
}
