package handlers

import (
	"errors"

	"bloodlink-api/internal/adapters/persistence/models"
	"bloodlink-api/internal/core/domain"
	"bloodlink-api/internal/core/services"
	"bloodlink-api/internal/pkg/pagination"
	"bloodlink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler handles donation request endpoints
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// getClientIP extracts the real client IP, proxy headers first
func getClientIP(c *fiber.Ctx) string {
	ip := c.Get("X-Real-IP")
	if ip == "" {
		ip = c.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = c.IP()
	}
	return ip
}

// toResponses converts a slice of requests to DTOs
func toResponses(requests []*models.DonationRequest) []*models.DonationRequestResponse {
	responses := make([]*models.DonationRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, r.ToResponse())
	}
	return responses
}

// respondDomainError maps lifecycle and policy errors onto the response envelope
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrAccountBlocked):
		return response.Denied(c, fiber.StatusForbidden, "Account is blocked", string(domain.ReasonAccountBlocked))
	case errors.Is(err, domain.ErrNotPermitted):
		return response.Denied(c, fiber.StatusForbidden, "Action not permitted", string(domain.ReasonNotPermitted))
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Denied(c, fiber.StatusConflict, "Invalid status transition", string(domain.ReasonInvalidTransition))
	case errors.Is(err, domain.ErrConflictingState):
		return response.Denied(c, fiber.StatusConflict, "Request state changed, please reload", string(domain.ReasonConflictingState))
	case errors.Is(err, domain.ErrRequestNotFound):
		return response.NotFound(c, "Donation request not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return response.Unauthorized(c, "User account not found")
	case errors.Is(err, domain.ErrInvalidBloodGroup):
		return response.BadRequest(c, "Invalid blood group")
	case errors.Is(err, domain.ErrInvalidStatus):
		return response.BadRequest(c, "Invalid status value")
	case errors.Is(err, domain.ErrScheduleInPast):
		return response.BadRequest(c, "Scheduled time must be in the future")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}

// Create handles donation request creation
// @Summary Create donation request
// @Description Create a new donation request (donors only, starts as pending)
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRequestInput true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.BloodGroup == "" {
		return response.BadRequest(c, "Blood group is required")
	}
	if input.ScheduledAt == "" {
		return response.BadRequest(c, "Scheduled time is required")
	}

	request, err := h.requestService.Create(c.Context(), &input, userID, getClientIP(c))
	if err != nil {
		if err.Error() == "invalid scheduled_at, use RFC3339 format" {
			return response.BadRequest(c, err.Error())
		}
		return respondDomainError(c, err)
	}

	return response.Created(c, "Donation request created", request.ToResponse())
}

// List handles listing donation requests
// @Summary List donation requests
// @Description List donation requests with pagination and filters
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Param blood_group query string false "Filter by blood group"
// @Success 200 {object} response.Response
// @Router /requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	input := &services.ListInput{
		Page:       params.Page,
		Limit:      params.Limit,
		Status:     c.Query("status"),
		BloodGroup: c.Query("blood_group"),
	}

	result, err := h.requestService.List(c.Context(), input)
	if err != nil {
		return respondDomainError(c, err)
	}

	return response.Success(c, "Donation requests retrieved", result)
}

// GetByID handles getting a single donation request
// @Summary Get donation request
// @Description Get a donation request by ID
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.GetByID(c.Context(), uint(id))
	if err != nil {
		return respondDomainError(c, err)
	}

	return response.Success(c, "Donation request retrieved", request.ToResponse())
}

// GetMine handles listing the caller's own requests
// @Summary My donation requests
// @Description List requests created by the authenticated user
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /requests/my [get]
func (h *RequestHandler) GetMine(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.requestService.ListByRequester(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Success(c, "Donation requests retrieved", toResponses(requests))
}

// GetAssigned handles listing requests the caller committed to as donor
// @Summary My donation commitments
// @Description List requests where the authenticated user is the assigned donor
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /requests/assigned [get]
func (h *RequestHandler) GetAssigned(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.requestService.ListByAssignedDonor(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Success(c, "Donation requests retrieved", toResponses(requests))
}

// Donate handles a donor committing to a request
// @Summary Commit to donate
// @Description Commit the authenticated donor to a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/donate [post]
func (h *RequestHandler) Donate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.Donate(c.Context(), uint(id), userID, getClientIP(c))
	if err != nil {
		return respondDomainError(c, err)
	}

	return response.Success(c, "Donation commitment recorded", request.ToResponse())
}

// AdvanceStatus handles moving a request along its lifecycle
// @Summary Advance request status
// @Description Move a donation request toward the target status
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body services.AdvanceStatusInput true "Target status"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/status [put]
func (h *RequestHandler) AdvanceStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	var input services.AdvanceStatusInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Target == "" {
		return response.BadRequest(c, "Target status is required")
	}

	request, err := h.requestService.AdvanceStatus(c.Context(), uint(id), &input, userID, getClientIP(c))
	if err != nil {
		return respondDomainError(c, err)
	}

	return response.Success(c, "Request status updated", request.ToResponse())
}

// EditFields handles editing descriptive fields of a request
// @Summary Edit donation request
// @Description Update descriptive fields of a request (never its status)
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body services.EditFieldsInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /requests/{id} [put]
func (h *RequestHandler) EditFields(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	var input services.EditFieldsInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	request, err := h.requestService.EditFields(c.Context(), uint(id), &input, userID, getClientIP(c))
	if err != nil {
		if err.Error() == "invalid scheduled_at, use RFC3339 format" {
			return response.BadRequest(c, err.Error())
		}
		return respondDomainError(c, err)
	}

	return response.Success(c, "Donation request updated", request.ToResponse())
}

// Delete handles removing a donation request
// @Summary Delete donation request
// @Description Remove a request (admin, or owner while pending/canceled)
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [delete]
func (h *RequestHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	if err := h.requestService.Delete(c.Context(), uint(id), userID, getClientIP(c)); err != nil {
		return respondDomainError(c, err)
	}

	return response.Success(c, "Donation request deleted", nil)
}

// GetHistory handles getting the audit history of a request
// @Summary Request history
// @Description Get the audit trail of a donation request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id}/history [get]
func (h *RequestHandler) GetHistory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	events, err := h.requestService.GetHistory(c.Context(), uint(id))
	if err != nil {
		return respondDomainError(c, err)
	}

	return response.Success(c, "Request history retrieved", events)
}
