package handlers

import (
	"errors"

	"bloodlink-api/internal/core/domain"
	"bloodlink-api/internal/core/services"
	"bloodlink-api/internal/pkg/pagination"
	"bloodlink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FundHandler handles fund record endpoints
type FundHandler struct {
	fundService *services.FundService
}

// NewFundHandler creates a new fund handler
func NewFundHandler(fundService *services.FundService) *FundHandler {
	return &FundHandler{fundService: fundService}
}

// Create handles recording a monetary contribution (admin)
// @Summary Record contribution
// @Description Record a monetary contribution
// @Tags Funds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateFundInput true "Contribution data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /funds [post]
func (h *FundHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateFundInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.DonorName == "" {
		return response.BadRequest(c, "Donor name is required")
	}

	record, err := h.fundService.Create(c.Context(), &input, userID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			return response.BadRequest(c, "Amount must be greater than zero")
		}
		return response.InternalServerError(c, "Failed to record contribution")
	}

	return response.Created(c, "Contribution recorded", record)
}

// List handles listing fund records
// @Summary List contributions
// @Description List fund records with pagination and running total
// @Tags Funds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /funds [get]
func (h *FundHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.fundService.List(c.Context(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list contributions")
	}

	return response.Success(c, "Contributions retrieved", result)
}

// Delete handles removing a fund record (admin)
// @Summary Delete contribution
// @Description Remove a fund record
// @Tags Funds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /funds/{id} [delete]
func (h *FundHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid record ID")
	}

	if err := h.fundService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrFundNotFound) {
			return response.NotFound(c, "Fund record not found")
		}
		return response.InternalServerError(c, "Failed to delete record")
	}

	return response.Success(c, "Fund record deleted", nil)
}
