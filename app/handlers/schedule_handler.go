// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/shortsintel/shorts-intel-hub/app/dto"
	businessflow "github.com/shortsintel/shorts-intel-hub/business_flow"
	"github.com/shortsintel/shorts-intel-hub/utils"
)

// ScheduleHandlerInterface defines the contract for refresh schedule handlers.
type ScheduleHandlerInterface interface {
	List(c fiber.Ctx) error
	Update(c fiber.Ctx) error
}

// ScheduleHandler handles refresh schedule requests.
type ScheduleHandler struct {
	flow      businessflow.ScheduleFlow
	validator *validator.Validate
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(flow businessflow.ScheduleFlow) *ScheduleHandler {
	return &ScheduleHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ScheduleHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ScheduleHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List returns every market's refresh schedule.
func (h *ScheduleHandler) List(c fiber.Ctx) error {
	res, err := h.flow.ListSchedules(h.createRequestContext(c, "/api/v1/schedules"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list schedules", "SCHEDULE_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Schedules retrieved", res)
}

// Update changes one market's refresh schedule.
func (h *ScheduleHandler) Update(c fiber.Ctx) error {
	var req dto.UpdateScheduleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.Market = c.Params("market")
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.UpdateSchedule(h.createRequestContext(c, "/api/v1/schedules/:market"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "CRON_REQUIRED":
				return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
			case "SCHEDULE_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, be.Message, be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update schedule", "SCHEDULE_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Schedule updated", res)
}

func (h *ScheduleHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 30*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
