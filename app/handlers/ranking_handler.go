// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/shortsintel/shorts-intel-hub/app/dto"
	businessflow "github.com/shortsintel/shorts-intel-hub/business_flow"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/utils"
)

// RankingHandlerInterface defines the contract for ranking config and
// recalculation handlers.
type RankingHandlerInterface interface {
	ListConfigs(c fiber.Ctx) error
	UpdateConfig(c fiber.Ctx) error
	Recalculate(c fiber.Ctx) error
}

// RankingHandler handles ranking config and recalculation requests.
type RankingHandler struct {
	flow      businessflow.RankingFlow
	validator *validator.Validate
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(flow businessflow.RankingFlow) *RankingHandler {
	return &RankingHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *RankingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *RankingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListConfigs returns the active weight sets matching a partial segment key.
func (h *RankingHandler) ListConfigs(c fiber.Ctx) error {
	req := dto.ListRankingConfigsRequest{
		Market: c.Query("market"),
		Gender: c.Query("gender"),
		Age:    c.Query("age"),
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.ListRankingConfigs(h.createRequestContext(c, "/api/v1/ranking/configs"), &req)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list ranking configs", "RANKING_CONFIG_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Ranking configs retrieved", res)
}

// UpdateConfig replaces the active weight set of one segment.
func (h *RankingHandler) UpdateConfig(c fiber.Ctx) error {
	var req dto.UpdateRankingConfigRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.UpdateRankingConfig(h.createRequestContext(c, "/api/v1/ranking/configs"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "SEGMENT_INVALID", "WEIGHTS_INVALID", "UPDATED_BY_REQUIRED":
				return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update ranking config", "RANKING_CONFIG_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Ranking config updated", res)
}

// Recalculate recomputes scores and positions. With a full segment key in the
// body it recalculates one segment; with an empty key it recalculates all 30.
func (h *RankingHandler) Recalculate(c fiber.Ctx) error {
	var req dto.RecalculateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContextWithTimeout(c, "/api/v1/ranking/recalculate", 5*time.Minute)

	if req.Market == "" && req.Gender == "" && req.Age == "" {
		res, err := h.flow.RecalculateAll(ctx, req.TriggeredBy)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Recalculation failed", "RECALCULATION_FAILED", nil)
		}
		return h.SuccessResponse(c, fiber.StatusOK, "Recalculation completed", res)
	}

	segment := models.Segment{
		Market:  models.Market(req.Market),
		Gender:  models.Gender(req.Gender),
		AgeBand: models.AgeBand(req.Age),
	}
	res, err := h.flow.RecalculateSegment(ctx, segment, req.TriggeredBy)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "SEGMENT_INVALID":
				return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
			case "RANKING_CONFIG_MISSING":
				return h.ErrorResponse(c, fiber.StatusNotFound, be.Message, be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Recalculation failed", "RECALCULATION_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Recalculation completed", res)
}

func (h *RankingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *RankingHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
