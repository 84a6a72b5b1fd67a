// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/shortsintel/shorts-intel-hub/app/dto"
	businessflow "github.com/shortsintel/shorts-intel-hub/business_flow"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/utils"
)

// TopicHandlerInterface defines the contract for topic handlers.
type TopicHandlerInterface interface {
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Top10(c fiber.Ctx) error
	Export(c fiber.Ctx) error
	Approve(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
}

// TopicHandler handles topic requests.
type TopicHandler struct {
	flow      businessflow.TopicFlow
	validator *validator.Validate
}

// NewTopicHandler creates a new topic handler.
func NewTopicHandler(flow businessflow.TopicFlow) *TopicHandler {
	return &TopicHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *TopicHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TopicHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List pages through topics matching the query filter.
func (h *TopicHandler) List(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	req := dto.ListTopicsRequest{
		Market: c.Query("market"),
		Gender: c.Query("gender"),
		Age:    c.Query("age"),
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.ListTopics(h.createRequestContext(c, "/api/v1/topics"), &req)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "PAGE_INVALID", "SORT_INVALID":
				return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list topics", "TOPIC_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Topics retrieved", res)
}

// Get returns one topic by UUID.
func (h *TopicHandler) Get(c fiber.Ctx) error {
	topicUUID := c.Params("uuid")

	res, err := h.flow.GetTopic(h.createRequestContext(c, "/api/v1/topics/:uuid"), topicUUID)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "TOPIC_UUID_INVALID":
				return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
			case "TOPIC_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, be.Message, be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get topic", "TOPIC_GET_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Topic retrieved", res)
}

// Top10 returns the ranked shortlist of one segment.
func (h *TopicHandler) Top10(c fiber.Ctx) error {
	req := dto.TopTopicsRequest{
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

	res, err := h.flow.TopTopics(h.createRequestContext(c, "/api/v1/topics/top10"), &req)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok && be.Code == "SEGMENT_INVALID" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load top topics", "TOP_TOPICS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Top topics retrieved", res)
}

// Export downloads the shortlist workbook, one sheet per market.
func (h *TopicHandler) Export(c fiber.Ctx) error {
	var market *models.Market
	if m := c.Query("market"); m != "" {
		market = utils.ToPtr(models.Market(m))
	}

	filename, data, err := h.flow.ExportShortlists(h.createRequestContextWithTimeout(c, "/api/v1/topics/export", 2*time.Minute), market)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export shortlists", "SHORTLIST_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.Send(data)
}

// Approve marks an active topic approved and pushes it downstream.
func (h *TopicHandler) Approve(c fiber.Ctx) error {
	var req dto.ApproveTopicRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.ApproveTopic(h.createRequestContext(c, "/api/v1/topics/:uuid/approve"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsTopicUUIDInvalid(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid topic UUID", "TOPIC_UUID_INVALID", err.Error())
		case businessflow.IsTopicNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Topic not found", "TOPIC_NOT_FOUND", err.Error())
		case businessflow.IsTopicNotActive(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Topic is not in active status", "TOPIC_NOT_ACTIVE", err.Error())
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to approve topic", "TOPIC_APPROVE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Topic approved", res)
}

// Delete soft-deletes one topic.
func (h *TopicHandler) Delete(c fiber.Ctx) error {
	var req dto.DeleteTopicRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.DeleteTopic(h.createRequestContext(c, "/api/v1/topics/:uuid"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsTopicUUIDInvalid(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid topic UUID", "TOPIC_UUID_INVALID", err.Error())
		case businessflow.IsTopicNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Topic not found", "TOPIC_NOT_FOUND", err.Error())
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete topic", "TOPIC_DELETE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Topic deleted", res)
}

// Stats aggregates topic counts per market.
func (h *TopicHandler) Stats(c fiber.Ctx) error {
	var market *models.Market
	if m := c.Query("market"); m != "" {
		market = utils.ToPtr(models.Market(m))
	}

	res, err := h.flow.Stats(h.createRequestContext(c, "/api/v1/stats"), market)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load stats", "STATS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Stats retrieved", res)
}

func (h *TopicHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *TopicHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
