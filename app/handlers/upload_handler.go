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
	"github.com/shortsintel/shorts-intel-hub/utils"
)

// UploadHandlerInterface defines the contract for upload-tracking handlers.
type UploadHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
}

// UploadHandler handles upload-tracking requests.
type UploadHandler struct {
	flow      businessflow.UploadFlow
	validator *validator.Validate
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(flow businessflow.UploadFlow) *UploadHandler {
	return &UploadHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *UploadHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *UploadHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create records one agency/music file handover.
func (h *UploadHandler) Create(c fiber.Ctx) error {
	var req dto.CreateUploadRequest
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
	res, err := h.flow.CreateUpload(h.createRequestContext(c, "/api/v1/uploads"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "FILENAME_REQUIRED", "UPLOAD_SOURCE_INVALID":
				return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record upload", "UPLOAD_CREATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Upload recorded", res)
}

// List pages through upload records.
func (h *UploadHandler) List(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	req := dto.ListUploadsRequest{
		Source: c.Query("source"),
		Market: c.Query("market"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.ListUploads(h.createRequestContext(c, "/api/v1/uploads"), &req)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list uploads", "UPLOAD_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Uploads retrieved", res)
}

// Get returns one upload record by UUID.
func (h *UploadHandler) Get(c fiber.Ctx) error {
	uploadUUID := c.Params("uuid")

	res, err := h.flow.GetUpload(h.createRequestContext(c, "/api/v1/uploads/:uuid"), uploadUUID)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "UPLOAD_UUID_INVALID":
				return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
			case "UPLOAD_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, be.Message, be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get upload", "UPLOAD_GET_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Upload retrieved", res)
}

// UpdateStatus moves an upload through its processing states.
func (h *UploadHandler) UpdateStatus(c fiber.Ctx) error {
	var req dto.UpdateUploadStatusRequest
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
	res, err := h.flow.UpdateUploadStatus(h.createRequestContext(c, "/api/v1/uploads/:uuid/status"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsUploadNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Upload not found", "UPLOAD_NOT_FOUND", err.Error())
		case businessflow.IsInvalidUploadStatus(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Invalid upload status transition", "UPLOAD_STATUS_INVALID", err.Error())
		case businessflow.IsTopicUUIDInvalid(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid upload UUID", "UPLOAD_UUID_INVALID", err.Error())
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update upload status", "UPLOAD_STATUS_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Upload status updated", res)
}

func (h *UploadHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 30*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
