package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shortsintel/shorts-intel-hub/app/dto"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/repository"
	"github.com/shortsintel/shorts-intel-hub/utils"
	"gorm.io/gorm"
)

// UploadFlow defines the upload-tracking operations: recording a handover,
// browsing the history, and moving records through their processing states.
type UploadFlow interface {
	CreateUpload(ctx context.Context, req *dto.CreateUploadRequest, metadata *ClientMetadata) (*dto.CreateUploadResponse, error)
	ListUploads(ctx context.Context, req *dto.ListUploadsRequest) (*dto.ListUploadsResponse, error)
	GetUpload(ctx context.Context, uploadUUID string) (*dto.GetUploadResponse, error)
	UpdateUploadStatus(ctx context.Context, req *dto.UpdateUploadStatusRequest, metadata *ClientMetadata) (*dto.UpdateUploadStatusResponse, error)
}

// UploadFlowImpl implements the upload business flow
type UploadFlowImpl struct {
	uploadRepo repository.FileUploadRepository
	auditRepo  repository.AuditLogRepository
	db         *gorm.DB
}

// NewUploadFlow creates a new upload flow instance
func NewUploadFlow(
	uploadRepo repository.FileUploadRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) UploadFlow {
	return &UploadFlowImpl{
		uploadRepo: uploadRepo,
		auditRepo:  auditRepo,
		db:         db,
	}
}

// CreateUpload records one file handover in uploaded status.
func (s *UploadFlowImpl) CreateUpload(ctx context.Context, req *dto.CreateUploadRequest, metadata *ClientMetadata) (*dto.CreateUploadResponse, error) {
	if req.Filename == "" {
		return nil, NewBusinessError("FILENAME_REQUIRED", "Filename is required", ErrFilenameRequired)
	}
	if req.Source != models.TopicSourceAgency && req.Source != models.TopicSourceMusic {
		return nil, NewBusinessError("UPLOAD_SOURCE_INVALID", "Invalid upload source", ErrInvalidUploadSource)
	}

	upload := &models.FileUpload{
		UUID:          uuid.New(),
		Filename:      req.Filename,
		FileSize:      req.FileSize,
		FileType:      req.FileType,
		Source:        req.Source,
		StoragePath:   req.StoragePath,
		StorageBucket: req.StorageBucket,
		Status:        models.UploadStatusUploaded,
		UploadedBy:    req.UploadedBy,
		UploadedAt:    utils.UTCNow(),
	}
	if req.Market != "" {
		upload.Market = utils.ToPtr(models.Market(req.Market))
	}

	if err := s.uploadRepo.Save(ctx, upload); err != nil {
		return nil, NewBusinessError("UPLOAD_CREATE_FAILED", "Failed to record upload", err)
	}

	return &dto.CreateUploadResponse{
		Message: "Upload recorded successfully",
		Upload:  mapUploadItem(upload),
	}, nil
}

// ListUploads pages through upload records, newest first.
func (s *UploadFlowImpl) ListUploads(ctx context.Context, req *dto.ListUploadsRequest) (*dto.ListUploadsResponse, error) {
	filter := models.FileUploadFilter{}
	if req.Source != "" {
		filter.Source = utils.ToPtr(req.Source)
	}
	if req.Market != "" {
		filter.Market = utils.ToPtr(models.Market(req.Market))
	}
	if req.Status != "" {
		filter.Status = utils.ToPtr(req.Status)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = utils.DefaultPageLimit
	}
	if limit > utils.MaxPageLimit {
		limit = utils.MaxPageLimit
	}

	uploads, err := s.uploadRepo.ByFilter(ctx, filter, "uploaded_at DESC", limit, req.Offset)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_LIST_FAILED", "Failed to list uploads", err)
	}
	total, err := s.uploadRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_COUNT_FAILED", "Failed to count uploads", err)
	}

	items := make([]dto.UploadItem, 0, len(uploads))
	for _, u := range uploads {
		items = append(items, mapUploadItem(u))
	}

	return &dto.ListUploadsResponse{
		Message: "Uploads retrieved successfully",
		Uploads: items,
		Pagination: dto.Pagination{
			Limit:  limit,
			Offset: req.Offset,
			Total:  total,
		},
	}, nil
}

// GetUpload returns one upload record by UUID.
func (s *UploadFlowImpl) GetUpload(ctx context.Context, uploadUUID string) (*dto.GetUploadResponse, error) {
	upload, err := s.lookupUpload(ctx, uploadUUID)
	if err != nil {
		return nil, err
	}
	return &dto.GetUploadResponse{
		Message: "Upload retrieved successfully",
		Upload:  mapUploadItem(upload),
	}, nil
}

// UpdateUploadStatus moves an upload through its processing states. Terminal
// records reject further transitions.
func (s *UploadFlowImpl) UpdateUploadStatus(ctx context.Context, req *dto.UpdateUploadStatusRequest, metadata *ClientMetadata) (*dto.UpdateUploadStatusResponse, error) {
	var upload *models.FileUpload

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		u, err := s.lookupUpload(txCtx, req.UUID)
		if err != nil {
			return err
		}
		if u.IsTerminal() {
			return fmt.Errorf("%w: upload already %s", ErrInvalidUploadStatus, u.Status)
		}

		previous := u.Status
		u.Status = req.Status
		if req.TopicsCreated != nil {
			u.TopicsCreated = req.TopicsCreated
		}
		if req.ErrorMessage != nil {
			u.ErrorMessage = req.ErrorMessage
		}
		if u.IsTerminal() {
			u.ProcessedAt = utils.UTCNowPtr()
		}

		if err := s.uploadRepo.Update(txCtx, u); err != nil {
			return err
		}
		upload = u

		details := map[string]any{
			"filename": u.Filename,
			"from":     previous,
			"to":       u.Status,
		}
		if req.TopicsCreated != nil {
			details["topics_created"] = *req.TopicsCreated
		}
		if metadata != nil {
			details["client"] = metadata
		}
		resourceID := u.UUID.String()
		return writeAudit(txCtx, s.auditRepo, req.UpdatedBy, models.AuditActionUploadStatusChanged,
			models.AuditResourceFileUpload, &resourceID, details, u.Market, utils.ToPtr(u.Source))
	})
	if err != nil {
		if IsUploadNotFound(err) || IsTopicUUIDInvalid(err) || IsInvalidUploadStatus(err) {
			return nil, err
		}
		return nil, NewBusinessError("UPLOAD_STATUS_UPDATE_FAILED", "Failed to update upload status", err)
	}

	return &dto.UpdateUploadStatusResponse{
		Message: "Upload status updated successfully",
		Upload:  mapUploadItem(upload),
	}, nil
}

func (s *UploadFlowImpl) lookupUpload(ctx context.Context, uploadUUID string) (*models.FileUpload, error) {
	if _, err := uuid.Parse(uploadUUID); err != nil {
		return nil, NewBusinessError("UPLOAD_UUID_INVALID", "Invalid upload UUID", fmt.Errorf("%w: %v", ErrTopicUUIDInvalid, err))
	}
	upload, err := s.uploadRepo.ByUUID(ctx, uploadUUID)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_LOOKUP_FAILED", "Failed to look up upload", err)
	}
	if upload == nil {
		return nil, NewBusinessError("UPLOAD_NOT_FOUND", "Upload not found", ErrUploadNotFound)
	}
	return upload, nil
}

func mapUploadItem(u *models.FileUpload) dto.UploadItem {
	var market *string
	if u.Market != nil {
		market = utils.ToPtr(string(*u.Market))
	}
	return dto.UploadItem{
		UUID:          u.UUID.String(),
		Filename:      u.Filename,
		FileSize:      u.FileSize,
		FileType:      u.FileType,
		Source:        u.Source,
		Market:        market,
		Status:        u.Status,
		TopicsCreated: u.TopicsCreated,
		ErrorMessage:  u.ErrorMessage,
		UploadedBy:    u.UploadedBy,
		UploadedAt:    u.UploadedAt.Format(time.RFC3339),
		ProcessedAt:   formatTimePtr(u.ProcessedAt),
	}
}
