package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Upload status constants
const (
	UploadStatusUploaded   = "uploaded"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

// FileUpload tracks one file handed over by the agency or music team.
// The file body lives in object storage; this row only records the handover
// and its processing outcome.
// Table: file_uploads
type FileUpload struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_file_uploads_uuid" json:"uuid"`
	Filename      string          `gorm:"size:512;not null" json:"filename"`
	FileSize      *int64          `json:"file_size,omitempty"`
	FileType      *string         `gorm:"size:64" json:"file_type,omitempty"`
	Source        string          `gorm:"size:32;not null;index:idx_file_uploads_source" json:"source"`
	Market        *Market         `gorm:"size:8;index:idx_file_uploads_market" json:"market,omitempty"`
	StoragePath   *string         `gorm:"size:1024" json:"storage_path,omitempty"`
	StorageBucket *string         `gorm:"size:255" json:"storage_bucket,omitempty"`
	Status        string          `gorm:"size:32;not null;default:'uploaded';index:idx_file_uploads_status" json:"status"`
	TopicsCreated *int            `json:"topics_created,omitempty"`
	ErrorMessage  *string         `gorm:"type:text" json:"error_message,omitempty"`
	ParsedData    json.RawMessage `gorm:"type:jsonb" json:"parsed_data,omitempty"`
	UploadedBy    *string         `gorm:"size:255" json:"uploaded_by,omitempty"`
	UploadedAt    time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_file_uploads_uploaded_at" json:"uploaded_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
}

func (FileUpload) TableName() string {
	return "file_uploads"
}

// IsTerminal reports whether the upload reached a final processing state.
func (u *FileUpload) IsTerminal() bool {
	return u.Status == UploadStatusCompleted || u.Status == UploadStatusFailed
}

// FileUploadFilter represents filter criteria for upload queries.
type FileUploadFilter struct {
	Source *string
	Market *Market
	Status *string
}
