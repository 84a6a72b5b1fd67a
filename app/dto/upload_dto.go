package dto

// CreateUploadRequest records one agency/music file handover.
type CreateUploadRequest struct {
	Filename      string  `json:"filename" validate:"required,max=512"`
	FileSize      *int64  `json:"file_size,omitempty" validate:"omitempty,gte=0"`
	FileType      *string `json:"file_type,omitempty" validate:"omitempty,max=64"`
	Source        string  `json:"source" validate:"required,oneof=agency music"`
	Market        string  `json:"market" validate:"omitempty,oneof=JP KR IN ID AUNZ"`
	StoragePath   *string `json:"storage_path,omitempty"`
	StorageBucket *string `json:"storage_bucket,omitempty"`
	UploadedBy    *string `json:"uploaded_by,omitempty" validate:"omitempty,email"`
}

// UploadItem is one upload record in API responses.
type UploadItem struct {
	UUID          string  `json:"uuid"`
	Filename      string  `json:"filename"`
	FileSize      *int64  `json:"file_size,omitempty"`
	FileType      *string `json:"file_type,omitempty"`
	Source        string  `json:"source"`
	Market        *string `json:"market,omitempty"`
	Status        string  `json:"status"`
	TopicsCreated *int    `json:"topics_created,omitempty"`
	ErrorMessage  *string `json:"error_message,omitempty"`
	UploadedBy    *string `json:"uploaded_by,omitempty"`
	UploadedAt    string  `json:"uploaded_at"`
	ProcessedAt   *string `json:"processed_at,omitempty"`
}

// CreateUploadResponse confirms the recorded upload.
type CreateUploadResponse struct {
	Message string     `json:"message"`
	Upload  UploadItem `json:"upload"`
}

// ListUploadsRequest filters and pages the upload history.
type ListUploadsRequest struct {
	Source string `json:"source" validate:"omitempty,oneof=agency music"`
	Market string `json:"market" validate:"omitempty,oneof=JP KR IN ID AUNZ"`
	Status string `json:"status" validate:"omitempty,oneof=uploaded processing completed failed"`
	Limit  int    `json:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset int    `json:"offset" validate:"omitempty,gte=0"`
}

// ListUploadsResponse pages through upload records.
type ListUploadsResponse struct {
	Message    string       `json:"message"`
	Uploads    []UploadItem `json:"uploads"`
	Pagination Pagination   `json:"pagination"`
}

// GetUploadResponse returns one upload record.
type GetUploadResponse struct {
	Message string     `json:"message"`
	Upload  UploadItem `json:"upload"`
}

// UpdateUploadStatusRequest moves an upload through its processing states.
type UpdateUploadStatusRequest struct {
	UUID          string  `json:"uuid" validate:"required,uuid4"`
	Status        string  `json:"status" validate:"required,oneof=processing completed failed"`
	TopicsCreated *int    `json:"topics_created,omitempty" validate:"omitempty,gte=0"`
	ErrorMessage  *string `json:"error_message,omitempty"`
	UpdatedBy     string  `json:"updated_by" validate:"required,email"`
}

// UpdateUploadStatusResponse returns the updated upload record.
type UpdateUploadStatusResponse struct {
	Message string     `json:"message"`
	Upload  UploadItem `json:"upload"`
}
