// Package businessflow contains the core business logic and use cases for topic ranking workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Segment and config errors
	ErrInvalidSegment        = errors.New("invalid segment key")
	ErrWeightsSumInvalid     = errors.New("weights must sum to 1.0")
	ErrWeightOutOfRange      = errors.New("each weight must be between 0 and 1")
	ErrRankingConfigNotFound = errors.New("no active ranking config found for this segment")
	ErrUpdatedByRequired     = errors.New("updatedBy is required")

	// Topic errors
	ErrTopicNotFound   = errors.New("topic not found")
	ErrTopicNotActive  = errors.New("topic is not in active status")
	ErrTopicUUIDInvalid = errors.New("topic UUID is invalid")

	// Schedule errors
	ErrScheduleNotFound       = errors.New("schedule not found for market")
	ErrCronExpressionRequired = errors.New("cron expression is required")

	// Upload errors
	ErrUploadNotFound      = errors.New("upload not found")
	ErrInvalidUploadStatus = errors.New("invalid upload status transition")
	ErrFilenameRequired    = errors.New("filename is required")
	ErrInvalidUploadSource = errors.New("upload source must be agency or music")

	// Filter errors
	ErrInvalidPage      = errors.New("page must be at least 1")
	ErrInvalidPageSize  = errors.New("page size must be between 1 and 100")
	ErrInvalidSortField = errors.New("sort field is not allowed")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsInvalidSegment(err error) bool {
	return errors.Is(err, ErrInvalidSegment)
}

func IsWeightsSumInvalid(err error) bool {
	return errors.Is(err, ErrWeightsSumInvalid)
}

func IsWeightOutOfRange(err error) bool {
	return errors.Is(err, ErrWeightOutOfRange)
}

func IsRankingConfigNotFound(err error) bool {
	return errors.Is(err, ErrRankingConfigNotFound)
}

func IsUpdatedByRequired(err error) bool {
	return errors.Is(err, ErrUpdatedByRequired)
}

func IsTopicNotFound(err error) bool {
	return errors.Is(err, ErrTopicNotFound)
}

func IsTopicNotActive(err error) bool {
	return errors.Is(err, ErrTopicNotActive)
}

func IsTopicUUIDInvalid(err error) bool {
	return errors.Is(err, ErrTopicUUIDInvalid)
}

func IsScheduleNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound)
}

func IsCronExpressionRequired(err error) bool {
	return errors.Is(err, ErrCronExpressionRequired)
}

func IsUploadNotFound(err error) bool {
	return errors.Is(err, ErrUploadNotFound)
}

func IsInvalidUploadStatus(err error) bool {
	return errors.Is(err, ErrInvalidUploadStatus)
}

func IsFilenameRequired(err error) bool {
	return errors.Is(err, ErrFilenameRequired)
}

func IsInvalidUploadSource(err error) bool {
	return errors.Is(err, ErrInvalidUploadSource)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
