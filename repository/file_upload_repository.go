package repository

import (
	"context"
	"errors"

	"github.com/shortsintel/shorts-intel-hub/models"
	"gorm.io/gorm"
)

// FileUploadRepositoryImpl implements FileUploadRepository
type FileUploadRepositoryImpl struct {
	*BaseRepository[models.FileUpload, models.FileUploadFilter]
}

// NewFileUploadRepository creates a new repository for upload records
func NewFileUploadRepository(db *gorm.DB) FileUploadRepository {
	return &FileUploadRepositoryImpl{
		BaseRepository: NewBaseRepository[models.FileUpload, models.FileUploadFilter](db),
	}
}

// ByUUID retrieves an upload record by its UUID.
func (r *FileUploadRepositoryImpl) ByUUID(ctx context.Context, uploadUUID string) (*models.FileUpload, error) {
	db := r.getDB(ctx)

	var upload models.FileUpload
	err := db.Where("uuid = ?", uploadUUID).First(&upload).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &upload, nil
}

// Update saves all fields of an existing upload record.
func (r *FileUploadRepositoryImpl) Update(ctx context.Context, upload *models.FileUpload) error {
	db := r.getDB(ctx)
	return db.Save(upload).Error
}

// applyFilter applies filter conditions to the GORM query
func (r *FileUploadRepositoryImpl) applyFilter(db *gorm.DB, filter models.FileUploadFilter) *gorm.DB {
	if filter.Source != nil {
		db = db.Where("source = ?", *filter.Source)
	}
	if filter.Market != nil {
		db = db.Where("market = ?", *filter.Market)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	return db
}

// ByFilter retrieves upload records based on filter criteria.
func (r *FileUploadRepositoryImpl) ByFilter(ctx context.Context, filter models.FileUploadFilter, orderBy string, limit, offset int) ([]*models.FileUpload, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.FileUpload{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "uploaded_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.FileUpload
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of upload records matching the filter.
func (r *FileUploadRepositoryImpl) Count(ctx context.Context, filter models.FileUploadFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.FileUpload{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any upload record matching the filter exists.
func (r *FileUploadRepositoryImpl) Exists(ctx context.Context, filter models.FileUploadFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
