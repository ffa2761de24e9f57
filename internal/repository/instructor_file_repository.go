package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"winkclass/internal/model"
)

type InstructorFileRepository struct {
	db *gorm.DB
}

func NewInstructorFileRepository(db *gorm.DB) *InstructorFileRepository {
	return &InstructorFileRepository{db: db}
}

func (r *InstructorFileRepository) Create(file *model.InstructorFile) error {
	if err := r.db.Create(file).Error; err != nil {
		return fmt.Errorf("create instructor file failed: %w", err)
	}
	return nil
}

func (r *InstructorFileRepository) GetByFileID(instructorID uint, fileID string) (*model.InstructorFile, error) {
	var file model.InstructorFile
	err := r.db.Where("instructor_id = ? AND file_id = ?", instructorID, fileID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query instructor file failed: %w", err)
	}
	return &file, nil
}

func (r *InstructorFileRepository) ListByInstructorID(instructorID uint) ([]model.InstructorFile, error) {
	var files []model.InstructorFile
	err := r.db.Where("instructor_id = ?", instructorID).Order("uploaded_at DESC").Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list instructor files failed: %w", err)
	}
	return files, nil
}

func (r *InstructorFileRepository) DeleteByFileID(instructorID uint, fileID string) error {
	err := r.db.Where("instructor_id = ? AND file_id = ?", instructorID, fileID).
		Delete(&model.InstructorFile{}).Error
	if err != nil {
		return fmt.Errorf("delete instructor file failed: %w", err)
	}
	return nil
}
