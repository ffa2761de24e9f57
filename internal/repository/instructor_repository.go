package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"winkclass/internal/model"
)

type InstructorRepository struct {
	db *gorm.DB
}

func NewInstructorRepository(db *gorm.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

func (r *InstructorRepository) Create(instructor *model.Instructor) error {
	if err := r.db.Create(instructor).Error; err != nil {
		return fmt.Errorf("create instructor failed: %w", err)
	}
	return nil
}

func (r *InstructorRepository) Update(instructor *model.Instructor) error {
	if err := r.db.Save(instructor).Error; err != nil {
		return fmt.Errorf("update instructor failed: %w", err)
	}
	return nil
}

// GetByEmail matches the stored email exactly; callers lower-case the email
// before both storage and lookup, which makes the match case-insensitive.
func (r *InstructorRepository) GetByEmail(email string) (*model.Instructor, error) {
	var instructor model.Instructor
	if err := r.db.Where("email = ?", email).First(&instructor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query instructor by email failed: %w", err)
	}
	return &instructor, nil
}

func (r *InstructorRepository) GetBySlug(slug string) (*model.Instructor, error) {
	var instructor model.Instructor
	if err := r.db.Where("slug = ?", slug).First(&instructor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query instructor by slug failed: %w", err)
	}
	return &instructor, nil
}

func (r *InstructorRepository) GetByID(id uint) (*model.Instructor, error) {
	var instructor model.Instructor
	if err := r.db.First(&instructor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query instructor by id failed: %w", err)
	}
	return &instructor, nil
}

func (r *InstructorRepository) ListAll() ([]model.Instructor, error) {
	var instructors []model.Instructor
	if err := r.db.Order("created_at DESC").Find(&instructors).Error; err != nil {
		return nil, fmt.Errorf("list instructors failed: %w", err)
	}
	return instructors, nil
}
