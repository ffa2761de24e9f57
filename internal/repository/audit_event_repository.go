package repository

import (
	"fmt"

	"gorm.io/gorm"

	"winkclass/internal/model"
)

type AuditEventRepository struct {
	db *gorm.DB
}

func NewAuditEventRepository(db *gorm.DB) *AuditEventRepository {
	return &AuditEventRepository{db: db}
}

func (r *AuditEventRepository) Create(event *model.AuditEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create audit event failed: %w", err)
	}
	return nil
}

func (r *AuditEventRepository) ListByInstructorID(instructorID uint, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var events []model.AuditEvent
	err := r.db.Where("instructor_id = ?", instructorID).
		Order("created_at DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list audit events failed: %w", err)
	}
	return events, nil
}
