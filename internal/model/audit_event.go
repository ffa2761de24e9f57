package model

import "time"

const (
	AuditInstructorRegistered = "instructor.registered"
	AuditDocumentAttached     = "document.attached"
	AuditDocumentDetached     = "document.detached"
)

// AuditEvent is the durable trail of index mutations. It is what allows a
// drifted vector store to be reconciled against local records.
type AuditEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Action       string    `gorm:"size:64;not null;index" json:"action"`
	InstructorID uint      `gorm:"index" json:"instructor_id"`
	FileID       string    `gorm:"size:255" json:"file_id"`
	Filename     string    `gorm:"size:255" json:"filename"`
	CreatedAt    time.Time `json:"created_at"`
}
