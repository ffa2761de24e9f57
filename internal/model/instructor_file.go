package model

import "time"

// InstructorFile mirrors one document attached to the instructor's vector
// store. A row exists only while the remote attachment exists; the remote
// side is detached before the row is deleted.
type InstructorFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InstructorID uint      `gorm:"not null;index" json:"instructor_id"`
	FileID       string    `gorm:"size:255;not null" json:"file_id"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	Preview      string    `gorm:"type:text" json:"preview,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
