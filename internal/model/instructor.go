package model

import "time"

type Instructor struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name           string    `gorm:"size:255" json:"name"`
	Slug           string    `gorm:"size:64;not null;uniqueIndex" json:"slug"`
	VectorStoreID  string    `gorm:"size:255;not null" json:"vector_store_id"`
	LeftColumnHTML string    `gorm:"type:text" json:"left_column_html"`
	PasscodeHash   string    `gorm:"size:255" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
