package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentRequest struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	StudentID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"student_id"`
	LanguageID    uuid.UUID     `gorm:"type:uuid;not null" json:"language_id"`
	Description   string        `gorm:"type:text" json:"description"`
	PreferredTime Clock         `gorm:"not null" json:"preferred_time"`
	Venue         string        `gorm:"size:255" json:"venue"`
	Duration      int           `gorm:"not null" json:"duration"`
	Frequency     Frequency     `gorm:"size:30;not null" json:"frequency"`
	Term          TermName      `gorm:"size:30;not null" json:"term"`
	Status        RequestStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	IsAllocated   bool          `gorm:"not null;default:false" json:"is_allocated"`
	DenialReason  *string       `gorm:"type:text" json:"denial_reason,omitempty"`

	Language Language `gorm:"foreignkey:LanguageID" json:"language,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (r *StudentRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
