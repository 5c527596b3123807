package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityWindow struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	TutorID   uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_window_slot;index" json:"tutor_id"`
	Day       time.Time    `gorm:"type:date;not null;uniqueIndex:idx_window_slot" json:"day"`
	StartTime Clock        `gorm:"not null;uniqueIndex:idx_window_slot" json:"start_time"`
	EndTime   Clock        `gorm:"not null" json:"end_time"`
	Status    WindowStatus `gorm:"size:20;not null;default:'available'" json:"status"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (w *AvailabilityWindow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (w AvailabilityWindow) Interval() Interval {
	return Interval{Start: w.StartTime, End: w.EndTime}
}
