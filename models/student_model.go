package models

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	UserID    uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	User      User      `gorm:"foreignkey:UserID" json:"user"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
