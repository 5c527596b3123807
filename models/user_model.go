package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Username string    `gorm:"size:30;not null;unique" json:"username"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Password string    `gorm:"not null" json:"-"`
	Role     Role      `gorm:"size:20;not null;default:'student'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Actor returns the identity used by authorisation checks.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
