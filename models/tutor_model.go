package models

import (
	"time"

	"github.com/google/uuid"
)

type Tutor struct {
	UserID    uuid.UUID   `gorm:"type:uuid;primary_key" json:"user_id"`
	Languages []*Language `gorm:"many2many:tutor_languages;" json:"languages"`
	User      User        `gorm:"foreignkey:UserID" json:"user"`
	CreatedAt time.Time   `json:"-"`
	UpdatedAt time.Time   `json:"-"`
}

// Teaches reports whether languageID is among the tutor's loaded languages.
func (t Tutor) Teaches(languageID uuid.UUID) bool {
	for _, l := range t.Languages {
		if l != nil && l.ID == languageID {
			return true
		}
	}
	return false
}
