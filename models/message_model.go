package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message replies point one way at their parent; the reverse edge is
// looked up by reply_of_id.
type Message struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SenderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Subject     string     `gorm:"size:255;not null" json:"subject"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	ReplyOfID   *uuid.UUID `gorm:"type:uuid;index" json:"reply_of_id,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
