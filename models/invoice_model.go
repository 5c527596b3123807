package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Reference   string          `gorm:"size:12;not null;unique" json:"reference"`
	StudentID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	TutorID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"tutor_id"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"total_amount"`
	DateIssued  time.Time       `gorm:"type:date;not null" json:"date_issued"`
	DatePaid    *time.Time      `gorm:"type:date" json:"date_paid,omitempty"`
	Paid        bool            `gorm:"not null;default:false" json:"paid"`
	Approved    bool            `gorm:"not null;default:false" json:"approved"`
	DocumentURL *string         `gorm:"type:text" json:"document_url,omitempty"`

	Lessons []Lesson `gorm:"foreignkey:InvoiceID" json:"lessons,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
