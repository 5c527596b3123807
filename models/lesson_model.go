package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Lesson struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	RequestID  *uuid.UUID      `gorm:"type:uuid" json:"request_id,omitempty"`
	TutorID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tutor_id"`
	StudentID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	LanguageID uuid.UUID       `gorm:"type:uuid;not null;index" json:"language_id"`
	FirstDate  time.Time       `gorm:"type:date;not null" json:"first_date"`
	Time       Clock           `gorm:"not null" json:"time"`
	Venue      string          `gorm:"size:255" json:"venue"`
	Duration   int             `gorm:"not null" json:"duration"`
	Frequency  Frequency       `gorm:"size:30;not null" json:"frequency"`
	Term       TermName        `gorm:"size:30;not null" json:"term"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	InvoiceID  *uuid.UUID      `gorm:"type:uuid;index" json:"invoice_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l Lesson) Interval() Interval {
	return Interval{Start: l.Time, End: l.Time.Add(l.Duration)}
}

// Occurrence is one concrete sitting of a recurring lesson.
type Occurrence struct {
	LessonID  uuid.UUID `json:"lesson_id"`
	TutorID   uuid.UUID `json:"tutor_id"`
	StudentID uuid.UUID `json:"student_id"`
	Date      time.Time `json:"date"`
	Time      Clock     `json:"time"`
	Duration  int       `json:"duration"`
	Venue     string    `json:"venue"`
}
