package models

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

type Language struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name string    `gorm:"size:100;not null;unique" json:"name"`
}

// NormaliseLanguageName case-folds and trims a language name so that
// "  Python" and "PYTHON" name the same language.
func NormaliseLanguageName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func (l *Language) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *Language) BeforeSave(tx *gorm.DB) error {
	l.Name = NormaliseLanguageName(l.Name)
	return nil
}
