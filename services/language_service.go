package services

import (
	"context"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Languages struct {
	base
}

func (s *Languages) Create(ctx context.Context, actor models.Actor, name string) (*models.Language, error) {
	if !actor.IsAdmin() {
		return nil, utils.ErrNotAuthorized
	}
	lang := models.Language{Name: models.NormaliseLanguageName(name)}
	if lang.Name == "" {
		return nil, utils.WithField(utils.ErrInvalid, "name")
	}
	err := s.transact(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Language{}).Where("name = ?", lang.Name).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check language name")
		}
		if count > 0 {
			return utils.WithField(utils.ErrDuplicate, "name")
		}
		return tx.Create(&lang).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"language_id": lang.ID, "name": lang.Name}).Info("language created")
	return &lang, nil
}

// Delete refuses while any lesson or request is still in the language.
func (s *Languages) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return utils.ErrNotAuthorized
	}
	err := s.transact(ctx, func(tx *gorm.DB) error {
		var lang models.Language
		if err := tx.Clauses(forUpdate).First(&lang, "id = ?", id).Error; err != nil {
			return lookupErr(err, "language")
		}
		for _, model := range []interface{}{&models.Lesson{}, &models.StudentRequest{}} {
			var count int64
			if err := tx.Model(model).Where("language_id = ?", id).Count(&count).Error; err != nil {
				return errors.Wrap(err, "count language references")
			}
			if count > 0 {
				return utils.ErrInUse
			}
		}
		if err := tx.Exec("DELETE FROM tutor_languages WHERE language_id = ?", id).Error; err != nil {
			return errors.Wrap(err, "detach tutors")
		}
		return tx.Delete(&lang).Error
	})
	if err != nil {
		return err
	}
	logrus.WithField("language_id", id).Info("language deleted")
	return nil
}

func (s *Languages) List(ctx context.Context) ([]models.Language, error) {
	var langs []models.Language
	if err := s.read(ctx).Order("name").Find(&langs).Error; err != nil {
		return nil, errors.Wrap(err, "list languages")
	}
	return langs, nil
}

// TutorLanguages lists what the tutor teaches.
func (s *Languages) TutorLanguages(ctx context.Context, tutorID uuid.UUID) ([]*models.Language, error) {
	var tutor models.Tutor
	if err := s.read(ctx).Preload("Languages").First(&tutor, "user_id = ?", tutorID).Error; err != nil {
		return nil, lookupErr(err, "tutor")
	}
	return tutor.Languages, nil
}

func (s *Languages) AddToTutor(ctx context.Context, actor models.Actor, languageID uuid.UUID) error {
	if !actor.IsTutor() {
		return utils.ErrNotAuthorized
	}
	err := s.transact(ctx, func(tx *gorm.DB) error {
		var tutor models.Tutor
		if err := tx.Preload("Languages").First(&tutor, "user_id = ?", actor.ID).Error; err != nil {
			return lookupErr(err, "tutor")
		}
		var lang models.Language
		if err := tx.First(&lang, "id = ?", languageID).Error; err != nil {
			return lookupErr(err, "language")
		}
		if tutor.Teaches(languageID) {
			return nil
		}
		return tx.Model(&tutor).Association("Languages").Append(&lang)
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"tutor_id": actor.ID, "language_id": languageID}).Info("tutor language added")
	return nil
}

// RemoveFromTutor refuses while the tutor still has lessons in the
// language, since every lesson's tutor must teach its language.
func (s *Languages) RemoveFromTutor(ctx context.Context, actor models.Actor, languageID uuid.UUID) error {
	if !actor.IsTutor() {
		return utils.ErrNotAuthorized
	}
	err := s.transact(ctx, func(tx *gorm.DB) error {
		var tutor models.Tutor
		if err := tx.Preload("Languages").First(&tutor, "user_id = ?", actor.ID).Error; err != nil {
			return lookupErr(err, "tutor")
		}
		if !tutor.Teaches(languageID) {
			return utils.WithField(utils.ErrNotFound, "language")
		}
		var count int64
		err := tx.Model(&models.Lesson{}).
			Where("tutor_id = ? AND language_id = ?", actor.ID, languageID).
			Count(&count).Error
		if err != nil {
			return errors.Wrap(err, "count tutor lessons")
		}
		if count > 0 {
			return utils.ErrInUse
		}
		return tx.Model(&tutor).Association("Languages").Delete(&models.Language{ID: languageID})
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"tutor_id": actor.ID, "language_id": languageID}).Info("tutor language removed")
	return nil
}
