package services

import (
	"context"
	"strings"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const minPasswordLength = 6

type Users struct {
	base
}

type NewUser struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     models.Role
}

// CreateUser stores the user together with the profile its role needs.
func (s *Users) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = models.RoleStudent
	}
	switch {
	case !utils.ValidUsername(in.Username):
		return nil, utils.WithField(utils.ErrInvalid, "username")
	case !strings.Contains(in.Email, "@"):
		return nil, utils.WithField(utils.ErrInvalid, "email")
	case len(in.Password) < minPasswordLength:
		return nil, utils.WithField(utils.ErrInvalid, "password")
	case !in.Role.Valid():
		return nil, utils.WithField(utils.ErrInvalid, "role")
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	user := models.User{
		Username: in.Username,
		Email:    in.Email,
		FullName: strings.TrimSpace(in.FullName),
		Password: hashed,
		Role:     in.Role,
	}
	err = s.transact(ctx, func(tx *gorm.DB) error {
		var taken []models.User
		if err := tx.Where("username = ? OR email = ?", user.Username, user.Email).Limit(1).Find(&taken).Error; err != nil {
			return errors.Wrap(err, "check existing users")
		}
		if len(taken) > 0 {
			if taken[0].Username == user.Username {
				return utils.WithField(utils.ErrDuplicate, "username")
			}
			return utils.WithField(utils.ErrDuplicate, "email")
		}
		if err := tx.Create(&user).Error; err != nil {
			return errors.Wrap(err, "insert user")
		}
		switch user.Role {
		case models.RoleStudent:
			return tx.Omit(clause.Associations).Create(&models.Student{UserID: user.ID}).Error
		case models.RoleTutor:
			return tx.Omit(clause.Associations).Create(&models.Tutor{UserID: user.ID}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user created")
	return &user, nil
}

// Authenticate accepts either the username or the email as login.
func (s *Users) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	var user models.User
	err := s.read(ctx).Where("username = ? OR email = ?", login, strings.ToLower(login)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.Newf(utils.ErrNotAuthorized, "invalid login or password")
		}
		return nil, errors.Wrap(err, "load user")
	}
	if err := utils.CheckPassword(password, user.Password); err != nil {
		return nil, utils.Newf(utils.ErrNotAuthorized, "invalid login or password")
	}
	return &user, nil
}

func (s *Users) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.read(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "user")
	}
	return &user, nil
}

func (s *Users) ListUsers(ctx context.Context, actor models.Actor, role models.Role) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, utils.ErrNotAuthorized
	}
	q := s.read(ctx)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err := q.Order("username").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

// DeleteUser removes a user and everything that hangs off them: profile,
// windows, requests, lessons, invoices, messages and taught languages.
func (s *Users) DeleteUser(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return utils.ErrNotAuthorized
	}
	if actor.ID == id {
		return utils.Newf(utils.ErrInvalid, "cannot delete your own account")
	}
	err := s.transact(ctx, func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(forUpdate).First(&user, "id = ?", id).Error; err != nil {
			return lookupErr(err, "user")
		}
		var touched []uuid.UUID
		err := tx.Model(&models.Lesson{}).
			Where("(student_id = ? OR tutor_id = ?) AND invoice_id IS NOT NULL", id, id).
			Distinct().Pluck("invoice_id", &touched).Error
		if err != nil {
			return errors.Wrap(err, "load invoiced lessons")
		}
		billed := tx.Model(&models.Invoice{}).Select("id").Where("student_id = ? OR tutor_id = ?", id, id)
		if err := tx.Model(&models.Lesson{}).Where("invoice_id IN (?)", billed).Update("invoice_id", nil).Error; err != nil {
			return errors.Wrap(err, "unbind invoiced lessons")
		}
		steps := []struct {
			what  string
			model interface{}
			query string
			args  []interface{}
		}{
			{"messages", &models.Message{}, "sender_id = ? OR recipient_id = ?", []interface{}{id, id}},
			{"invoices", &models.Invoice{}, "student_id = ? OR tutor_id = ?", []interface{}{id, id}},
			{"lessons", &models.Lesson{}, "student_id = ? OR tutor_id = ?", []interface{}{id, id}},
			{"requests", &models.StudentRequest{}, "student_id = ?", []interface{}{id}},
			{"windows", &models.AvailabilityWindow{}, "tutor_id = ?", []interface{}{id}},
			{"student", &models.Student{}, "user_id = ?", []interface{}{id}},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.args...).Delete(step.model).Error; err != nil {
				return errors.Wrapf(err, "delete %s", step.what)
			}
		}
		for _, invoiceID := range touched {
			if err := recomputeInvoiceTotal(tx, invoiceID); err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM tutor_languages WHERE tutor_user_id = ?", id).Error; err != nil {
			return errors.Wrap(err, "delete tutor languages")
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Tutor{}).Error; err != nil {
			return errors.Wrap(err, "delete tutor")
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}
	logrus.WithField("user_id", id).Info("user deleted")
	return nil
}
