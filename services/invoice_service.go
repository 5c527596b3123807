package services

import (
	"context"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/terms"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Invoices bills a student's unbound lessons and tracks payment and
// approval of the resulting invoice.
type Invoices struct {
	base
	publisher DocumentPublisher
}

func validPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return utils.Newf(utils.ErrInvalidPrice, "price must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return utils.Newf(utils.ErrInvalidPrice, "price has more than two decimal places")
	}
	return nil
}

// lessonAmount is the price of every occurrence of a lesson.
func lessonAmount(l models.Lesson) decimal.Decimal {
	count := len(terms.ExpandOccurrences(l.FirstDate, l.Frequency, l.Term))
	return l.Price.Mul(decimal.NewFromInt(int64(count)))
}

func invoiceTotal(lessons []models.Lesson) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lessons {
		total = total.Add(lessonAmount(l))
	}
	return total
}

func recomputeInvoiceTotal(tx *gorm.DB, invoiceID uuid.UUID) error {
	var lessons []models.Lesson
	if err := tx.Where("invoice_id = ?", invoiceID).Find(&lessons).Error; err != nil {
		return errors.Wrap(err, "load invoice lessons")
	}
	err := tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).
		Update("total_amount", invoiceTotal(lessons)).Error
	return errors.Wrap(err, "update invoice total")
}

func studentExists(tx *gorm.DB, id uuid.UUID) error {
	var student models.Student
	if err := tx.First(&student, "user_id = ?", id).Error; err != nil {
		return lookupErr(err, "student")
	}
	return nil
}

// SetPrice sets the unit price of every lesson of the student that is not
// yet on an invoice and returns how many lessons changed.
func (s *Invoices) SetPrice(ctx context.Context, actor models.Actor, studentID uuid.UUID, price decimal.Decimal) (int64, error) {
	if !actor.IsAdmin() {
		return 0, utils.ErrNotAuthorized
	}
	if err := validPrice(price); err != nil {
		return 0, err
	}
	var updated int64
	err := s.transact(ctx, func(tx *gorm.DB) error {
		if err := studentExists(tx, studentID); err != nil {
			return err
		}
		res := tx.Model(&models.Lesson{}).
			Where("student_id = ? AND invoice_id IS NULL", studentID).
			Update("price", price)
		if res.Error != nil {
			return errors.Wrap(res.Error, "update lesson prices")
		}
		updated = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"student_id": studentID,
		"price":      price.StringFixed(2),
		"lessons":    updated,
	}).Info("lesson price set")
	return updated, nil
}

// CreateInvoice binds all of the student's unbound lessons to a new
// invoice. It returns nil, nil when there is nothing to bill.
func (s *Invoices) CreateInvoice(ctx context.Context, actor models.Actor, studentID uuid.UUID) (*models.Invoice, error) {
	if !actor.IsAdmin() {
		return nil, utils.ErrNotAuthorized
	}
	var invoice *models.Invoice
	err := s.transact(ctx, func(tx *gorm.DB) error {
		if err := studentExists(tx, studentID); err != nil {
			return err
		}
		var lessons []models.Lesson
		err := tx.Clauses(forUpdate).
			Where("student_id = ? AND invoice_id IS NULL", studentID).
			Order("first_date, created_at").
			Find(&lessons).Error
		if err != nil {
			return errors.Wrap(err, "load unbound lessons")
		}
		if len(lessons) == 0 {
			return nil
		}

		reference, err := utils.GenerateUniqueInvoiceReference(tx)
		if err != nil {
			return errors.Wrap(err, "generate invoice reference")
		}
		invoice = &models.Invoice{
			Reference:   reference,
			StudentID:   studentID,
			TutorID:     lessons[0].TutorID,
			TotalAmount: invoiceTotal(lessons),
			DateIssued:  s.today(),
		}
		if err := tx.Omit(clause.Associations).Create(invoice).Error; err != nil {
			return errors.Wrap(err, "insert invoice")
		}

		ids := make([]uuid.UUID, len(lessons))
		for i := range lessons {
			ids[i] = lessons[i].ID
			lessons[i].InvoiceID = &invoice.ID
		}
		err = tx.Model(&models.Lesson{}).Where("id IN ?", ids).Update("invoice_id", invoice.ID).Error
		if err != nil {
			return errors.Wrap(err, "bind lessons to invoice")
		}
		invoice.Lessons = lessons
		return nil
	})
	if err != nil || invoice == nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"invoice_id": invoice.ID,
		"reference":  invoice.Reference,
		"student_id": studentID,
		"total":      invoice.TotalAmount.StringFixed(2),
	}).Info("invoice created")
	return invoice, nil
}

// Pay marks the invoice paid by its student. Paying twice keeps the first
// payment date.
func (s *Invoices) Pay(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	paidNow := false
	err := s.transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&inv, "id = ?", id).Error; err != nil {
			return lookupErr(err, "invoice")
		}
		if actor.ID != inv.StudentID {
			return utils.ErrNotAuthorized
		}
		if inv.Paid {
			return nil
		}
		today := s.today()
		inv.Paid = true
		inv.DatePaid = &today
		paidNow = true
		return tx.Model(&inv).Updates(map[string]interface{}{
			"paid":      true,
			"date_paid": today,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	if paidNow {
		logrus.WithFields(logrus.Fields{"invoice_id": id, "student_id": actor.ID}).Info("invoice paid")
	}
	return &inv, nil
}

func (s *Invoices) Approve(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Invoice, error) {
	if !actor.IsAdmin() {
		return nil, utils.ErrNotAuthorized
	}
	var inv models.Invoice
	err := s.transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&inv, "id = ?", id).Error; err != nil {
			return lookupErr(err, "invoice")
		}
		if !inv.Paid {
			return utils.ErrNotPaid
		}
		if inv.Approved {
			return nil
		}
		inv.Approved = true
		return tx.Model(&inv).Update("approved", true).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("invoice_id", id).Info("invoice approved")
	return &inv, nil
}

// StudentPaid reports whether the student's most recent invoice is paid.
// A student who has never been invoiced owes nothing.
func (s *Invoices) StudentPaid(ctx context.Context, studentID uuid.UUID) (bool, error) {
	var latest []models.Invoice
	err := s.read(ctx).Where("student_id = ?", studentID).
		Order("date_issued DESC, created_at DESC").
		Limit(1).
		Find(&latest).Error
	if err != nil {
		return false, errors.Wrap(err, "load latest invoice")
	}
	if len(latest) == 0 {
		return true, nil
	}
	return latest[0].Paid, nil
}

// ListInvoices shows students the invoices addressed to them, tutors the
// invoices issued for their lessons and admins everything.
func (s *Invoices) ListInvoices(ctx context.Context, actor models.Actor) ([]models.Invoice, error) {
	q := s.read(ctx)
	switch {
	case actor.IsAdmin():
	case actor.IsStudent():
		q = q.Where("student_id = ?", actor.ID)
	case actor.IsTutor():
		q = q.Where("tutor_id = ?", actor.ID)
	default:
		return nil, utils.ErrNotAuthorized
	}
	var invoices []models.Invoice
	if err := q.Order("date_issued DESC, created_at DESC").Find(&invoices).Error; err != nil {
		return nil, errors.Wrap(err, "list invoices")
	}
	return invoices, nil
}

func (s *Invoices) GetInvoice(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.read(ctx).Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("first_date, time")
	}).First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, lookupErr(err, "invoice")
	}
	if !canSeeInvoice(actor, inv) {
		return nil, utils.ErrNotAuthorized
	}
	return &inv, nil
}

func canSeeInvoice(actor models.Actor, inv models.Invoice) bool {
	return actor.IsAdmin() || actor.ID == inv.StudentID || actor.ID == inv.TutorID
}
