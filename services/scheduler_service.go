package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/terms"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Scheduler turns student requests into recurring lessons and keeps every
// occurrence inside tutor availability and free of double bookings.
type Scheduler struct {
	base
}

type RequestInput struct {
	LanguageID    uuid.UUID
	Description   string
	PreferredTime models.Clock
	Venue         string
	Duration      int
	Frequency     models.Frequency
	Term          models.TermName
}

type AllocationInput struct {
	RequestID uuid.UUID
	TutorID   uuid.UUID
	FirstDate time.Time
	FirstTime models.Clock
	Price     decimal.Decimal
}

// LessonUpdate either cancels a lesson or moves its first occurrence.
// Nil NewDate or NewTime keeps the current value.
type LessonUpdate struct {
	Cancel  bool
	NewDate *time.Time
	NewTime *models.Clock
}

// LessonFilter narrows an admin's lesson listing.
type LessonFilter struct {
	StudentID *uuid.UUID
	TutorID   *uuid.UUID
}

func (s *Scheduler) SubmitRequest(ctx context.Context, actor models.Actor, in RequestInput) (*models.StudentRequest, error) {
	if !actor.IsStudent() {
		return nil, utils.ErrNotAuthorized
	}
	if in.Duration <= 0 {
		return nil, utils.ErrInvalidDuration
	}
	if !in.PreferredTime.Valid() || in.PreferredTime >= models.MinutesPerDay {
		return nil, utils.WithField(utils.ErrInvalidTime, "preferred_time")
	}
	if !in.Frequency.Valid() {
		return nil, utils.WithField(utils.ErrInvalid, "frequency")
	}
	if !in.Term.Valid() {
		return nil, utils.WithField(utils.ErrInvalid, "term")
	}

	req := models.StudentRequest{
		StudentID:     actor.ID,
		LanguageID:    in.LanguageID,
		Description:   strings.TrimSpace(in.Description),
		PreferredTime: in.PreferredTime,
		Venue:         strings.TrimSpace(in.Venue),
		Duration:      in.Duration,
		Frequency:     in.Frequency,
		Term:          in.Term,
		Status:        models.RequestPending,
	}
	err := s.transact(ctx, func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, "user_id = ?", actor.ID).Error; err != nil {
			return lookupErr(err, "student")
		}
		if err := tx.First(&req.Language, "id = ?", in.LanguageID).Error; err != nil {
			return lookupErr(err, "language")
		}
		return tx.Omit("Language").Create(&req).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"student_id": actor.ID, "request_id": req.ID}).Info("lesson requested")
	return &req, nil
}

// Allocate assigns a tutor to a pending request and creates its lesson. Every
// occurrence of the lesson must lie in one of the tutor's available windows
// and clear both the student's and the tutor's existing lessons.
func (s *Scheduler) Allocate(ctx context.Context, actor models.Actor, in AllocationInput) (*models.Lesson, error) {
	if !actor.IsAdmin() {
		return nil, utils.ErrNotAuthorized
	}
	if err := validPrice(in.Price); err != nil {
		return nil, err
	}
	first := terms.Midnight(in.FirstDate)

	var lesson models.Lesson
	err := s.transact(ctx, func(tx *gorm.DB) error {
		var req models.StudentRequest
		if err := tx.Clauses(forUpdate).First(&req, "id = ?", in.RequestID).Error; err != nil {
			return lookupErr(err, "request")
		}
		if req.IsAllocated {
			return utils.ErrAlreadyAllocated
		}
		if req.Status == models.RequestDenied {
			return utils.ErrRequestDenied
		}

		var tutor models.Tutor
		if err := tx.Preload("Languages").First(&tutor, "user_id = ?", in.TutorID).Error; err != nil {
			return lookupErr(err, "tutor")
		}
		if !tutor.Teaches(req.LanguageID) {
			return utils.ErrLanguageMismatch
		}

		info, err := terms.Of(first)
		if err != nil {
			return err
		}
		if info.Term != req.Term {
			return utils.OnDate(utils.ErrTermMismatch, first)
		}
		slot, err := lessonSlot(in.FirstTime, req.Duration)
		if err != nil {
			return err
		}
		dates := terms.ExpandOccurrences(first, req.Frequency, req.Term)
		if err := checkSlot(tx, tutor.UserID, req.StudentID, dates, slot, uuid.Nil); err != nil {
			return err
		}

		requestID := req.ID
		lesson = models.Lesson{
			RequestID:  &requestID,
			TutorID:    tutor.UserID,
			StudentID:  req.StudentID,
			LanguageID: req.LanguageID,
			FirstDate:  first,
			Time:       in.FirstTime,
			Venue:      req.Venue,
			Duration:   req.Duration,
			Frequency:  req.Frequency,
			Term:       req.Term,
			Price:      in.Price,
		}
		if err := tx.Create(&lesson).Error; err != nil {
			return errors.Wrap(err, "insert lesson")
		}
		return tx.Model(&req).Updates(map[string]interface{}{
			"status":       models.RequestAllocated,
			"is_allocated": true,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": in.RequestID,
		"lesson_id":  lesson.ID,
		"tutor_id":   lesson.TutorID,
		"student_id": lesson.StudentID,
	}).Info("request allocated")
	return &lesson, nil
}

// Deny closes a pending request with a reason. Denied is terminal.
func (s *Scheduler) Deny(ctx context.Context, actor models.Actor, requestID uuid.UUID, reason string) (*models.StudentRequest, error) {
	if !actor.IsAdmin() {
		return nil, utils.ErrNotAuthorized
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, utils.WithField(utils.ErrInvalid, "reason")
	}
	var req models.StudentRequest
	err := s.transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&req, "id = ?", requestID).Error; err != nil {
			return lookupErr(err, "request")
		}
		if req.IsAllocated {
			return utils.ErrAlreadyAllocated
		}
		if req.Status == models.RequestDenied {
			return utils.ErrRequestDenied
		}
		req.Status = models.RequestDenied
		req.DenialReason = &reason
		return tx.Model(&req).Updates(map[string]interface{}{
			"status":        req.Status,
			"denial_reason": reason,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("request_id", requestID).Info("request denied")
	return &req, nil
}

// UpdateLesson cancels or reschedules a lesson. A cancelled lesson returns
// nil. Lessons on a paid invoice cannot change; for an unpaid invoice the
// total follows the change.
func (s *Scheduler) UpdateLesson(ctx context.Context, actor models.Actor, lessonID uuid.UUID, upd LessonUpdate) (*models.Lesson, error) {
	if !actor.IsAdmin() {
		return nil, utils.ErrNotAuthorized
	}
	var lesson models.Lesson
	err := s.transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&lesson, "id = ?", lessonID).Error; err != nil {
			return lookupErr(err, "lesson")
		}
		if lesson.InvoiceID != nil {
			var inv models.Invoice
			if err := tx.Clauses(forUpdate).First(&inv, "id = ?", *lesson.InvoiceID).Error; err != nil {
				return lookupErr(err, "invoice")
			}
			if inv.Paid {
				return utils.ErrInvoiceSettled
			}
		}
		if upd.Cancel {
			return cancelLesson(tx, &lesson)
		}
		return rescheduleLesson(tx, &lesson, upd)
	})
	if err != nil {
		return nil, err
	}

	entry := logrus.WithField("lesson_id", lessonID)
	if upd.Cancel {
		entry.Info("lesson cancelled")
		return nil, nil
	}
	entry.WithFields(logrus.Fields{
		"first_date": lesson.FirstDate.Format(utils.DateLayout),
		"time":       lesson.Time.String(),
	}).Info("lesson rescheduled")
	return &lesson, nil
}

func cancelLesson(tx *gorm.DB, lesson *models.Lesson) error {
	if err := tx.Delete(lesson).Error; err != nil {
		return errors.Wrap(err, "delete lesson")
	}
	if lesson.InvoiceID != nil {
		return recomputeInvoiceTotal(tx, *lesson.InvoiceID)
	}
	return nil
}

func rescheduleLesson(tx *gorm.DB, lesson *models.Lesson, upd LessonUpdate) error {
	newDate := lesson.FirstDate
	if upd.NewDate != nil {
		newDate = terms.Midnight(*upd.NewDate)
	}
	newTime := lesson.Time
	if upd.NewTime != nil {
		newTime = *upd.NewTime
	}
	if newDate.Equal(terms.Midnight(lesson.FirstDate)) && newTime == lesson.Time {
		return utils.Newf(utils.ErrInvalidTime, "new date or time must differ from the current one")
	}

	info, err := terms.Of(newDate)
	if err != nil {
		return err
	}
	if info.Term != lesson.Term {
		return utils.OnDate(utils.ErrTermMismatch, newDate)
	}
	slot, err := lessonSlot(newTime, lesson.Duration)
	if err != nil {
		return err
	}
	dates := terms.ExpandOccurrences(newDate, lesson.Frequency, lesson.Term)
	if err := checkSlot(tx, lesson.TutorID, lesson.StudentID, dates, slot, lesson.ID); err != nil {
		return err
	}

	lesson.FirstDate = newDate
	lesson.Time = newTime
	err = tx.Model(lesson).Updates(map[string]interface{}{
		"first_date": newDate,
		"time":       newTime,
	}).Error
	if err != nil {
		return errors.Wrap(err, "update lesson")
	}
	if lesson.InvoiceID != nil {
		return recomputeInvoiceTotal(tx, *lesson.InvoiceID)
	}
	return nil
}

func lessonSlot(start models.Clock, duration int) (models.Interval, error) {
	if duration <= 0 {
		return models.Interval{}, utils.ErrInvalidDuration
	}
	if !start.Valid() || start >= models.MinutesPerDay {
		return models.Interval{}, utils.WithField(utils.ErrInvalidTime, "time")
	}
	slot := models.Interval{Start: start, End: start.Add(duration)}
	if slot.End > models.MinutesPerDay {
		return models.Interval{}, utils.Newf(utils.ErrInvalidDuration, "lesson would run past midnight")
	}
	return slot, nil
}

// checkSlot runs the per-occurrence checks in order: tutor availability,
// then the student's lessons, then the tutor's lessons. exclude skips a
// lesson that is being moved.
func checkSlot(tx *gorm.DB, tutorID, studentID uuid.UUID, dates []time.Time, slot models.Interval, exclude uuid.UUID) error {
	windows, err := windowsOn(tx, tutorID, dates)
	if err != nil {
		return err
	}
	studentLessons, err := lessonsOf(tx, "student_id", studentID, exclude)
	if err != nil {
		return err
	}
	tutorLessons, err := lessonsOf(tx, "tutor_id", tutorID, exclude)
	if err != nil {
		return err
	}
	studentBusy := occupancy(studentLessons)
	tutorBusy := occupancy(tutorLessons)

	for _, d := range dates {
		if !windows.covers(d, slot) {
			return utils.OnDate(utils.ErrTutorUnavailable, d)
		}
		if studentBusy.clashes(d, slot) {
			return utils.OnDate(utils.ErrStudentConflict, d)
		}
		if tutorBusy.clashes(d, slot) {
			return utils.OnDate(utils.ErrTutorConflict, d)
		}
	}
	return nil
}

func lessonsOf(tx *gorm.DB, column string, id, exclude uuid.UUID) ([]models.Lesson, error) {
	q := tx.Where(column+" = ?", id)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var lessons []models.Lesson
	if err := q.Find(&lessons).Error; err != nil {
		return nil, errors.Wrapf(err, "load lessons by %s", column)
	}
	return lessons, nil
}

// bookedSlots maps a calendar day to the intervals already taken on it.
type bookedSlots map[string][]models.Interval

func occupancy(lessons []models.Lesson) bookedSlots {
	booked := bookedSlots{}
	for _, l := range lessons {
		for _, d := range terms.ExpandOccurrences(l.FirstDate, l.Frequency, l.Term) {
			key := d.Format(utils.DateLayout)
			booked[key] = append(booked[key], l.Interval())
		}
	}
	return booked
}

func (b bookedSlots) clashes(day time.Time, slot models.Interval) bool {
	for _, taken := range b[day.Format(utils.DateLayout)] {
		if taken.Overlaps(slot) {
			return true
		}
	}
	return false
}

// ListRequests shows a student their own requests and an admin every
// request. status filters when non-empty.
func (s *Scheduler) ListRequests(ctx context.Context, actor models.Actor, status models.RequestStatus) ([]models.StudentRequest, error) {
	q := s.read(ctx).Preload("Language")
	switch {
	case actor.IsAdmin():
	case actor.IsStudent():
		q = q.Where("student_id = ?", actor.ID)
	default:
		return nil, utils.ErrNotAuthorized
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.StudentRequest
	if err := q.Order("created_at").Find(&requests).Error; err != nil {
		return nil, errors.Wrap(err, "list requests")
	}
	return requests, nil
}

func (s *Scheduler) ListLessons(ctx context.Context, actor models.Actor, filter LessonFilter) ([]models.Lesson, error) {
	q := s.read(ctx)
	switch {
	case actor.IsAdmin():
		if filter.StudentID != nil {
			q = q.Where("student_id = ?", *filter.StudentID)
		}
		if filter.TutorID != nil {
			q = q.Where("tutor_id = ?", *filter.TutorID)
		}
	case actor.IsStudent():
		q = q.Where("student_id = ?", actor.ID)
	case actor.IsTutor():
		q = q.Where("tutor_id = ?", actor.ID)
	default:
		return nil, utils.ErrNotAuthorized
	}
	var lessons []models.Lesson
	if err := q.Order("first_date, time").Find(&lessons).Error; err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}
	return lessons, nil
}

// Calendar lists every occurrence of the caller's lessons that falls in the
// given month, ordered by date and then time.
func (s *Scheduler) Calendar(ctx context.Context, actor models.Actor, year int, month time.Month) ([]models.Occurrence, error) {
	if month < time.January || month > time.December {
		return nil, utils.WithField(utils.ErrInvalid, "month")
	}
	lessons, err := s.ListLessons(ctx, actor, LessonFilter{})
	if err != nil {
		return nil, err
	}
	from := terms.Date(year, month, 1)
	to := from.AddDate(0, 1, 0)

	occurrences := []models.Occurrence{}
	for _, l := range lessons {
		for _, d := range terms.ExpandOccurrences(l.FirstDate, l.Frequency, l.Term) {
			if d.Before(from) || !d.Before(to) {
				continue
			}
			occurrences = append(occurrences, models.Occurrence{
				LessonID:  l.ID,
				TutorID:   l.TutorID,
				StudentID: l.StudentID,
				Date:      d,
				Time:      l.Time,
				Duration:  l.Duration,
				Venue:     l.Venue,
			})
		}
	}
	sort.SliceStable(occurrences, func(i, j int) bool {
		if !occurrences[i].Date.Equal(occurrences[j].Date) {
			return occurrences[i].Date.Before(occurrences[j].Date)
		}
		return occurrences[i].Time < occurrences[j].Time
	})
	return occurrences, nil
}
