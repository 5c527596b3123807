package services

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/terms"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Availability keeps each tutor's windows and answers whether a slot is
// covered by one of them.
type Availability struct {
	base
}

type WindowInput struct {
	Day    time.Time
	Start  models.Clock
	End    models.Clock
	Status models.WindowStatus
	Repeat models.Repeat
}

// WindowEdit carries the fields to change; nil keeps the current value.
type WindowEdit struct {
	Day    *time.Time
	Start  *models.Clock
	End    *models.Clock
	Status *models.WindowStatus
}

func validWindowTimes(start, end models.Clock) error {
	if !start.Valid() || !end.Valid() || start >= end {
		return utils.ErrInvalidTime
	}
	return nil
}

// AddWindow records a window for the calling tutor on in.Day and, for a
// weekly or fortnightly repeat, on every matching day to the end of term.
// Nothing is written if any of those days overlaps an existing window.
func (a *Availability) AddWindow(ctx context.Context, actor models.Actor, in WindowInput) ([]models.AvailabilityWindow, error) {
	if !actor.IsTutor() {
		return nil, utils.ErrNotAuthorized
	}
	if in.Status == "" {
		in.Status = models.Available
	}
	if in.Repeat == "" {
		in.Repeat = models.RepeatOnce
	}
	if !in.Status.Valid() {
		return nil, utils.WithField(utils.ErrInvalid, "status")
	}
	if !in.Repeat.Valid() {
		return nil, utils.WithField(utils.ErrInvalid, "repeat")
	}
	if err := validWindowTimes(in.Start, in.End); err != nil {
		return nil, err
	}
	day := terms.Midnight(in.Day)
	info, err := terms.Of(day)
	if err != nil {
		return nil, err
	}
	days := terms.ExpandRepeat(day, in.Repeat, info.Term)
	slot := models.Interval{Start: in.Start, End: in.End}

	var created []models.AvailabilityWindow
	err = a.transact(ctx, func(tx *gorm.DB) error {
		if err := tutorExists(tx, actor.ID); err != nil {
			return err
		}
		if err := checkWindowOverlap(tx, actor.ID, days, slot, uuid.Nil); err != nil {
			return err
		}
		for _, d := range days {
			created = append(created, models.AvailabilityWindow{
				TutorID:   actor.ID,
				Day:       d,
				StartTime: in.Start,
				EndTime:   in.End,
				Status:    in.Status,
			})
		}
		if err := tx.Create(&created).Error; err != nil {
			return errors.Wrap(err, "insert availability windows")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"tutor_id": actor.ID,
		"day":      day.Format(utils.DateLayout),
		"windows":  len(created),
	}).Info("availability added")
	return created, nil
}

func (a *Availability) RemoveWindow(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	err := a.transact(ctx, func(tx *gorm.DB) error {
		w, err := ownedWindow(tx, actor, id)
		if err != nil {
			return err
		}
		return tx.Delete(w).Error
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"tutor_id": actor.ID, "window_id": id}).Info("availability removed")
	return nil
}

// EditWindow changes one window in place. The result must satisfy the same
// rules as a new window, ignoring the window being edited.
func (a *Availability) EditWindow(ctx context.Context, actor models.Actor, id uuid.UUID, edit WindowEdit) (*models.AvailabilityWindow, error) {
	var w *models.AvailabilityWindow
	err := a.transact(ctx, func(tx *gorm.DB) error {
		var err error
		w, err = ownedWindow(tx, actor, id)
		if err != nil {
			return err
		}
		if edit.Day != nil {
			w.Day = terms.Midnight(*edit.Day)
		}
		if edit.Start != nil {
			w.StartTime = *edit.Start
		}
		if edit.End != nil {
			w.EndTime = *edit.End
		}
		if edit.Status != nil {
			if !edit.Status.Valid() {
				return utils.WithField(utils.ErrInvalid, "status")
			}
			w.Status = *edit.Status
		}
		if err := validWindowTimes(w.StartTime, w.EndTime); err != nil {
			return err
		}
		if _, err := terms.Of(w.Day); err != nil {
			return err
		}
		if err := checkWindowOverlap(tx, w.TutorID, []time.Time{w.Day}, w.Interval(), w.ID); err != nil {
			return err
		}
		return tx.Model(w).Updates(map[string]interface{}{
			"day":        w.Day,
			"start_time": w.StartTime,
			"end_time":   w.EndTime,
			"status":     w.Status,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"tutor_id": actor.ID, "window_id": id}).Info("availability edited")
	return w, nil
}

// Covers reports whether some available window of the tutor on day
// contains [start, end).
func (a *Availability) Covers(ctx context.Context, tutorID uuid.UUID, day time.Time, start, end models.Clock) (bool, error) {
	windows, err := windowsOn(a.read(ctx), tutorID, []time.Time{terms.Midnight(day)})
	if err != nil {
		return false, err
	}
	return windows.covers(terms.Midnight(day), models.Interval{Start: start, End: end}), nil
}

// ListWindows returns the tutor's windows with from <= day <= to, in day
// and start order.
func (a *Availability) ListWindows(ctx context.Context, tutorID uuid.UUID, from, to time.Time) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	err := a.read(ctx).
		Where("tutor_id = ? AND day >= ? AND day <= ?", tutorID, terms.Midnight(from), terms.Midnight(to)).
		Order("day, start_time").
		Find(&windows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list availability windows")
	}
	return windows, nil
}

func tutorExists(tx *gorm.DB, id uuid.UUID) error {
	var tutor models.Tutor
	if err := tx.First(&tutor, "user_id = ?", id).Error; err != nil {
		return lookupErr(err, "tutor")
	}
	return nil
}

func ownedWindow(tx *gorm.DB, actor models.Actor, id uuid.UUID) (*models.AvailabilityWindow, error) {
	var w models.AvailabilityWindow
	if err := tx.Clauses(forUpdate).First(&w, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "window")
	}
	if w.TutorID != actor.ID {
		return nil, utils.ErrNotOwned
	}
	return &w, nil
}

// checkWindowOverlap fails with the first day on which an existing window
// of the tutor, other than exclude, intersects slot.
func checkWindowOverlap(tx *gorm.DB, tutorID uuid.UUID, days []time.Time, slot models.Interval, exclude uuid.UUID) error {
	if len(days) == 0 {
		return nil
	}
	q := tx.Where("tutor_id = ? AND day IN ? AND start_time < ? AND end_time > ?", tutorID, days, slot.End, slot.Start)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var clash []models.AvailabilityWindow
	if err := q.Order("day").Limit(1).Find(&clash).Error; err != nil {
		return errors.Wrap(err, "check window overlap")
	}
	if len(clash) > 0 {
		return utils.OnDate(utils.ErrOverlap, clash[0].Day)
	}
	return nil
}

// dayWindows groups a tutor's windows by calendar day.
type dayWindows map[string][]models.AvailabilityWindow

func windowsOn(tx *gorm.DB, tutorID uuid.UUID, days []time.Time) (dayWindows, error) {
	out := dayWindows{}
	if len(days) == 0 {
		return out, nil
	}
	var windows []models.AvailabilityWindow
	err := tx.Where("tutor_id = ? AND day IN ? AND status = ?", tutorID, days, models.Available).
		Find(&windows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load availability windows")
	}
	for _, w := range windows {
		key := w.Day.Format(utils.DateLayout)
		out[key] = append(out[key], w)
	}
	return out, nil
}

func (d dayWindows) covers(day time.Time, slot models.Interval) bool {
	for _, w := range d[day.Format(utils.DateLayout)] {
		if w.Status == models.Available && w.Interval().Contains(slot) {
			return true
		}
	}
	return false
}
