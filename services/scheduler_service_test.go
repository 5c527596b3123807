package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/shopspring/decimal"
)

// mondayAfternoons gives the tutor 14:00-17:00 every Monday of the
// autumn term of 2024.
func mondayAfternoons(t *testing.T, f *fixture, tutor models.Actor) {
	t.Helper()
	ws := f.window(t, tutor, date(2024, 9, 2), clock(14, 0), clock(17, 0), models.RepeatWeekly)
	if len(ws) != 16 {
		t.Fatalf("expected 16 Monday windows, got %d", len(ws))
	}
}

func TestAllocateCreatesLesson(t *testing.T) {
	f := newFixture(t)
	mondayAfternoons(t, f, f.tutor)
	req := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)

	lesson, err := f.allocate(req, f.tutor, date(2024, 9, 2), clock(15, 0))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if lesson.TutorID != f.tutor.ID || lesson.StudentID != f.student.ID {
		t.Fatalf("lesson has wrong participants: %+v", lesson)
	}
	if lesson.LanguageID != f.python.ID || lesson.Term != models.SeptChristmas || lesson.Frequency != models.Weekly {
		t.Fatalf("lesson did not copy the request: %+v", lesson)
	}
	if lesson.Venue != "Library" || lesson.Duration != 60 || !lesson.Price.IsZero() {
		t.Fatalf("unexpected lesson details: %+v", lesson)
	}

	var stored models.StudentRequest
	if err := f.db.First(&stored, "id = ?", req.ID).Error; err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if !stored.IsAllocated || stored.Status != models.RequestAllocated {
		t.Fatalf("expected request to be allocated, got %+v", stored)
	}

	_, err = f.allocate(req, f.tutor2, date(2024, 9, 2), clock(15, 0))
	expectKind(t, err, utils.ErrAlreadyAllocated)
}

func TestAllocateTutorConflict(t *testing.T) {
	f := newFixture(t)
	mondayAfternoons(t, f, f.tutor)

	other := f.request(t, f.student2, f.python, models.Weekly, models.SeptChristmas, 60)
	if _, err := f.allocate(other, f.tutor, date(2024, 10, 7), clock(15, 0)); err != nil {
		t.Fatalf("allocate other student: %v", err)
	}

	req := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)
	_, err := f.allocate(req, f.tutor, date(2024, 9, 2), clock(15, 0))
	expectKind(t, err, utils.ErrTutorConflict)
	expectDate(t, err, date(2024, 10, 7))

	var stored models.StudentRequest
	f.db.First(&stored, "id = ?", req.ID)
	if stored.IsAllocated {
		t.Fatalf("expected a failed allocation to leave the request pending")
	}
	var lessons int64
	f.db.Model(&models.Lesson{}).Where("student_id = ?", f.student.ID).Count(&lessons)
	if lessons != 0 {
		t.Fatalf("expected no lesson for the student, found %d", lessons)
	}
}

func TestAllocateStudentConflict(t *testing.T) {
	f := newFixture(t)
	mondayAfternoons(t, f, f.tutor)
	mondayAfternoons(t, f, f.tutor2)

	first := f.request(t, f.student, f.python, models.Fortnightly, models.SeptChristmas, 60)
	if _, err := f.allocate(first, f.tutor2, date(2024, 9, 16), clock(15, 30)); err != nil {
		t.Fatalf("allocate first: %v", err)
	}

	second := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)
	_, err := f.allocate(second, f.tutor, date(2024, 9, 2), clock(15, 0))
	expectKind(t, err, utils.ErrStudentConflict)
	expectDate(t, err, date(2024, 9, 16))
}

func TestAllocateAdjacentLessonsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	mondayAfternoons(t, f, f.tutor)

	a := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)
	if _, err := f.allocate(a, f.tutor, date(2024, 9, 2), clock(14, 0)); err != nil {
		t.Fatalf("allocate 14:00: %v", err)
	}
	b := f.request(t, f.student2, f.python, models.Weekly, models.SeptChristmas, 60)
	if _, err := f.allocate(b, f.tutor, date(2024, 9, 2), clock(15, 0)); err != nil {
		t.Fatalf("expected 15:00 lesson to fit right after 14:00, got %v", err)
	}
}

func TestAllocateRejections(t *testing.T) {
	f := newFixture(t)
	f.window(t, f.tutor, date(2024, 9, 2), clock(14, 0), clock(17, 0), models.RepeatOnce)

	weekly := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)
	french := f.request(t, f.student, f.french, models.Weekly, models.SeptChristmas, 60)
	spring := f.request(t, f.student, f.python, models.Weekly, models.JanEaster, 60)
	long := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 90)

	cases := []struct {
		name  string
		req   *models.StudentRequest
		first time.Time
		at    models.Clock
		want  *utils.Error
	}{
		{"language not taught", french, date(2024, 9, 2), clock(15, 0), utils.ErrLanguageMismatch},
		{"wrong term", spring, date(2024, 9, 2), clock(15, 0), utils.ErrTermMismatch},
		{"outside any term", weekly, date(2024, 8, 26), clock(15, 0), utils.ErrNotInTermTime},
		{"runs past midnight", long, date(2024, 9, 2), clock(23, 0), utils.ErrInvalidDuration},
		{"missing availability", weekly, date(2024, 9, 2), clock(15, 0), utils.ErrTutorUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.allocate(tc.req, f.tutor, tc.first, tc.at)
			expectKind(t, err, tc.want)
		})
	}

	_, err := f.allocate(weekly, f.tutor, date(2024, 9, 2), clock(15, 0))
	expectDate(t, err, date(2024, 9, 9))

	_, err = f.svc.Scheduler.Allocate(f.ctx, f.tutor, AllocationInput{RequestID: weekly.ID, TutorID: f.tutor.ID, FirstDate: date(2024, 9, 2), FirstTime: clock(15, 0)})
	expectKind(t, err, utils.ErrNotAuthorized)

	_, err = f.svc.Scheduler.Allocate(f.ctx, f.admin, AllocationInput{RequestID: weekly.ID, TutorID: f.tutor.ID, FirstDate: date(2024, 9, 2), FirstTime: clock(15, 0), Price: decimal.RequireFromString("-1")})
	expectKind(t, err, utils.ErrInvalidPrice)
}

func TestDenyRequest(t *testing.T) {
	f := newFixture(t)
	mondayAfternoons(t, f, f.tutor)
	req := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)

	_, err := f.svc.Scheduler.Deny(f.ctx, f.admin, req.ID, "  ")
	expectKind(t, err, utils.ErrInvalid)

	denied, err := f.svc.Scheduler.Deny(f.ctx, f.admin, req.ID, "No tutor free on Mondays")
	if err != nil {
		t.Fatalf("deny: %v", err)
	}
	if denied.Status != models.RequestDenied || denied.IsAllocated || denied.DenialReason == nil {
		t.Fatalf("unexpected denied request %+v", denied)
	}

	_, err = f.allocate(req, f.tutor, date(2024, 9, 2), clock(15, 0))
	expectKind(t, err, utils.ErrRequestDenied)

	other := f.request(t, f.student2, f.python, models.Weekly, models.SeptChristmas, 60)
	if _, err := f.allocate(other, f.tutor, date(2024, 9, 2), clock(15, 0)); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	_, err = f.svc.Scheduler.Deny(f.ctx, f.admin, other.ID, "too late")
	expectKind(t, err, utils.ErrAlreadyAllocated)
}

func TestSubmitRequestValidation(t *testing.T) {
	f := newFixture(t)
	base := RequestInput{LanguageID: f.python.ID, PreferredTime: clock(15, 0), Duration: 60, Frequency: models.Weekly, Term: models.SeptChristmas}

	noDuration := base
	noDuration.Duration = 0
	badFrequency := base
	badFrequency.Frequency = "daily"
	badTerm := base
	badTerm.Term = "summer"
	unknownLanguage := base
	unknownLanguage.LanguageID = f.admin.ID

	cases := []struct {
		name  string
		actor models.Actor
		in    RequestInput
		want  *utils.Error
	}{
		{"tutor caller", f.tutor, base, utils.ErrNotAuthorized},
		{"zero duration", f.student, noDuration, utils.ErrInvalidDuration},
		{"unknown frequency", f.student, badFrequency, utils.ErrInvalid},
		{"unknown term", f.student, badTerm, utils.ErrInvalid},
		{"unknown language", f.student, unknownLanguage, utils.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Scheduler.SubmitRequest(f.ctx, tc.actor, tc.in)
			expectKind(t, err, tc.want)
		})
	}
}

func TestCancelKeepsRequestAllocated(t *testing.T) {
	f := newFixture(t)
	mondayAfternoons(t, f, f.tutor)
	req := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)
	lesson, err := f.allocate(req, f.tutor, date(2024, 9, 2), clock(15, 0))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	updated, err := f.svc.Scheduler.UpdateLesson(f.ctx, f.admin, lesson.ID, LessonUpdate{Cancel: true})
	if err != nil || updated != nil {
		t.Fatalf("expected cancel to return nil, nil, got %v, %v", updated, err)
	}

	var count int64
	f.db.Model(&models.Lesson{}).Where("id = ?", lesson.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected the lesson to be deleted")
	}
	var stored models.StudentRequest
	f.db.First(&stored, "id = ?", req.ID)
	if !stored.IsAllocated {
		t.Fatalf("expected the request to stay allocated after cancellation")
	}

	// The freed slot can be booked again.
	other := f.request(t, f.student2, f.python, models.Weekly, models.SeptChristmas, 60)
	if _, err := f.allocate(other, f.tutor, date(2024, 9, 2), clock(15, 0)); err != nil {
		t.Fatalf("expected the cancelled slot to be free, got %v", err)
	}
}

func TestRescheduleLesson(t *testing.T) {
	f := newFixture(t)
	mondayAfternoons(t, f, f.tutor)
	req := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)
	lesson, err := f.allocate(req, f.tutor, date(2024, 9, 2), clock(15, 0))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	same := clock(15, 0)
	_, err = f.svc.Scheduler.UpdateLesson(f.ctx, f.admin, lesson.ID, LessonUpdate{NewTime: &same})
	expectKind(t, err, utils.ErrInvalidTime)

	// Moving half an hour overlaps only the lesson itself.
	later := clock(15, 30)
	moved, err := f.svc.Scheduler.UpdateLesson(f.ctx, f.admin, lesson.ID, LessonUpdate{NewTime: &later})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.Time != later {
		t.Fatalf("expected time %s, got %s", later, moved.Time)
	}

	tooLate := clock(16, 30)
	_, err = f.svc.Scheduler.UpdateLesson(f.ctx, f.admin, lesson.ID, LessonUpdate{NewTime: &tooLate})
	expectKind(t, err, utils.ErrTutorUnavailable)
	expectDate(t, err, date(2024, 9, 2))

	tuesday := date(2024, 9, 3)
	_, err = f.svc.Scheduler.UpdateLesson(f.ctx, f.admin, lesson.ID, LessonUpdate{NewDate: &tuesday})
	expectKind(t, err, utils.ErrTutorUnavailable)

	spring := date(2025, 1, 13)
	_, err = f.svc.Scheduler.UpdateLesson(f.ctx, f.admin, lesson.ID, LessonUpdate{NewDate: &spring})
	expectKind(t, err, utils.ErrTermMismatch)

	_, err = f.svc.Scheduler.UpdateLesson(f.ctx, f.student, lesson.ID, LessonUpdate{Cancel: true})
	expectKind(t, err, utils.ErrNotAuthorized)

	other := f.request(t, f.student2, f.python, models.Weekly, models.SeptChristmas, 60)
	otherLesson, err := f.allocate(other, f.tutor, date(2024, 9, 2), clock(14, 0))
	if err != nil {
		t.Fatalf("allocate other: %v", err)
	}
	clash := clock(15, 0)
	_, err = f.svc.Scheduler.UpdateLesson(f.ctx, f.admin, otherLesson.ID, LessonUpdate{NewTime: &clash})
	expectKind(t, err, utils.ErrTutorConflict)
}

func TestCalendarListsMonthOccurrences(t *testing.T) {
	f := newFixture(t)
	mondayAfternoons(t, f, f.tutor)
	f.window(t, f.tutor, date(2024, 9, 4), clock(9, 0), clock(10, 0), models.RepeatWeekly)

	weekly := f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)
	if _, err := f.allocate(weekly, f.tutor, date(2024, 9, 2), clock(16, 0)); err != nil {
		t.Fatalf("allocate weekly: %v", err)
	}
	fortnightly := f.request(t, f.student, f.python, models.Fortnightly, models.SeptChristmas, 60)
	if _, err := f.allocate(fortnightly, f.tutor, date(2024, 9, 4), clock(9, 0)); err != nil {
		t.Fatalf("allocate fortnightly: %v", err)
	}

	occ, err := f.svc.Scheduler.Calendar(f.ctx, f.student, 2024, time.September)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	want := []time.Time{
		date(2024, 9, 2), date(2024, 9, 4), date(2024, 9, 9), date(2024, 9, 16),
		date(2024, 9, 18), date(2024, 9, 23), date(2024, 9, 30),
	}
	if len(occ) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(occ))
	}
	for i := range want {
		if !occ[i].Date.Equal(want[i]) {
			t.Fatalf("occurrence %d: expected %s, got %s", i, want[i].Format(utils.DateLayout), occ[i].Date.Format(utils.DateLayout))
		}
	}

	tutorView, err := f.svc.Scheduler.Calendar(f.ctx, f.tutor, 2024, time.September)
	if err != nil || len(tutorView) != len(want) {
		t.Fatalf("expected the tutor to see %d occurrences, got %d (%v)", len(want), len(tutorView), err)
	}
	empty, err := f.svc.Scheduler.Calendar(f.ctx, f.student2, 2024, time.September)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected an empty calendar for another student, got %d (%v)", len(empty), err)
	}
	dec, _ := f.svc.Scheduler.Calendar(f.ctx, f.student, 2024, time.December)
	// Mondays 2, 9, 16 and Wednesdays 11 (fortnightly from 09-04).
	if len(dec) != 4 {
		t.Fatalf("expected 4 December occurrences, got %d", len(dec))
	}
}

func TestListRequestsScopedByRole(t *testing.T) {
	f := newFixture(t)
	f.request(t, f.student, f.python, models.Weekly, models.SeptChristmas, 60)
	f.request(t, f.student2, f.python, models.Weekly, models.SeptChristmas, 60)

	mine, err := f.svc.Scheduler.ListRequests(f.ctx, f.student, "")
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected the student to see 1 request, got %d (%v)", len(mine), err)
	}
	all, err := f.svc.Scheduler.ListRequests(f.ctx, f.admin, models.RequestPending)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected the admin to see 2 requests, got %d (%v)", len(all), err)
	}
	_, err = f.svc.Scheduler.ListRequests(f.ctx, f.tutor, "")
	expectKind(t, err, utils.ErrNotAuthorized)
}
