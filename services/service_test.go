package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_scheduler/database"
	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/terms"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	svc       *Services
	publisher *fakePublisher
	now       time.Time

	admin    models.Actor
	tutor    models.Actor
	tutor2   models.Actor
	student  models.Actor
	student2 models.Actor
	python   models.Language
	french   models.Language
}

type fakePublisher struct {
	published []InvoiceDocument
}

func (p *fakePublisher) Publish(ctx context.Context, invoiceID uuid.UUID, doc InvoiceDocument) (string, error) {
	p.published = append(p.published, doc)
	return "https://files.example.com/invoices/" + invoiceID.String() + ".pdf", nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		ctx:       context.Background(),
		db:        db,
		publisher: &fakePublisher{},
		now:       time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC),
	}
	f.svc = New(db, Config{Now: func() time.Time { return f.now }}, f.publisher)

	f.admin = f.user(t, "@admin", models.RoleAdmin)
	f.tutor = f.user(t, "@tutor", models.RoleTutor)
	f.tutor2 = f.user(t, "@tutortwo", models.RoleTutor)
	f.student = f.user(t, "@student", models.RoleStudent)
	f.student2 = f.user(t, "@studenttwo", models.RoleStudent)

	f.python = f.language(t, "Python")
	f.french = f.language(t, "French")
	for _, tutor := range []models.Actor{f.tutor, f.tutor2} {
		if err := f.svc.Languages.AddToTutor(f.ctx, tutor, f.python.ID); err != nil {
			t.Fatalf("add python to tutor: %v", err)
		}
	}
	return f
}

func (f *fixture) user(t *testing.T, username string, role models.Role) models.Actor {
	t.Helper()
	u, err := f.svc.Users.CreateUser(f.ctx, NewUser{
		Username: username,
		Email:    strings.TrimPrefix(username, "@") + "@example.com",
		FullName: strings.TrimPrefix(username, "@") + " user",
		Password: "password123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return u.Actor()
}

func (f *fixture) language(t *testing.T, name string) models.Language {
	t.Helper()
	l, err := f.svc.Languages.Create(f.ctx, f.admin, name)
	if err != nil {
		t.Fatalf("create language %s: %v", name, err)
	}
	return *l
}

func (f *fixture) window(t *testing.T, tutor models.Actor, day time.Time, start, end models.Clock, repeat models.Repeat) []models.AvailabilityWindow {
	t.Helper()
	ws, err := f.svc.Availability.AddWindow(f.ctx, tutor, WindowInput{Day: day, Start: start, End: end, Repeat: repeat})
	if err != nil {
		t.Fatalf("add window on %s: %v", day.Format(utils.DateLayout), err)
	}
	return ws
}

func (f *fixture) request(t *testing.T, student models.Actor, lang models.Language, freq models.Frequency, term models.TermName, duration int) *models.StudentRequest {
	t.Helper()
	req, err := f.svc.Scheduler.SubmitRequest(f.ctx, student, RequestInput{
		LanguageID:    lang.ID,
		Description:   "lessons please",
		PreferredTime: clock(15, 0),
		Venue:         "Library",
		Duration:      duration,
		Frequency:     freq,
		Term:          term,
	})
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	return req
}

func (f *fixture) allocate(req *models.StudentRequest, tutor models.Actor, first time.Time, at models.Clock) (*models.Lesson, error) {
	return f.svc.Scheduler.Allocate(f.ctx, f.admin, AllocationInput{
		RequestID: req.ID,
		TutorID:   tutor.ID,
		FirstDate: first,
		FirstTime: at,
	})
}

// insertLesson stores a lesson directly, bypassing allocation checks.
func (f *fixture) insertLesson(t *testing.T, student, tutor models.Actor, first time.Time, at models.Clock, freq models.Frequency, term models.TermName, price string) models.Lesson {
	t.Helper()
	l := models.Lesson{
		TutorID:    tutor.ID,
		StudentID:  student.ID,
		LanguageID: f.python.ID,
		FirstDate:  first,
		Time:       at,
		Duration:   60,
		Frequency:  freq,
		Term:       term,
		Price:      decimal.RequireFromString(price),
	}
	if err := f.db.Create(&l).Error; err != nil {
		t.Fatalf("insert lesson: %v", err)
	}
	return l
}

func date(y int, m time.Month, d int) time.Time { return terms.Date(y, m, d) }

func clock(h, m int) models.Clock { return models.NewClock(h, m) }

func expectKind(t *testing.T, err error, sentinel *utils.Error) {
	t.Helper()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected %s error, got %v", sentinel.Kind, err)
	}
}

func expectDate(t *testing.T, err error, want time.Time) {
	t.Helper()
	var e *utils.Error
	if !errors.As(err, &e) || e.Date == nil {
		t.Fatalf("expected an error carrying a date, got %v", err)
	}
	if !e.Date.Equal(want) {
		t.Fatalf("expected error date %s, got %s", want.Format(utils.DateLayout), e.Date.Format(utils.DateLayout))
	}
}
