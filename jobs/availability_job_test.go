package jobs

import (
	"context"
	"testing"
	"time"

	config "github.com/anjiri1684/tutor_scheduler/configs"
	"github.com/anjiri1684/tutor_scheduler/database"
	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

func TestPurgePastAvailability(t *testing.T) {
	db, err := database.OpenSQLite("file:TestPurgePastAvailability?mode=memory&cache=shared", nil)
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

	tutor := uuid.New()
	days := []time.Time{
		time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range days {
		w := models.AvailabilityWindow{TutorID: tutor, Day: d, StartTime: 9 * 60, EndTime: 10 * 60, Status: models.Available}
		if err := db.Create(&w).Error; err != nil {
			t.Fatalf("insert window: %v", err)
		}
	}

	now := time.Date(2024, 10, 31, 15, 0, 0, 0, time.UTC)
	removed, err := PurgePastAvailability(context.Background(), db, 30, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 window older than 30 days, removed %d", removed)
	}

	var left int64
	db.Model(&models.AvailabilityWindow{}).Count(&left)
	if left != 2 {
		t.Fatalf("expected 2 windows left, got %d", left)
	}
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	c := cron.New()
	if err := Register(c, nil, config.Config{PurgeSchedule: "not a schedule"}); err == nil {
		t.Fatalf("expected an invalid cron spec to be rejected")
	}
	if err := Register(c, nil, config.Config{PurgeSchedule: "0 3 * * *"}); err != nil {
		t.Fatalf("expected a valid cron spec, got %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Fatalf("expected one scheduled entry, got %d", len(c.Entries()))
	}
}
