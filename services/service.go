package services

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_scheduler/database"
	"github.com/anjiri1684/tutor_scheduler/terms"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Config is fixed at construction and shared by every service.
type Config struct {
	// Serializable runs each operation's transaction at SERIALIZABLE.
	Serializable bool
	// Now is the wall clock; nil means time.Now.
	Now func() time.Time
}

// Services bundles the scheduling core and its collaborators over one
// database handle.
type Services struct {
	Availability *Availability
	Scheduler    *Scheduler
	Invoices     *Invoices
	Users        *Users
	Languages    *Languages
	Messages     *Messages
}

func New(db *gorm.DB, cfg Config, publisher DocumentPublisher) *Services {
	b := base{db: db, cfg: cfg}
	return &Services{
		Availability: &Availability{base: b},
		Scheduler:    &Scheduler{base: b},
		Invoices:     &Invoices{base: b, publisher: publisher},
		Users:        &Users{base: b},
		Languages:    &Languages{base: b},
		Messages:     &Messages{base: b},
	}
}

type base struct {
	db  *gorm.DB
	cfg Config
}

func (b base) transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return database.Transact(ctx, b.db, b.cfg.Serializable, fn)
}

func (b base) read(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (b base) today() time.Time {
	return terms.Midnight(b.cfg.now())
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

// lookupErr turns a missing row into NotFound naming the entity and wraps
// anything else with context.
func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.WithField(utils.ErrNotFound, entity)
	}
	return errors.Wrapf(err, "load %s", entity)
}
