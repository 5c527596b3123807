package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	config "github.com/anjiri1684/tutor_scheduler/configs"
	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// ConnectDB opens Postgres, or SQLite when DATABASE_URL starts with
// sqlite:// (local development and tests).
func ConnectDB(cfg config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if !cfg.IsProduction() {
		level = logger.Info
	}
	gormLogger := logger.New(logrus.StandardLogger(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	gormConfig := &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger,
	}

	if strings.HasPrefix(cfg.DatabaseURL, sqlitePrefix) {
		return OpenSQLite(strings.TrimPrefix(cfg.DatabaseURL, sqlitePrefix), gormConfig)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(55 * time.Minute)

	logrus.Info("✅ Database connected successfully")
	return db, nil
}

// OpenSQLite opens a SQLite database on a single connection, so that an
// in-memory database is shared by every query.
func OpenSQLite(dsn string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if gormConfig == nil {
		gormConfig = &gorm.Config{
			SkipDefaultTransaction:                   true,
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   logger.Default.LogMode(logger.Silent),
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Tutor{},
		&models.Language{},
		&models.AvailabilityWindow{},
		&models.StudentRequest{},
		&models.Lesson{},
		&models.Invoice{},
		&models.Message{},
	)
	if err != nil {
		return errors.Wrap(err, "migrate database")
	}
	logrus.Info("✅ Database migration successful")
	return nil
}

// Transact runs fn in one transaction, at SERIALIZABLE when asked to.
// Any error from fn, or a cancelled ctx, rolls every write back.
func Transact(ctx context.Context, db *gorm.DB, serializable bool, fn func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	if serializable {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}
	return db.WithContext(ctx).Transaction(fn, opts...)
}

func SeedAdmin(ctx context.Context, db *gorm.DB, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logrus.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	err := db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", cfg.AdminEmail, cfg.AdminUsername).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "check for admin user")
	}

	if count > 0 {
		logrus.Info("Admin user already exists.")
		return nil
	}

	hashedPassword, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	adminUser := models.User{
		Username: cfg.AdminUsername,
		FullName: cfg.AdminFullName,
		Email:    cfg.AdminEmail,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
	}

	if err := db.WithContext(ctx).Create(&adminUser).Error; err != nil {
		return errors.Wrap(err, "seed admin user")
	}

	logrus.WithField("username", adminUser.Username).Info("✅ Admin user seeded successfully")
	return nil
}
