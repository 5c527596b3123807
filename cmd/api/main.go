package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/tutor_scheduler/configs"
	"github.com/anjiri1684/tutor_scheduler/database"
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/anjiri1684/tutor_scheduler/jobs"
	"github.com/anjiri1684/tutor_scheduler/routes"
	"github.com/anjiri1684/tutor_scheduler/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("🔥 Invalid configuration: %v", err)
	}
	configureLogging(cfg)

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logrus.Fatalf("🔥 Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("🔥 %v", err)
	}
	if err := database.SeedAdmin(context.Background(), db, cfg); err != nil {
		logrus.Fatalf("🔥 %v", err)
	}

	var publisher services.DocumentPublisher
	if cfg.CloudinaryURL != "" {
		publisher = services.PDFPublisher{CloudinaryURL: cfg.CloudinaryURL}
	} else {
		logrus.Warn("CLOUDINARY_URL not set, invoice documents are disabled")
	}
	svc := services.New(db, services.Config{Serializable: cfg.SerializableTx}, publisher)

	c := cron.New()
	if err := jobs.Register(c, db, cfg); err != nil {
		logrus.Fatalf("🔥 %v", err)
	}
	c.Start()
	defer c.Stop()
	logrus.Info("✅ Cron job for availability purge scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Tutor Scheduler",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			logrus.WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).WithError(err).Error("[ERROR]")
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Tutor Scheduler API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Setup(app, handlers.New(svc, cfg), cfg.JWTSecret)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("🔥 Server shutdown failed")
		}
	}()

	logrus.Infof("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.Fatalf("🔥 Server failed to start: %v", err)
	}
}

func configureLogging(cfg config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
