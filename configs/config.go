package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const devJWTSecret = "development-only-secret"

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	AdminUsername string
	AdminEmail    string
	AdminPassword string
	AdminFullName string

	LogLevel      string
	CloudinaryURL string

	// SerializableTx runs every scheduling transaction at SERIALIZABLE.
	SerializableTx bool

	AvailabilityRetentionDays int
	PurgeSchedule             string
}

func (c Config) IsProduction() bool {
	return strings.ToLower(c.AppEnv) == "production"
}

// Load reads .env (when present) and the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Warn("Warning: .env file not found, reading from system environment variables")
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "72h"))
	if err != nil {
		return Config{}, err
	}
	retention, err := strconv.Atoi(getEnv("AVAILABILITY_RETENTION_DAYS", "30"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    jwtTTL,

		AdminUsername: getEnv("ADMIN_USERNAME", "@admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminFullName: getEnv("ADMIN_FULL_NAME", "Administrator"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),

		SerializableTx: strings.ToLower(getEnv("SERIALIZABLE_TX", "true")) == "true",

		AvailabilityRetentionDays: retention,
		PurgeSchedule:             getEnv("PURGE_SCHEDULE", "0 3 * * *"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == "" {
		logrus.Warn("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func (c Config) validate() error {
	if !c.IsProduction() {
		return nil
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errMissing("DATABASE_URL")
	}
	if len(c.JWTSecret) < 16 {
		return errMissing("JWT_SECRET (min 16 chars)")
	}
	return nil
}

type configError string

func (e configError) Error() string { return "missing required setting " + string(e) }

func errMissing(key string) error { return configError(key) }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
