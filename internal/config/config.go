package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment
type Config struct {
	MongoURI string
	MongoDB  string
	RedisURI string
	HTTPPort string

	JWTSecret         string
	StaffUsername     string
	StaffPassword     string
	StaffPasswordHash string // bcrypt; takes precedence over StaffPassword
	StaffTenantID     string

	SMTP SMTPConfig

	CORSAllowedOrigins []string
	ReminderInterval   time.Duration
	ReminderOffsets    []int // days ahead
	LockTTL            time.Duration
}

// SMTPConfig configures the outgoing mailer. An empty Host means log-only delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled returns true if an SMTP host is configured
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Load reads .env (outside production) and the process environment
func Load() *Config {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to load .env: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDB:  getEnv("MONGO_DB", "uniqbrio"),
		RedisURI: getEnv("REDIS_URI", "localhost:6379"),
		HTTPPort: getEnv("PORT", "8080"),

		JWTSecret:         getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		StaffUsername:     getEnv("STAFF_USERNAME", "admin"),
		StaffPassword:     getEnv("STAFF_PASSWORD", "password123"),
		StaffPasswordHash: os.Getenv("STAFF_PASSWORD_HASH"),
		StaffTenantID:     getEnv("STAFF_TENANT_ID", "default"),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("MAIL_FROM", "noreply@uniqbrio.local"),
		},

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReminderInterval:   getEnvDuration("REMINDER_INTERVAL", time.Hour),
		ReminderOffsets:    []int{1, 3, 7},
		LockTTL:            getEnvDuration("LOCK_TTL", 10*time.Second),
	}

	// Remove redis:// prefix if present
	cfg.RedisURI = strings.TrimPrefix(cfg.RedisURI, "redis://")

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		log.Printf("Warning: %s=%q is not an integer, using %d", key, val, defaultVal)
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("Warning: %s=%q is not a duration, using %s", key, val, defaultVal)
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
