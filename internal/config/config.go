package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Email    EmailConfig
	Frontend FrontendConfig
}

type ServerConfig struct {
	Port         string
	CORSOrigin   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
	// CheckInLockTTL bounds how long a check-in attempt can hold the
	// per-user lock before it expires on its own.
	CheckInLockTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	RegistrationCompleted string
	AttendanceCheckedIn   string
	OrderPlaced           string
}

type EmailConfig struct {
	SMTPHost    string
	SMTPPort    string
	Address     string
	AppPassword string
	DialTimeout time.Duration
}

type FrontendConfig struct {
	// BaseURL is the deployed frontend base; the QR payload
	// <BaseURL>/congratulations?id=<id> is part of the wire contract.
	BaseURL  string
	LogoPath string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8085"),
			CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:5173"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:          getEnv("POSTGRES_DSN", ""),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			CheckInLockTTL: time.Duration(getEnvInt("CHECKIN_LOCK_TTL_SECONDS", 10)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_ADDR", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				RegistrationCompleted: getEnv("KAFKA_TOPIC_REGISTRATION", "registration.completed"),
				AttendanceCheckedIn:   getEnv("KAFKA_TOPIC_CHECKIN", "attendance.checked-in"),
				OrderPlaced:           getEnv("KAFKA_TOPIC_ORDER", "orders.placed"),
			},
		},
		Email: EmailConfig{
			SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:    getEnv("SMTP_PORT", "465"),
			Address:     getEnv("EMAIL", ""),
			AppPassword: getEnv("EMAIL_PASSWORD", ""),
			DialTimeout: time.Duration(getEnvInt("SMTP_DIAL_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Frontend: FrontendConfig{
			BaseURL:  getEnv("FRONTEND_BASE_URL", "https://starbucks-mttn.vercel.app"),
			LogoPath: getEnv("LOGO_PATH", "./public/mttn.jpg"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
