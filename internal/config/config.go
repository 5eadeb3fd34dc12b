package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig
	Admin  AdminConfig
	Visits VisitsConfig
	Votes  VotesConfig
	DBURL  string
	DBLog  string
	AppEnv string
}

type ServerConfig struct {
	Port string
}

type AdminConfig struct {
	Password      string
	SessionSecret string
	SessionTTL    time.Duration
}

// VisitsConfig controls the visit-event pipeline. When RabbitMQURL is
// empty, visits are written straight to the database instead.
type VisitsConfig struct {
	RabbitMQURL string
	QueueName   string
}

// VotesConfig controls the optional per-IP vote throttle. The throttle
// is active only when RedisAddr is set.
type VotesConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PerIPLimit    int
	PerIPWindow   time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", ":8080"),
		},
		Admin: AdminConfig{
			Password:      os.Getenv("ADMIN_PASSWORD"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
			SessionTTL:    getEnvDuration("SESSION_TTL", 12*time.Hour),
		},
		Visits: VisitsConfig{
			RabbitMQURL: os.Getenv("RABBITMQ_URL"),
			QueueName:   getEnv("VISIT_QUEUE_NAME", "visit-events"),
		},
		Votes: VotesConfig{
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			PerIPLimit:    getEnvInt("VOTE_LIMIT_PER_IP", 0),
			PerIPWindow:   getEnvDuration("VOTE_LIMIT_WINDOW", time.Minute),
		},
		DBURL:  os.Getenv("DB_URL"),
		DBLog:  getEnv("GORM_LOG_LEVEL", "warn"),
		AppEnv: getEnv("APP_ENV", "development"),
	}

	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	if cfg.Admin.Password == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if cfg.Admin.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
