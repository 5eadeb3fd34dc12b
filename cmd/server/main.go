package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bde-festival/dj-contest/internal"
	"github.com/bde-festival/dj-contest/internal/adminauth"
	"github.com/bde-festival/dj-contest/internal/analytics"
	"github.com/bde-festival/dj-contest/internal/config"
	"github.com/bde-festival/dj-contest/internal/contest"
	"github.com/bde-festival/dj-contest/internal/httpapi"
	applog "github.com/bde-festival/dj-contest/internal/logger"
	"github.com/bde-festival/dj-contest/internal/ratelimit"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Warn(".env file not found, relying on env vars", "err", err)
	}

	applog.InitFromEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{
		Logger: applog.NewGormLogger(cfg.DBLog),
	})
	if err != nil {
		slog.Error("unable to connect to database", "err", err)
		os.Exit(1)
	}

	slog.Info("running GORM auto-migration")
	if err := db.AutoMigrate(&internal.Application{}, &internal.Vote{}, &internal.Visit{}); err != nil {
		slog.Error("auto-migration failed", "err", err)
		os.Exit(1)
	}

	server := httpapi.New(
		contest.NewService(db),
		analytics.NewService(db, visitPublisher(cfg)),
		adminauth.New(cfg.Admin.Password, cfg.Admin.SessionSecret, cfg.Admin.SessionTTL),
		voteLimiter(cfg),
	)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(applog.FiberMiddleware())
	app.Use(cors.New())
	server.Register(app)

	slog.Info("starting contest API", "port", cfg.Server.Port, "env", cfg.AppEnv)
	if err := app.Listen(cfg.Server.Port); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// visitPublisher connects the visit-event queue when RABBITMQ_URL is
// set. Without it, visits are written straight to the database.
func visitPublisher(cfg *config.Config) analytics.Publisher {
	if cfg.Visits.RabbitMQURL == "" {
		return nil
	}

	conn, err := amqp091.Dial(cfg.Visits.RabbitMQURL)
	if err != nil {
		slog.Error("unable to connect to RabbitMQ", "err", err)
		os.Exit(1)
	}
	ch, err := conn.Channel()
	if err != nil {
		slog.Error("unable to open RabbitMQ channel", "err", err)
		os.Exit(1)
	}
	pub, err := analytics.NewRabbitPublisher(ch, cfg.Visits.QueueName)
	if err != nil {
		slog.Error("unable to declare visit queue", "err", err)
		os.Exit(1)
	}
	return pub
}

// voteLimiter enables the per-IP vote throttle when both Redis and a
// positive limit are configured.
func voteLimiter(cfg *config.Config) ratelimit.Limiter {
	if cfg.Votes.RedisAddr == "" || cfg.Votes.PerIPLimit <= 0 {
		return ratelimit.Disabled{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Votes.RedisAddr,
		Password: cfg.Votes.RedisPassword,
		DB:       cfg.Votes.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("unable to connect to Redis", "err", err)
		os.Exit(1)
	}
	return ratelimit.NewRedis(rdb, cfg.Votes.PerIPLimit, cfg.Votes.PerIPWindow)
}
