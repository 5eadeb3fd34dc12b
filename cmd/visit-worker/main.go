package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bde-festival/dj-contest/internal"
	"github.com/bde-festival/dj-contest/internal/analytics"
	"github.com/bde-festival/dj-contest/internal/config"
	applog "github.com/bde-festival/dj-contest/internal/logger"
)

const (
	batchSize  = 100
	flushEvery = 2 * time.Second
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
	if cfg.Visits.RabbitMQURL == "" {
		slog.Error("RABBITMQ_URL is required for the visit worker")
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{
		Logger: applog.NewGormLogger(cfg.DBLog),
	})
	if err != nil {
		slog.Error("unable to connect to database", "err", err)
		os.Exit(1)
	}

	conn, err := amqp091.Dial(cfg.Visits.RabbitMQURL)
	if err != nil {
		slog.Error("unable to connect to RabbitMQ", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		slog.Error("unable to open RabbitMQ channel", "err", err)
		os.Exit(1)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.Visits.QueueName,
		true, false, false, false, nil,
	)
	if err != nil {
		slog.Error("failed to declare queue", "err", err)
		os.Exit(1)
	}

	if err := ch.Qos(batchSize, 0, false); err != nil {
		slog.Error("failed to set QoS", "err", err)
		os.Exit(1)
	}

	msgs, err := ch.Consume(
		q.Name, "", false, false, false, false, nil,
	)
	if err != nil {
		slog.Error("failed to register consumer", "err", err)
		os.Exit(1)
	}

	slog.Info("visit worker started, waiting for visit events", "queue", q.Name)

	var events []analytics.VisitEvent
	var deliveries []amqp091.Delivery

	ticker := time.NewTicker(flushEvery)

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				slog.Warn("RabbitMQ channel closed")
				return
			}
			var event analytics.VisitEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				slog.Error("undecodable visit event, rejecting", "err", err)
				d.Reject(false)
				continue
			}
			events = append(events, event)
			deliveries = append(deliveries, d)

			if len(events) >= batchSize {
				flush(db, events, deliveries)
				events, deliveries = nil, nil
				ticker.Reset(flushEvery)
			}

		case <-ticker.C:
			if len(events) > 0 {
				flush(db, events, deliveries)
				events, deliveries = nil, nil
			}
		}
	}
}

// flush inserts one batch of visits in a single transaction, acking on
// success and requeueing the whole batch on failure.
func flush(db *gorm.DB, events []analytics.VisitEvent, deliveries []amqp091.Delivery) {
	slog.Info("flushing visit batch", "count", len(events))

	visits := make([]internal.Visit, len(events))
	for i, event := range events {
		visits[i] = internal.Visit{
			Path:      event.Path,
			CreatedAt: event.Timestamp,
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(visits, batchSize).Error
	})
	if err != nil {
		slog.Error("visit batch failed, requeueing", "err", err, "count", len(deliveries))
		for _, d := range deliveries {
			d.Nack(false, true)
		}
		return
	}

	for _, d := range deliveries {
		d.Ack(false)
	}
}
