// The audit worker runs the two halves of the audit pipeline: the relay
// that ships outbox rows to Kafka, and the consumer that materializes the
// published events into the queryable audit_events table. It runs as its
// own process so audit delivery never competes with request serving.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"patra/internal/platform/config"
	"patra/internal/platform/kafka"
	"patra/internal/platform/kafka/consumer"
	"patra/internal/platform/kafka/producer"
	"patra/internal/platform/logger"
	platformaudit "patra/pkg/platform/audit"
	auditconsumer "patra/pkg/platform/audit/consumer"
	auditpg "patra/pkg/platform/audit/store/postgres"
	"patra/pkg/platform/audit/worker"
)

const consumerGroup = "patra-audit-worker"

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("audit worker exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	store := auditpg.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	topics := []string{
		platformaudit.TopicCompliance,
		platformaudit.TopicSecurity,
		platformaudit.TopicOperations,
	}
	if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers, topics...); err != nil {
		return err
	}

	prod, err := producer.New(producer.Config{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID,
	})
	if err != nil {
		return err
	}
	defer prod.Close()

	relay := worker.New(store, prod, worker.WithLogger(log))

	cons, err := consumer.New(consumer.Config{
		Brokers: cfg.Kafka.Brokers,
		Group:   consumerGroup,
		Topics:  topics,
	}, auditconsumer.NewPersistHandler(store, log), log)
	if err != nil {
		return err
	}
	defer cons.Close()

	log.Info("starting audit worker", "brokers", cfg.Kafka.Brokers, "topics", topics)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return relay.Run(ctx) })
	g.Go(func() error { return cons.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
