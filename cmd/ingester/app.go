package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"job_fetcher/internal/config"
	"job_fetcher/internal/lock"
	"job_fetcher/internal/publisher"
	"job_fetcher/internal/scheduler"
	"job_fetcher/internal/service"
	"job_fetcher/internal/source/linkedin"
	"job_fetcher/internal/storage/postgres"
)

// app holds the connections and services shared by the run and once commands.
type app struct {
	db        *sqlx.DB
	rabbitMQ  *publisher.RabbitMQ
	redis     *redis.Client
	scheduler *scheduler.Scheduler
}

func newSearchService(cfg *config.Config, logger *slog.Logger) *service.SearchService {
	sources := []service.Source{
		linkedin.New(linkedin.Config{
			BaseURL:        cfg.Scraper.BaseURL,
			Timeout:        cfg.Scraper.Timeout,
			DetailDelay:    cfg.Scraper.DetailDelay,
			FetchDetails:   *cfg.Scraper.FetchDetails,
			MinBodyLength:  cfg.Scraper.MinBodyLength,
			MaxAttempts:    cfg.Scraper.Retry.MaxAttempts,
			InitialBackoff: cfg.Scraper.Retry.InitialBackoff,
			MaxBackoff:     cfg.Scraper.Retry.MaxBackoff,
			DefaultRecency: cfg.Search.DefaultRecency,
		}, logger),
	}

	return service.NewSearchService(sources, cfg.Search.SourceTimeout, logger)
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.db = db

	if err := db.PingContext(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.rabbitMQ = rabbitMQ

	var locker scheduler.Locker
	if cfg.Redis.URL != "" {
		client, err := lock.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = client
		locker = lock.NewRedisLock(client, cfg.Redis.LockKey, cfg.Redis.LockTTL)
		logger.Info("run lock enabled", "key", cfg.Redis.LockKey, "ttl", cfg.Redis.LockTTL)
	}

	rerun := service.NewRerunService(
		newSearchService(cfg, logger),
		postgres.NewPostingStore(db),
		postgres.NewNotificationStore(db),
		postgres.NewProfileStore(db),
		postgres.NewTransactionManager(db),
		rabbitMQ,
		cfg.Search.DefaultRecency,
		logger,
	)

	a.scheduler = scheduler.NewScheduler(rerun, locker, scheduler.Config{
		Spec:       cfg.Schedule.Spec,
		RunTimeout: cfg.Schedule.RunTimeout,
		RunOnStart: *cfg.Schedule.RunOnStart,
	}, logger)

	return a, nil
}

func (a *app) Close() {
	if a.rabbitMQ != nil {
		_ = a.rabbitMQ.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
