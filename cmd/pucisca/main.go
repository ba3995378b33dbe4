package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"pucisca/internal/app/commands"
	"pucisca/internal/app/handlers"
	availabilityapp "pucisca/internal/app/handlers/availability"
	"pucisca/internal/app/middleware"
	"pucisca/internal/app/outbox"
	"pucisca/internal/app/queries"
	"pucisca/internal/app/schedule"
	domainavailability "pucisca/internal/domain/availability"
	domainbooking "pucisca/internal/domain/booking"
	"pucisca/internal/domain/shared/daterange"
	infraavailability "pucisca/internal/infra/availability"
	"pucisca/internal/infra/broker/kafka"
	"pucisca/internal/infra/config"
	mongostore "pucisca/internal/infra/db/mongo"
	ginserver "pucisca/internal/infra/http/gin"
	"pucisca/internal/infra/inbox"
	"pucisca/internal/infra/obs"
	infraoutbox "pucisca/internal/infra/outbox"
	infrapricing "pucisca/internal/infra/pricing"
	"pucisca/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	if err := app.snapshot.Refresh(ctx); err != nil {
		logger.Warn("initial availability refresh interrupted", "error", err)
	}
	if app.scheduler != nil {
		app.scheduler.Start()
		defer app.scheduler.Stop()
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health, app.handlers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "availability_mode", cfg.AvailabilityMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if app.worker != nil {
		g.Go(func() error { return ignoreCancel(app.worker.Run(gctx)) })
	}
	if app.consumer != nil {
		g.Go(func() error { return ignoreCancel(app.consumer.Run(gctx, []string{cfg.KafkaRefreshTopic})) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers  ginserver.Handlers
	health    obs.HealthHandlers
	snapshot  *availabilityapp.Snapshot
	scheduler *schedule.RefreshScheduler
	worker    *infraoutbox.Worker
	consumer  *kafka.Consumer
	closers   []func(context.Context) error
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}
	checks := map[string]obs.Check{}

	rates, err := infrapricing.LoadRateTable(cfg.RatesFile, infrapricing.Defaults{
		Currency: cfg.Currency,
		Fallback: cfg.FallbackRate,
	})
	if err != nil {
		return nil, fmt.Errorf("rates: %w", err)
	}

	source, err := availabilitySource(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("availability source: %w", err)
	}
	var cache *infraavailability.CachedSource
	if cfg.RedisAddr != "" && cfg.AvailabilityMode != config.AvailabilityStatic {
		rdb := infraavailability.NewRedisClient(cfg.RedisAddr)
		cache = infraavailability.NewCachedSource(source, rdb, cfg.RedisTTL, logger)
		source = cache
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
	}

	var producer *kafka.Producer
	if cfg.UsesKafka() {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
	}
	envelope := infraoutbox.Envelope{TopicPrefix: cfg.KafkaTopicPrefix}

	var (
		box     outbox.Outbox
		idStore middleware.IdempotencyStore
		client  *mongostore.Client
	)
	if cfg.UsesMongo() {
		client, err = mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB, 10*time.Second)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		checks["mongo"] = client.Ping

		store, err := infraoutbox.NewStore(ctx, client.DB)
		if err != nil {
			return nil, fmt.Errorf("outbox store: %w", err)
		}
		box = store
		if idStore, err = mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL); err != nil {
			return nil, fmt.Errorf("idempotency store: %w", err)
		}
		if producer != nil {
			app.worker = &infraoutbox.Worker{
				Store:    store,
				Producer: producer,
				Envelope: envelope,
				Interval: cfg.OutboxPollInterval,
				Backoff:  cfg.RetryBackoff,
				Logger:   logger,
			}
		}
	} else {
		sink := memory.LogSink(logger)
		if producer != nil {
			sink = memory.PublishSink(envelope, producer)
		}
		box = memory.NewOutbox(sink, 0)
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}
	encoder := outbox.JSONEventEncoder{}

	app.snapshot = availabilityapp.NewSnapshot(availabilityapp.SnapshotConfig{
		Source:  source,
		Outbox:  box,
		Encoder: encoder,
		Logger:  logger,
	})
	checks["availability"] = func(context.Context) error {
		if !app.snapshot.Ready() {
			return errors.New("availability not loaded yet")
		}
		return nil
	}

	if cfg.RefreshSchedule != "" && cfg.AvailabilityMode != config.AvailabilityStatic {
		app.scheduler, err = schedule.NewRefreshScheduler(cfg.RefreshSchedule, app.snapshot, cfg.AvailabilityTimeout*2, logger)
		if err != nil {
			return nil, fmt.Errorf("refresh schedule: %w", err)
		}
	}

	if cfg.UsesKafka() && cfg.KafkaRefreshTopic != "" {
		refresh := kafka.RefreshHandler{Target: app.snapshot, Logger: logger}
		if cache != nil {
			refresh.Cache = cache
		}
		var handler kafka.MessageHandler = refresh
		if client != nil {
			seen, err := inbox.NewStore(ctx, client.DB, cfg.KafkaGroupID, 0)
			if err != nil {
				return nil, fmt.Errorf("inbox store: %w", err)
			}
			handler = kafka.Deduplicate(refresh, seen, logger)
		}
		app.consumer, err = kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, handler, logger)
		if err != nil {
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return app.consumer.Close() })
	}

	policy := domainbooking.DefaultPolicy()
	policy.MinNights = cfg.MinNights
	policy.MaxNights = cfg.MaxNights
	today, err := todayFunc(cfg)
	if err != nil {
		return nil, err
	}

	deps := handlers.Deps{
		Availability: app.snapshot,
		Pricing:      rates,
		Policy:       policy,
		Today:        today,
		Recipient:    cfg.InquiryRecipient,
		Outbox:       box,
		Encoder:      encoder,
		Logger:       logger,
	}

	queryBus := queries.NewInMemoryBus()
	handlers.RegisterQueries(queryBus, deps)
	commandBus := commands.NewInMemoryBus()
	handlers.RegisterCommands(commandBus, deps)

	logFlushError := func(ctx context.Context, err error) {
		logger.WarnContext(ctx, "outbox flush failed", "error", err)
	}
	// Only the mongo outbox is durable; an in-memory batch that failed to
	// deliver is gone, so the command still succeeds.
	commandFlush := middleware.OutboxFlushBestEffort(box, logFlushError)
	if cfg.UsesMongo() {
		commandFlush = middleware.OutboxFlush(box)
	}

	validator := middleware.NewStructValidator()
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(validator),
		middleware.QueryOutboxFlush(box, logFlushError),
	)
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.CommandLogging(logger),
		middleware.Validation(validator),
		middleware.Idempotency(idStore, nil),
		commandFlush,
	)

	app.handlers = ginserver.Handlers{
		Availability: ginserver.AvailabilityHandler{
			Queries:       queryBusWithMiddleware,
			MaxWindowDays: cfg.MaxNights,
		},
		Booking: ginserver.BookingHandler{
			Queries:  queryBusWithMiddleware,
			Commands: commandBusWithMiddleware,
		},
		Pricing: ginserver.PricingHandler{Queries: queryBusWithMiddleware},
	}
	if cfg.RateLimitRPS > 0 {
		app.handlers.RateLimit = ginserver.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware()
	}
	app.health = obs.HealthHandlers{Checks: checks}

	logger.Info("application wired",
		"queries", queryBus.Keys(),
		"commands", commandBus.Keys(),
		"mongo", cfg.UsesMongo(),
		"kafka", cfg.UsesKafka(),
		"redis", cache != nil,
	)
	return app, nil
}

func availabilitySource(cfg config.Config, logger *slog.Logger) (domainavailability.Source, error) {
	switch cfg.AvailabilityMode {
	case config.AvailabilityWorker:
		return infraavailability.NewWorkerSource(cfg.AvailabilityURL, cfg.AvailabilityTimeout, logger), nil
	case config.AvailabilityICal:
		return infraavailability.NewICalSource(cfg.ICalFeeds, cfg.AvailabilityTimeout, logger), nil
	default:
		return infraavailability.LoadStaticSource(cfg.AvailabilityFixtures)
	}
}

// todayFunc returns the local calendar day in the configured zone, or nil
// when past check-ins are allowed.
func todayFunc(cfg config.Config) (func() daterange.Date, error) {
	if !cfg.RejectPastCheckIn {
		return nil, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	return func() daterange.Date {
		return daterange.FromTime(time.Now().In(loc))
	}, nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
