package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	packetservice "redpacket/contexts/finance-core/packet-service"
	postgresadapter "redpacket/contexts/finance-core/packet-service/adapters/postgres"
	"redpacket/contexts/finance-core/packet-service/adapters/random"
	redisadapter "redpacket/contexts/finance-core/packet-service/adapters/redis"
	application "redpacket/contexts/finance-core/packet-service/application"
	"redpacket/contexts/finance-core/packet-service/application/workers"
	"redpacket/contexts/finance-core/packet-service/domain/services"
	"redpacket/contexts/finance-core/packet-service/ports"
	"redpacket/internal/platform/config"
	"redpacket/internal/platform/db"
	"redpacket/internal/platform/httpserver"
	"redpacket/internal/platform/logging"
	"redpacket/internal/platform/messaging"
	"redpacket/internal/platform/telemetry"

	goredislib "github.com/redis/go-redis/v9"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *goredislib.Client
	meters   *sdkmetric.MeterProvider
	logger   *slog.Logger
	sync     func() error
}

// eventPublisher is the outbox relay's transport plus its shutdown hook.
type eventPublisher interface {
	ports.EventPublisher
	Close() error
}

type WorkerApp struct {
	postgres     *db.Postgres
	publisher    eventPublisher
	meters       *sdkmetric.MeterProvider
	outboxRelay  workers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
	sync         func() error
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, syncLogger, err := logging.New(cfg.LogLevel, cfg.ServiceName, "api")
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	meters, err := telemetry.Install(context.Background(), cfg.ServiceName, "api", cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	pg, err := connectPostgres(cfg, logger)
	if err != nil {
		_ = meters.Shutdown(context.Background())
		return nil, err
	}

	var locker ports.PacketLocker
	var redisClient *goredislib.Client
	if cfg.RedisAddr != "" {
		redisClient = goredislib.NewClient(&goredislib.Options{Addr: cfg.RedisAddr})
		locker = redisadapter.NewPacketLocker(redisClient, redisadapter.DefaultLockOptions(), logger)
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := packetservice.NewModule(packetservice.Dependencies{
		Packets:     repo,
		Outbox:      repo,
		Random:      random.New(cfg.PacketRandomSource),
		Locker:      locker,
		Clock:       postgresadapter.SystemClock{},
		IDGenerator: postgresadapter.UUIDGenerator{},
		Metrics:     application.NewMetrics(meters),
		CreatePolicy: services.CreatePolicy{
			MaxCreateSkew: cfg.PacketMaxCreateSkew,
			MinValidity:   cfg.PacketMinValidity,
		},
		CloseClaimsAtExpiry: cfg.PacketClaimsCloseAtExpiry,
		Logger:              logger,
	})

	server, err := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort), httpserver.Options{
		ClaimRateLimitPerMinute: cfg.ClaimRateLimitPerMinute,
	})
	if err != nil {
		_ = pg.Close()
		_ = meters.Shutdown(context.Background())
		return nil, err
	}
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisClient,
		meters:   meters,
		logger:   logger,
		sync:     syncLogger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, syncLogger, err := logging.New(cfg.LogLevel, cfg.ServiceName, "worker")
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	meters, err := telemetry.Install(context.Background(), cfg.ServiceName, "worker", cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	pg, err := connectPostgres(cfg, logger)
	if err != nil {
		_ = meters.Shutdown(context.Background())
		return nil, err
	}

	publisher, err := newEventPublisher(cfg, logger)
	if err != nil {
		_ = pg.Close()
		_ = meters.Shutdown(context.Background())
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := packetservice.NewModule(packetservice.Dependencies{
		Packets:         repo,
		Outbox:          repo,
		Publisher:       publisher,
		Metrics:         application.NewMetrics(meters),
		Clock:           postgresadapter.SystemClock{},
		IDGenerator:     postgresadapter.UUIDGenerator{},
		OutboxBatchSize: cfg.OutboxBatchSize,
		Logger:          logger,
	})
	return &WorkerApp{
		postgres:     pg,
		publisher:    publisher,
		meters:       meters,
		outboxRelay:  module.OutboxRelay,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
		sync:         syncLogger,
	}, nil
}

// newEventPublisher picks RabbitMQ when RABBITMQ_URL is set. Otherwise events go
// to the in-process bus, which leaves rows pending while nothing subscribes.
func newEventPublisher(cfg config.Config, logger *slog.Logger) (eventPublisher, error) {
	if cfg.RabbitMQURL != "" {
		publisher, err := messaging.DialRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	}
	logger.Warn("RABBITMQ_URL not set, relaying to in-process bus",
		"event", "bootstrap_in_process_bus",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"brokers", strings.Join(cfg.KafkaBrokers, ","),
	)
	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}
	return bus, nil
}

func connectPostgres(cfg config.Config, logger *slog.Logger) (*db.Postgres, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := pg.Migrate(logger); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}
	return pg, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Close(context.Background()))
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	if a.meters != nil {
		errs = append(errs, a.meters.Shutdown(context.Background()))
	}
	if a.sync != nil {
		_ = a.sync()
	}
	return errors.Join(errs...)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	interval := w.pollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", interval.String(),
	)

	for {
		// Failed rows stay pending; the relay logs them and the next tick retries.
		if _, err := w.outboxRelay.RunOnce(ctx); err != nil && ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	var errs []error
	if w.publisher != nil {
		errs = append(errs, w.publisher.Close())
	}
	if w.postgres != nil {
		errs = append(errs, w.postgres.Close())
	}
	if w.meters != nil {
		errs = append(errs, w.meters.Shutdown(context.Background()))
	}
	if w.sync != nil {
		_ = w.sync()
	}
	return errors.Join(errs...)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
