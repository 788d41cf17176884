package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/workhub/orders-api/internal/api"
	"github.com/workhub/orders-api/internal/config"
	"github.com/workhub/orders-api/internal/db"
	"github.com/workhub/orders-api/internal/idempotency"
	"github.com/workhub/orders-api/internal/logger"
	"github.com/workhub/orders-api/internal/loyalty"
	"github.com/workhub/orders-api/internal/tracing"
)

const (
	configPath      = "./cmd/app/config.yml"
	shutdownTimeout = 10 * time.Second
)

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, conf.Tracing.ServiceName, conf.API.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing -> %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			zap.L().Warn("tracing shutdown", zap.Error(err))
		}
	}()

	gormDB, err := db.Open(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	if err = db.Migrate(gormDB); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	calc, err := newCalculator(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize points calculator -> %w", err)
	}

	store, err := newIdempotencyStore(conf.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize idempotency store -> %w", err)
	}

	s := api.NewServer(conf, gormDB, calc, store)
	if err = s.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to seed affiliate tiers -> %w", err)
	}
	go s.Stream.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + conf.API.Port,
		Handler:           otelhttp.NewHandler(s.Router, conf.Tracing.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}

// newCalculator builds the calculator from the configured tier table and
// keeps it in sync with later edits of the config file.
func newCalculator(conf *config.AppConfig) (*loyalty.Calculator, error) {
	rules, err := conf.Loyalty.Rules()
	if err != nil {
		return nil, err
	}

	calc, err := loyalty.NewCalculator(rules)
	if err != nil {
		return nil, err
	}

	config.WatchLoyalty(configPath, func(rules loyalty.Rules) {
		if err := calc.SetRules(rules); err != nil {
			zap.L().Warn("loyalty rules rejected", zap.Error(err))
			return
		}
		zap.L().Info("loyalty rules reloaded")
	}, func(err error) {
		zap.L().Warn("loyalty rules not reloaded", zap.Error(err))
	})

	return calc, nil
}

// newIdempotencyStore uses redis when REDIS_URL or redis.url is set. An
// unreachable redis falls back to process memory.
func newIdempotencyStore(conf *config.RedisConfig) (idempotency.Store, error) {
	ttl, err := time.ParseDuration(conf.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("redis.idempotency_ttl -> %w", err)
	}

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = conf.URL
	}
	if url == "" {
		zap.L().Info("redis not configured, idempotency keys kept in memory")
		return idempotency.NewMemoryStore(ttl), nil
	}

	rdb, err := idempotency.NewRedisClient(url)
	if err != nil {
		zap.L().Warn("redis unavailable, idempotency keys kept in memory", zap.Error(err))
		return idempotency.NewMemoryStore(ttl), nil
	}

	return idempotency.NewRedisStore(rdb, ttl), nil
}
