package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"os_service_api/internal/adapter/http/handlers"
	"os_service_api/internal/adapter/http/routes"
	"os_service_api/internal/adapter/messaging/rabbitmq"
	"os_service_api/internal/adapter/persistence/cache"
	"os_service_api/internal/adapter/persistence/repository"
	"os_service_api/internal/infrastructure/config"
	"os_service_api/internal/infrastructure/database"
	"os_service_api/internal/infrastructure/observability"
	"os_service_api/internal/usecase"
	"os_service_api/internal/usecase/interfaces"

	_ "github.com/joho/godotenv/autoload"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// @title           OS Service API
// @version         1.0
// @description     Work orders (ordens de servico) with the stock reduction saga.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(start())
}

// start returns the process exit code so deferred flushes run before exit.
func start() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("invalid configuration: %v", err)
	}

	otelShutdown, err := observability.Setup(ctx, cfg)
	logger := observability.NewLogger(cfg.OtelEnabled())
	defer func() { _ = logger.Sync() }()
	if err != nil {
		logger.Error("[app][main] opentelemetry setup incomplete", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			logger.Error("[app][main] opentelemetry shutdown failed", zap.Error(err))
		}
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("[app][main] stopped with error", zap.Error(err))
		return 1
	}
	logger.Info("[app][main] stopped")
	return 0
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	repo, closeStore, err := openOrderStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics, err := observability.NewSagaMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("register saga metrics: %w", err)
	}

	conn, publishCh, err := rabbitmq.SetupConn(cfg.RabbitMQURL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	consumeCh, err := rabbitmq.OpenConsumerChannel(conn, cfg.ConsumerPrefetch())
	if err != nil {
		return err
	}

	var processed interfaces.IProcessedMessageStore
	redisClient, err := database.ConnectRedis(ctx, cfg.RedisAddr)
	switch {
	case err != nil:
		logger.Warn("[app][main] redis unavailable, processed-message store disabled", zap.Error(err))
	case redisClient != nil:
		defer func() { _ = redisClient.Close() }()
		processed = cache.NewProcessedMessageRedisStore(redisClient, cfg.RedisProcessedTTL)
	}

	publisher := rabbitmq.NewStockReductionPublisher(publishCh, cfg.MessageTTL)
	orderUseCase := usecase.NewOrderUseCase(repo, publisher, metrics, logger)
	resultUseCase := usecase.NewStockReductionResultUseCase(repo, metrics, processed, logger)
	consumer := rabbitmq.NewStockResultConsumer(consumeCh, resultUseCase, logger, cfg.ConsumerWorkers)
	compensator := usecase.NewStockTimeoutCompensator(repo, metrics, logger, cfg.TimeoutPollInterval, cfg.TimeoutThreshold)

	router := routes.NewRouter(handlers.NewOrderHandler(orderUseCase, logger), logger)
	server := routes.NewServer(cfg.Port, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("[app][main] http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return consumer.Run(gctx) })
	g.Go(func() error { return compensator.Run(gctx) })

	return g.Wait()
}

func openOrderStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.IOrderRepository, func(), error) {
	logger.Info("[app][main] opening order store", zap.String("store", cfg.OrderStore))

	switch cfg.OrderStore {
	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.ApplySQLiteMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewOrderSQLiteRepository(db), func() { _ = db.Close() }, nil

	case config.StorePostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewOrderPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	default:
		ddb, err := database.ConnectDynamoDB(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("create dynamodb client: %w", err)
		}
		return repository.NewOrderDynamoRepository(ddb, cfg.OrdersTable), func() {}, nil
	}
}
