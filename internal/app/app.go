package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/orders/internal/health"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/catalog"
	httpsvc "github.com/vladislavdragonenkov/orders/internal/service/http"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/orders/internal/storage/postgres"
	"github.com/vladislavdragonenkov/orders/internal/version"
)

// Run собирает зависимости по конфигурации и держит сервис до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	healthHandler := healthcheck.NewHandler(version.GetVersion())

	repo, storeCleanup, err := initStorage(ctx, cfg, logger, healthHandler)
	if err != nil {
		return err
	}
	defer storeCleanup()

	validator, events, kafkaCleanup, err := initKafka(ctx, cfg, logger, healthHandler)
	if err != nil {
		return err
	}
	defer kafkaCleanup()

	orderMetrics := metrics.NewOrderMetrics()
	service := orders.NewService(repo, validator, events, orderMetrics, log.WithField("component", "order-service"))

	handler := httpsvc.NewHandler(service, log.WithField("component", "http-handler"))
	apiSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpsvc.NewRouter(handler),
	}
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// initStorage выбирает хранилище: postgres при заданном DSN, иначе память.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry, healthHandler *healthcheck.Handler) (domain.OrderRepository, func(), error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("postgres dsn не задан, заказы хранятся в памяти процесса")
		return memory.NewOrderRepository(), func() {}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	healthHandler.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", 2*time.Second, store.Ping))
	logger.Info("postgres storage initialized")

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}
	return postgres.NewOrderRepository(store), cleanup, nil
}

// initKafka поднимает producer, validator с reply-consumer и publisher событий.
// Без брокеров сервис работает на встроенном каталоге и без событий.
func initKafka(ctx context.Context, cfg Config, logger *log.Entry, healthHandler *healthcheck.Handler) (domain.ProductValidator, domain.OrderEventPublisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("kafka brokers не заданы, используется встроенный каталог товаров")
		return demoCatalog(), nil, func() {}, nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		return nil, nil, nil, err
	}

	validator := kafka.NewProductValidator(producer, cfg.ValidationRequestTopic, cfg.ValidationReplyTopic, cfg.ValidationTimeout)

	// Каждый экземпляр читает reply topic своей группой: ответы валидации
	// адресованы конкретному запросившему процессу.
	groupID := cfg.ConsumerGroup + "-" + uuid.NewString()
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, groupID, []string{cfg.ValidationReplyTopic}, validator.HandleReply)
	if err != nil {
		_ = producer.Close()
		return nil, nil, nil, err
	}
	if err := consumer.Start(ctx); err != nil {
		_ = producer.Close()
		return nil, nil, nil, err
	}

	healthHandler.RegisterChecker("kafka", healthcheck.NewSimpleChecker("kafka", producer.HealthCheck))
	logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")

	cleanup := func() {
		if err := consumer.Stop(); err != nil {
			logger.WithError(err).Warn("failed to stop kafka consumer")
		}
		if err := producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		}
	}
	return validator, kafka.NewOrderEventPublisher(producer, cfg.OrderEventsTopic), cleanup, nil
}

// demoCatalog — каталог для локальной разработки без Kafka.
func demoCatalog() domain.ProductValidator {
	return catalog.NewMockValidator().Seed(
		domain.Product{ID: "product-1", Name: "Widget", PriceMinor: 1000},
		domain.Product{ID: "product-2", Name: "Gadget", PriceMinor: 500},
		domain.Product{ID: "product-3", Name: "Sprocket", PriceMinor: 2500},
	)
}

// startMetricsServer запускает HTTP-обработчик /metrics и health-эндпоинты.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
