// cmd/composer-service/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"site-composer/internal/api"
	"site-composer/internal/common/aws"
	"site-composer/internal/common/camunda"
	"site-composer/internal/common/config"
	"site-composer/internal/common/database"
	"site-composer/internal/common/logger"
	"site-composer/internal/common/observability"
	"site-composer/internal/overrides"
	"site-composer/internal/service"
	"site-composer/internal/sites"
	"site-composer/internal/variants"

	rsv "site-composer/internal/workers/variants/recommend-section-variants"
	ssv "site-composer/internal/workers/variants/switch-section-variant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console", "stderr")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting composer service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	shutdownTracing, err := observability.InitTracing(context.Background(), cfg.App, cfg.Tracing, log)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			zapLog.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = camunda.RetryWithBackoff(ctx, camunda.DefaultRetryConfig, log, "PostgreSQL connection", func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("postgres schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = camunda.RetryWithBackoff(ctx, camunda.DefaultRetryConfig, log, "Redis connection", func() error {
		return redis.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	healthChecks := map[string]api.HealthCheck{
		"postgres": pg.Ping,
		"redis":    redis.Ping,
	}

	// --- Override fan-out sinks ---
	var indexer service.OverrideIndexer
	if cfg.Database.Elasticsearch.Enabled {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
		if err := esClient.EnsureOverrideIndex(ctx, cfg.Database.Elasticsearch.OverrideIndex); err != nil {
			// Analytics indexing is best effort; the service still starts.
			zapLog.Warn("override index not ready", zap.Error(err))
		}
		indexer = overrides.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.OverrideIndex)
		healthChecks["elasticsearch"] = esClient.Ping
		zapLog.Info("Elasticsearch override indexing enabled",
			zap.String("index", cfg.Database.Elasticsearch.OverrideIndex))
	}

	var publisher service.OverridePublisher = aws.NoopPublisher{}
	if cfg.Integrations.AWS.SNS.Enabled {
		snsPublisher, err := aws.NewSNSPublisher(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.TopicARN)
		if err != nil {
			zapLog.Fatal("sns publisher init failed", zap.Error(err))
		}
		publisher = snsPublisher
		zapLog.Info("SNS override events enabled", zap.String("topic", cfg.Integrations.AWS.SNS.TopicARN))
	}

	// --- Composer ---
	composer := service.New(service.Dependencies{
		Sites:             sites.NewStore(pg.DB, redis.Client, config.GetDuration(cfg.Selection.SiteCacheTTL), log),
		Overrides:         overrides.NewStore(pg.DB),
		Locker:            sites.NewLocker(redis.Client, config.GetDuration(cfg.Selection.SwitchLockTTL)),
		Indexer:           indexer,
		Publisher:         publisher,
		Selector:          variants.NewSelector(variants.Default(), variants.WithConsistencyMargin(cfg.Selection.ConsistencyMargin)),
		Tracker:           overrides.NewTracker(),
		Registry:          variants.NewComponentRegistry(),
		Observability:     obs,
		DefaultSections:   cfg.Selection.DefaultSections,
		BatchAlternatives: cfg.Selection.BatchAlternatives,
	}, log)

	// --- Zeebe workers ---
	var zeebeClient zbc.Client
	var jobWorkers []worker.JobWorker
	if cfg.Camunda.Enabled {
		zeebeClient, err = camunda.Connect(ctx, cfg.Camunda, log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		healthChecks["zeebe"] = func(ctx context.Context) error {
			return camunda.HealthCheck(ctx, zeebeClient, 2*time.Second)
		}

		recommendCfg := config.GetWorkerConfig(cfg, rsv.TaskType)
		recommendHandler := rsv.NewHandler(&rsv.Config{
			Timeout:           config.GetDuration(recommendCfg.Timeout),
			BatchAlternatives: cfg.Selection.BatchAlternatives,
		}, composer, log)
		if w := camunda.StartWorker(zeebeClient, rsv.TaskType, recommendCfg, recommendHandler, log); w != nil {
			jobWorkers = append(jobWorkers, w)
		}

		switchCfg := config.GetWorkerConfig(cfg, ssv.TaskType)
		switchHandler := ssv.NewHandler(&ssv.Config{
			Timeout: config.GetDuration(switchCfg.Timeout),
		}, composer, log)
		if w := camunda.StartWorker(zeebeClient, ssv.TaskType, switchCfg, switchHandler, log); w != nil {
			jobWorkers = append(jobWorkers, w)
		}
	} else {
		zapLog.Info("Camunda disabled, workflow workers not started")
	}

	// --- Metrics server ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
		zapLog.Info("Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- HTTP API ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		ServiceName:    cfg.App.Name,
		VariantHandler: api.NewVariantHandler(composer, cfg.Selection.BatchAlternatives, log),
		SectionHandler: api.NewSectionHandler(composer, log),
		HealthHandler:  api.NewHealthHandler(healthChecks),
		Logger:         log,
		AllowOrigins:   cfg.HTTP.AllowOrigins,
		RequestTimeout: config.GetDuration(cfg.HTTP.RequestTimeout),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP API listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	for _, w := range jobWorkers {
		w.Close()
		w.AwaitClose()
	}
	if zeebeClient != nil {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Composer service stopped gracefully")
}
