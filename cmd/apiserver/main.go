// API server entry point for PolicyLens.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appcomparison "github.com/turtacn/policylens/internal/application/comparison"
	appdocument "github.com/turtacn/policylens/internal/application/document"
	"github.com/turtacn/policylens/internal/config"
	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/internal/infrastructure/database/inmemory"
	"github.com/turtacn/policylens/internal/infrastructure/database/postgres"
	"github.com/turtacn/policylens/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/policylens/internal/infrastructure/database/redis"
	"github.com/turtacn/policylens/internal/infrastructure/docpipe"
	"github.com/turtacn/policylens/internal/infrastructure/llm"
	"github.com/turtacn/policylens/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/policylens/internal/infrastructure/storage/minio"
	"github.com/turtacn/policylens/internal/intelligence/matcher"
	"github.com/turtacn/policylens/internal/intelligence/oracle"
	httpserver "github.com/turtacn/policylens/internal/interfaces/http"
	"github.com/turtacn/policylens/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting PolicyLens API server",
		logging.String("version", config.Version),
		logging.Int("port", cfg.Server.Port))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", logging.Err(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "config file %s not found, using defaults and environment\n", path)
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func connectPostgres(ctx context.Context, cfg *config.Config, logger logging.Logger) (*postgres.Connection, error) {
	if err := postgres.RunMigrations(cfg.Database, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return conn, nil
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx := context.Background()

	var metrics *prometheus.Metrics
	if cfg.Metrics.Enabled {
		metrics = prometheus.New()
	}

	healthHandler := handlers.NewHealthHandler()

	// Persistence: postgres when reachable, in-memory otherwise so the
	// comparison pipeline stays available without a database.
	var docRepo document.Repository
	var cmpRepo domain.Repository
	conn, err := connectPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Warn("postgres unavailable, using in-memory repositories", logging.Err(err))
		docRepo = inmemory.NewDocumentRepository()
		cmpRepo = inmemory.NewComparisonRepository()
	} else {
		defer conn.Close()
		docRepo = repositories.NewDocumentRepository(conn.Pool(), logger)
		cmpRepo = repositories.NewComparisonRepository(conn.Pool(), logger)
		healthHandler.AddChecker("postgres", conn)
	}

	// Report cache.
	var reportCache domain.ReportCache
	if cfg.Redis.Enabled {
		cache := redis.NewReportCache(redis.NewClient(cfg.Redis), cfg.Redis, logger)
		defer cache.Close()
		reportCache = cache
		healthHandler.AddChecker("redis", cache)
	}

	// Blob storage.
	var blobs document.BlobStore
	if cfg.MinIO.Enabled {
		store, err := minio.NewBlobStore(ctx, cfg.MinIO, logger)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		blobs = store
	}

	// Event publishing.
	var publisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		publisher = kafka.NewPublisher(cfg.Kafka, logger)
		defer publisher.Close()
	}

	// Language-model capabilities, with heuristic fallbacks.
	var scorer matcher.SimilarityScorer
	var textOracle oracle.TextOracle
	if cfg.LLM.Enabled {
		scorer = llm.NewEmbeddingScorer(cfg.LLM, logger)
		textOracle = llm.NewOracle(cfg.LLM, logger)
		if metrics != nil {
			scorer = llm.NewMeasuredScorer(scorer, metrics)
			textOracle = llm.NewMeasuredOracle(textOracle, metrics)
		}
	}

	pipelineOpts := []appcomparison.PipelineOption{
		appcomparison.WithConcurrency(cfg.Pipeline.ClassifyConcurrency),
	}
	if metrics != nil {
		pipelineOpts = append(pipelineOpts, appcomparison.WithStageObserver(metrics))
	}
	pipeline := appcomparison.NewPipeline(scorer, textOracle, logger, pipelineOpts...)

	// Application services.
	docOpts := []appdocument.ServiceOption{}
	if blobs != nil {
		docOpts = append(docOpts, appdocument.WithBlobStore(blobs))
	}
	if publisher != nil {
		docOpts = append(docOpts, appdocument.WithEventPublisher(publisher))
	}
	if metrics != nil {
		docOpts = append(docOpts, appdocument.WithIngestMetrics(metrics))
	}
	docService := appdocument.NewService(docRepo, docpipe.New(logger), logger, docOpts...)

	cmpOpts := []appcomparison.ServiceOption{}
	if reportCache != nil {
		cmpOpts = append(cmpOpts, appcomparison.WithReportCache(reportCache))
	}
	if publisher != nil {
		cmpOpts = append(cmpOpts, appcomparison.WithEventPublisher(publisher))
	}
	if metrics != nil {
		cmpOpts = append(cmpOpts, appcomparison.WithServiceMetrics(metrics))
	}
	cmpService := appcomparison.NewService(docRepo, cmpRepo, pipeline, logger, cmpOpts...)

	// HTTP surface.
	routerCfg := httpserver.RouterConfig{
		DocumentHandler:   handlers.NewDocumentHandler(docService, logger),
		ComparisonHandler: handlers.NewComparisonHandler(cmpService, logger),
		HealthHandler:     healthHandler,
		Logger:            logger,
	}
	if metrics != nil {
		routerCfg.MetricsHandler = metrics.Handler()
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.RequestRecorder = metrics
	}
	router := httpserver.NewRouter(routerCfg)

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	return srv.Stop(context.Background())
}
