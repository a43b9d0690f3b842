package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glampbook/internal/api"
	"glampbook/internal/config"
	"glampbook/internal/database"
	"glampbook/internal/domain"
	"glampbook/internal/events"
	"glampbook/internal/export"
	"glampbook/internal/logging"
	"glampbook/internal/metrics"
	"glampbook/internal/models"
	"glampbook/internal/postgrest"
	"glampbook/internal/repository"
	"glampbook/internal/resolver"
	"glampbook/internal/service"
	"glampbook/internal/sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	store, dbCloser, err := initStore(cfg, &logger)
	if err != nil {
		return err
	}
	if dbCloser != nil {
		defer (func() { _ = dbCloser.Close() })()
	}

	if err := seedProperties(context.Background(), store, &logger); err != nil {
		return err
	}

	cache := initPropertyCache(cfg, &logger)
	feed := events.NewFeed()

	res := resolver.New(store, cache, cfg.Resolver.FetchTimeout, &logger)
	bookings := service.NewBookings(store, feed, res, &logger)
	exporter := export.NewExporter(bookings, cfg.Exports.Path, &logger)

	syncLogger := logging.Component(&logger, "sync")
	engine := sync.NewEngine(feed, bookings, store, cfg.Sync.PollInterval, cfg.Sync.ListLimit, &syncLogger)

	httpServer := api.NewServer(bookings, exporter, engine, &cfg.API, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	logger.Info().Int("http_port", cfg.API.Port).Str("driver", cfg.Database.Driver).
		Msg("booking server started")
	return httpServer.Start(ctx)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "api-main")

	return cfg, logger, closer, nil
}

func initStore(cfg *config.Config, logger *zerolog.Logger) (domain.Store, io.Closer, error) {
	switch cfg.Database.Driver {
	case "postgrest":
		store, err := postgrest.New(cfg.Supabase.URL, cfg.Supabase.AnonKey)
		if err != nil {
			logger.Error().Err(err).Msg("init postgrest store")
			return nil, nil, err
		}
		return store, nil, nil

	default:
		db, err := database.NewDB(cfg.Database.Path, logger)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
			return nil, nil, err
		}
		return db, db, nil
	}
}

// seedProperties loads the optional listings fixture so a fresh local
// database starts with something to book.
func seedProperties(ctx context.Context, store domain.Store, logger *zerolog.Logger) error {
	seedPath := os.Getenv("PROPERTIES_PATH")
	if seedPath == "" {
		seedPath = "configs/properties.yaml"
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		logger.Error().Err(err).Str("properties_path", seedPath).Msg("read properties")
		return err
	}

	var seed struct {
		Properties []models.Property `yaml:"properties"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("properties_path", seedPath).Msg("parse properties")
		return err
	}

	for i := range seed.Properties {
		property := &seed.Properties[i]
		if _, err := store.PropertyByID(ctx, property.ID); err == nil {
			continue
		} else if !domain.IsNotFound(err) {
			return err
		}
		if err := store.CreateProperty(ctx, property); err != nil {
			return err
		}
	}

	logger.Info().Int("count", len(seed.Properties)).Msg("property fixtures loaded")
	return nil
}

func initPropertyCache(cfg *config.Config, logger *zerolog.Logger) domain.PropertyCache {
	memory := repository.NewMemoryPropertyCache(cfg.Resolver.CacheTTL)

	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory cache")
		return memory
	}
	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")

	redisCache := repository.NewRedisPropertyCache(client, cfg.Resolver.CacheTTL)
	return repository.NewFailoverPropertyCache(redisCache, memory, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("port", port).Msg("metrics server starting")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
