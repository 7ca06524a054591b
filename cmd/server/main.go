package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"infinite-experiment/flightsurety/internal/api"
	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/config"
	"infinite-experiment/flightsurety/internal/db"
	"infinite-experiment/flightsurety/internal/jobs"
	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/metrics"
	"infinite-experiment/flightsurety/internal/routes"
)

// @title Flight Surety API
// @version 1.0
// @description Flight delay insurance: airline consortium, policies and oracle consensus.
// @host localhost:8080
// @BasePath /
func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Flight surety starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"cache_backend", cfg.CacheBackend,
		"owner", cfg.Owner,
		"app", cfg.App,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orm, err := db.InitORM(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logging.Fatal("Failed to open ledger database (GORM)", "error", err)
	}
	logging.Info("Connected to ledger database (GORM)", "driver", cfg.DBDriver)

	queryDB, err := db.InitQueryDB(cfg.DBDriver, cfg.DBDSN, orm)
	if err != nil {
		logging.Fatal("Failed to open query database (sqlx)", "error", err)
	}
	logging.Info("Connected to query database (sqlx)")

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = common.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logging.Fatal("Failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
		}
		defer redisClient.Close()
		logging.Info("Connected to Redis", "addr", cfg.RedisAddr)
	} else {
		logging.Warn("REDIS_ADDR not set; oracle requests will not be published")
	}

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(ctx, cfg, orm, queryDB, redisClient, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}

	jobs.InitializeJobs(ctx, deps.Services.Surety, metricsReg, cfg.StatusPollInterval)

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, upSince)

	// metrics endpoint lives outside the chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server shutdown failed", "error", err)
		}
	}()

	logging.Info("Server starting", "addr", cfg.HTTPAddr, "environment", cfg.AppEnv)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Server stopped", "error", err)
	}
	logging.Info("Server stopped")
}
