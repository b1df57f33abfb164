package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/volcanion-labs/ssr-dispatcher/internal/auth"
	"github.com/volcanion-labs/ssr-dispatcher/internal/benchstore"
	"github.com/volcanion-labs/ssr-dispatcher/internal/config"
	"github.com/volcanion-labs/ssr-dispatcher/internal/dispatcher"
	"github.com/volcanion-labs/ssr-dispatcher/internal/httpserver"
	"github.com/volcanion-labs/ssr-dispatcher/internal/logger"
	"github.com/volcanion-labs/ssr-dispatcher/internal/metrics"
	"github.com/volcanion-labs/ssr-dispatcher/internal/mockapi"
	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
	"github.com/volcanion-labs/ssr-dispatcher/internal/workerpool"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Log

	log.Info("starting ssr-dispatcher",
		zap.String("mode", string(cfg.SSRMode)),
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
	)

	collector := metrics.NewCollector()

	store, closeStore := setupBenchStore(cfg, log)
	defer closeStore()

	jwtService := auth.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTDuration)*time.Hour)
	apiKeyService := auth.NewAPIKeyService()
	userRepo, err := auth.NewMemoryUserRepository(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatal("failed to seed admin account", zap.Error(err))
	}

	buildRegistry := func() *registry.Registry {
		reg := registry.New()
		if err := mockapi.Register(reg); err != nil {
			log.Fatal("failed to register routes", zap.Error(err))
		}
		reg.Freeze()
		return reg
	}

	var pool *workerpool.Pool
	if cfg.SSRMode != config.ModeTraditional {
		pool = workerpool.New(workerpool.Config{
			RegistryFactory: buildRegistry,
			CPUOverride:     cfg.WorkerThreads,
			Logger:          log,
			Collector:       collector,
		})
		if err := pool.Initialize(); err != nil {
			log.Fatal("failed to initialize worker pool", zap.Error(err))
		}
		log.Info("worker pool initialized",
			zap.Int("min_workers", pool.MinWorkers()),
			zap.Int("max_workers", pool.MaxWorkers()),
			zap.Int("queue_capacity", pool.QueueCapacity()),
		)
	}

	disp := dispatcher.New(dispatcher.Config{
		Registry:          buildRegistry(),
		Pool:              pool,
		Collector:         collector,
		Logger:            log,
		Mode:              cfg.SSRMode,
		Debug:             cfg.SSRDebug,
		ResultsViewerPath: "/dashboard",
	})

	router := httpserver.New(httpserver.Deps{
		Config:        cfg,
		Logger:        log,
		Collector:     collector,
		Dispatcher:    disp,
		Pool:          pool,
		BenchStore:    store,
		JWTService:    jwtService,
		APIKeyService: apiKeyService,
		UserRepo:      userRepo,
	})

	srv := &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutdown signal received, draining")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown error", zap.Error(err))
	}
	if pool != nil {
		if err := pool.Shutdown(ctx); err != nil {
			log.Error("worker pool shutdown error", zap.Error(err))
		}
	}

	log.Info("shutdown complete")
}

// setupBenchStore picks PostgresStore when DATABASE_DSN is configured,
// falling back to a directory of JSON files otherwise. The returned close
// func should always be deferred, even in the JSON-file case.
func setupBenchStore(cfg *config.Config, log *zap.Logger) (benchstore.Store, func()) {
	if cfg.DatabaseDSN == "" {
		log.Warn("DATABASE_DSN not configured, storing bench runs as JSON files under ./results")
		store, err := benchstore.NewJSONFileStore("./results")
		if err != nil {
			log.Fatal("failed to initialize JSON file store", zap.Error(err))
		}
		return store, func() {}
	}

	db, err := benchstore.NewDB(benchstore.DBConfig{
		DSN:          cfg.DatabaseDSN,
		MaxConns:     cfg.DatabaseMaxConns,
		MaxIdleConns: cfg.DatabaseMaxIdleConns,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if _, err := db.Exec(benchstore.Schema); err != nil {
		log.Fatal("failed to apply benchstore schema", zap.Error(err))
	}

	log.Info("postgres bench store connected")
	return benchstore.NewPostgresStore(db), func() { closeDB(db, log) }
}

func closeDB(db *sql.DB, log *zap.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database", zap.Error(err))
	}
}
