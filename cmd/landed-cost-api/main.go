package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/maltedev/buyee-landed-cost/internal/api"
	"github.com/maltedev/buyee-landed-cost/internal/config"
	"github.com/maltedev/buyee-landed-cost/internal/database"
	"github.com/maltedev/buyee-landed-cost/internal/engine"
	"github.com/maltedev/buyee-landed-cost/internal/extractor"
	"github.com/maltedev/buyee-landed-cost/internal/fetch"
	"github.com/maltedev/buyee-landed-cost/internal/observability"
	"github.com/maltedev/buyee-landed-cost/internal/ratelimit"
	"github.com/maltedev/buyee-landed-cost/internal/rates"
)

func main() {
	// Local development convenience; no .env in production
	_ = godotenv.Load()

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database connection (optional; persistence endpoints 503 without it)
	var historyStore *database.HistoryStore
	var addressStore *database.AddressStore
	if cfg.Database.Enabled {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		historyStore = database.NewHistoryStore(db)
		addressStore = database.NewAddressStore(db)
	} else {
		logger.Info("database disabled, history and address endpoints unavailable")
	}

	// Redis caches the exchange rate (optional)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
	}

	// Metrics
	observability.Register()

	// Initialize the pipeline
	limiter := ratelimit.NewSimpleRateLimiter(cfg.Fetcher.RateLimitMin, cfg.Fetcher.RateLimitMax)
	fetcher := fetch.NewHTTPFetcher(cfg.Fetcher.Timeout, limiter)
	ex := extractor.New(fetcher, logger)
	rateSource := rates.NewExchangeClient(redisClient, cfg.Exchange.CacheTTL, logger)
	eng := engine.New(ex, rateSource, logger)

	handlers := api.NewHandlers(eng, historyStore, addressStore, logger)

	// Setup Chi router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"database": historyStore != nil,
			"redis":    redisClient != nil,
		})
	})

	// Metrics endpoint
	r.Handle("/metrics", observability.Handler())

	// API routes
	handlers.Routes(r)

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
