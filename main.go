package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/vesmirov/fundhub/app/db"
	appLogger "github.com/vesmirov/fundhub/app/logger"
	"github.com/vesmirov/fundhub/app/observability/metrics"
	"github.com/vesmirov/fundhub/app/observability/tracer"
	"github.com/vesmirov/fundhub/config"
	"github.com/vesmirov/fundhub/internal/api/auth"
	"github.com/vesmirov/fundhub/internal/api/budget"
	"github.com/vesmirov/fundhub/internal/api/currency"
	"github.com/vesmirov/fundhub/internal/api/fund"
	"github.com/vesmirov/fundhub/internal/api/profile"
	"github.com/vesmirov/fundhub/internal/api/transaction"
	"github.com/vesmirov/fundhub/internal/api/user"
	"github.com/vesmirov/fundhub/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Migrations run before the main pool is opened.
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	appMetrics, err := metrics.Init()
	if err != nil {
		logger.Error("Failed to initialize metrics", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTracer, err := tracer.Init("fundhub")
	if err != nil {
		logger.Error("Failed to initialize tracer", slog.Any("error", err))
		os.Exit(1)
	}

	// Dependency wiring, repository -> service -> handler per feature.
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, &cfg, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, authService, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	profileRepo := profile.NewPostgresProfileRepo(pool, logger)
	profileService := profile.NewProfileService(profileRepo, logger)
	profileHandler := profile.NewHandlerImpl(profileService, logger)

	currencyRepo := currency.NewPostgresCurrencyRepo(pool, logger)
	currencyService := currency.NewCurrencyService(currencyRepo, logger)
	currencyHandler := currency.NewHandlerImpl(currencyService, logger)

	fundRepo := fund.NewPostgresFundRepo(pool, logger)
	fundService := fund.NewFundService(fundRepo, logger)
	fundHandler := fund.NewHandlerImpl(fundService, logger)

	transactionRepo := transaction.NewPostgresTransactionRepo(pool, logger)
	transactionService := transaction.NewTransactionService(transactionRepo, logger)
	transactionHandler := transaction.NewHandlerImpl(transactionService, logger)

	budgetRepo := budget.NewPostgresBudgetRepo(pool, logger)
	budgetService := budget.NewBudgetService(budgetRepo, logger)
	budgetHandler := budget.NewHandlerImpl(budgetService, logger)

	apiRouter := router.SetupRouter(&router.Config{
		AuthHandler:        authHandler,
		UserHandler:        userHandler,
		ProfileHandler:     profileHandler,
		CurrencyHandler:    currencyHandler,
		FundHandler:        fundHandler,
		TransactionHandler: transactionHandler,
		BudgetHandler:      budgetHandler,
		Authenticate:       auth.Authenticate(logger, cfg.JWT, authService),
		RequireAdmin:       auth.RequireAdmin(logger),
		RequireRegistered:  auth.RequireRegistered(logger),
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Use(metrics.Middleware(appMetrics))
	mux.Mount("/", apiRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.MetricsPort),
		Handler: metrics.Handler(),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error("Tracer provider shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
