package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "insight360/docs" // This is for Swagger
	"insight360/internal/auth"
	"insight360/internal/config"
	"insight360/internal/database"
	"insight360/internal/external"
	"insight360/internal/handlers"
	"insight360/internal/logger"
	"insight360/internal/middleware"
	"insight360/internal/notify"
	"insight360/internal/repository"
	"insight360/internal/scheduler"
	"insight360/internal/workflow"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Insight360 API
// @version 1.0
// @description Backend API for the Insight360 feedback coordination platform

// @contact.name API Support
// @contact.email support@insight360.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		err := db.Close()
		if err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	cycleRepo := repository.NewCycleRepository(db.DB)
	requestRepo := repository.NewRequestRepository(db.DB)
	tokenRepo := repository.NewTokenRepository(db.DB)
	questionRepo := repository.NewQuestionRepository(db.DB)
	responseRepo := repository.NewResponseRepository(db.DB)
	emailLogRepo := repository.NewEmailLogRepository(db.DB)

	// Initialize services
	authService := auth.NewService(&cfg.JWT)

	var notifier notify.Notifier
	if cfg.Email.Enabled {
		notifier = notify.NewMailer(&cfg.Email, emailLogRepo)
	} else {
		slog.Warn("Email delivery is disabled - notifications are logged only")
		notifier = notify.LogNotifier{}
	}

	engine := workflow.NewEngine(
		db.DB,
		userRepo,
		cycleRepo,
		requestRepo,
		tokenRepo,
		questionRepo,
		responseRepo,
		notifier,
		cfg.Feedback.NominationQuota,
	)
	sweeper := workflow.NewSweeper(
		db.DB,
		userRepo,
		cycleRepo,
		requestRepo,
		tokenRepo,
		notifier,
		cfg.Feedback.SweepPolicy,
	)
	gateway := external.NewGateway(engine, tokenRepo, userRepo, cycleRepo)

	// Initialize scheduler
	schedulerService := scheduler.NewScheduler(sweeper, &cfg.Scheduler)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService)
	rbacMw := middleware.NewRBACMiddleware(db.DB, cfg.Feedback.AdminDesignations)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)

	// Initialize handlers
	cycleHandler := handlers.NewCycleHandler(cycleRepo, engine)
	requestHandler := handlers.NewRequestHandler(engine)
	approvalHandler := handlers.NewApprovalHandler(engine)
	reviewHandler := handlers.NewReviewHandler(engine)
	externalHandler := handlers.NewExternalHandler(gateway)
	adminHandler := handlers.NewAdminHandler(db, sweeper, emailLogRepo)

	// Setup router
	mux := http.NewServeMux()

	// Cycle routes
	mux.Handle("/api/v1/cycles/active", authMw.Authenticate(http.HandlerFunc(cycleHandler.GetActive)))
	mux.Handle("/api/v1/admin/cycles", authMw.Authenticate(rbacMw.RequireAdmin(http.HandlerFunc(cycleHandler.List))))

	// Nomination routes
	mux.Handle("/api/v1/requests", authMw.Authenticate(http.HandlerFunc(requestHandler.Create)))
	mux.Handle("/api/v1/requests/mine", authMw.Authenticate(http.HandlerFunc(requestHandler.Mine)))
	mux.Handle("/api/v1/requests/candidates", authMw.Authenticate(http.HandlerFunc(requestHandler.Candidates)))

	// Manager approval routes
	mux.Handle("/api/v1/approvals", authMw.Authenticate(http.HandlerFunc(approvalHandler.Pending)))
	mux.Handle("/api/v1/approvals/decide", authMw.Authenticate(http.HandlerFunc(approvalHandler.Decide)))

	// Reviewer routes
	mux.Handle("/api/v1/reviews", authMw.Authenticate(http.HandlerFunc(reviewHandler.Queue)))
	mux.Handle("/api/v1/reviews/decide", authMw.Authenticate(http.HandlerFunc(reviewHandler.Decide)))
	mux.Handle("/api/v1/reviews/questions", authMw.Authenticate(http.HandlerFunc(reviewHandler.Questions)))
	mux.Handle("/api/v1/reviews/draft", authMw.Authenticate(http.HandlerFunc(reviewHandler.SaveDraft)))
	mux.Handle("/api/v1/reviews/submit", authMw.Authenticate(http.HandlerFunc(reviewHandler.Submit)))

	// External portal routes (token-authenticated, rate limited)
	mux.Handle("/external/validate", rateLimiter.Limit(http.HandlerFunc(externalHandler.Validate)))
	mux.Handle("/external/accept", rateLimiter.Limit(http.HandlerFunc(externalHandler.Accept)))
	mux.Handle("/external/decline", rateLimiter.Limit(http.HandlerFunc(externalHandler.Decline)))
	mux.Handle("/external/draft", rateLimiter.Limit(http.HandlerFunc(externalHandler.SaveDraft)))
	mux.Handle("/external/submit", rateLimiter.Limit(http.HandlerFunc(externalHandler.Submit)))

	// Admin routes
	mux.Handle("/api/v1/admin/sweep", authMw.Authenticate(rbacMw.RequireAdmin(http.HandlerFunc(adminHandler.Sweep))))
	mux.Handle("/api/v1/admin/email-log", authMw.Authenticate(rbacMw.RequireAdmin(http.HandlerFunc(adminHandler.EmailLog))))

	// Health check endpoint
	mux.HandleFunc("/health", adminHandler.Health)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(mux),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
