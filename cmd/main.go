package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aryngazy/fest-system/auth"
	"github.com/aryngazy/fest-system/config"
	"github.com/aryngazy/fest-system/db"
	"github.com/aryngazy/fest-system/handlers"
	"github.com/aryngazy/fest-system/live"
	"github.com/aryngazy/fest-system/oauth"
	"github.com/aryngazy/fest-system/repositories"
	api "github.com/aryngazy/fest-system/routes"
	"github.com/aryngazy/fest-system/services"
	"github.com/aryngazy/fest-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const sessionCleanupInterval = time.Hour // How often expired sessions get purged

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Миграции схемы
	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logger.Error("failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub (живой фид админ-дашборда)
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	emailService := services.NewEmailService(cfg)
	userService := services.NewUserService(userRepo)
	sessionService := services.NewSessionService(sessionRepo, cfg.AdminEmails, cfg.AdminPasswordHash, logger)
	registrationService := services.NewRegistrationService(registrationRepo, cloudflareUploader, wsHub, emailService, logger)
	adminService := services.NewAdminService(registrationRepo, wsHub, logger)
	statsService := services.NewStatsService(userRepo, registrationRepo)
	logger.Info("Services initialized")

	// Фоновая чистка истёкших сессий
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go sessionService.RunCleanup(cleanupCtx, sessionCleanupInterval)

	// OAuth-провайдеры
	providers := []oauth.Provider{
		oauth.NewGoogleProvider(cfg.Google),
		oauth.NewGitHubProvider(cfg.GitHub),
	}

	// Cookie-кодек: Secure только на https-базе
	codec := auth.NewCookieCodec(cfg.SessionSecretKey, strings.HasPrefix(cfg.BaseURL, "https://"))

	// Инициализация обработчиков HTTP
	pageHandler := handlers.NewPageHandler()
	authHandler := handlers.NewAuthHandler(providers, userService, sessionService, codec, logger)
	registrationHandler := handlers.NewRegistrationHandler(registrationService, logger)
	userHandler := handlers.NewUserHandler(registrationService)
	eventHandler := handlers.NewEventHandler()
	adminHandler := handlers.NewAdminHandler(adminService, statsService, sessionService, codec, wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		codec,
		sessionService,
		pageHandler,
		authHandler,
		registrationHandler,
		userHandler,
		eventHandler,
		adminHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second, // multipart uploads need headroom
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
