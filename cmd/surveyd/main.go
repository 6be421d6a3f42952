package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SAP-F-2025/survey-engine/internal/cache"
	"github.com/SAP-F-2025/survey-engine/internal/client"
	"github.com/SAP-F-2025/survey-engine/internal/config"
	"github.com/SAP-F-2025/survey-engine/internal/delivery"
	"github.com/SAP-F-2025/survey-engine/internal/events"
	"github.com/SAP-F-2025/survey-engine/internal/handlers"
	"github.com/SAP-F-2025/survey-engine/internal/repositories/postgres"
	"github.com/SAP-F-2025/survey-engine/internal/services"
	"github.com/SAP-F-2025/survey-engine/internal/utils"
	"github.com/SAP-F-2025/survey-engine/internal/validator"
	"github.com/SAP-F-2025/survey-engine/pkg"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("survey engine exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewBaseLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	logger.Info("Connected to database")

	rdb, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()
	logger.Info("Connected to Redis")

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(logger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	v := validator.New()
	payloadRepo := postgres.NewPayloadPostgreSQL(db)
	queue := delivery.NewOutboxQueue(payloadRepo, logger)

	hostname, _ := os.Hostname()
	dispatcher := delivery.NewDispatcher(
		queue,
		publisher,
		cache.NewRedisCache(rdb, "survey-engine:", logger),
		delivery.DispatcherConfig{
			Interval:    cfg.Delivery.Interval,
			BatchSize:   cfg.Delivery.BatchSize,
			MaxAttempts: cfg.Delivery.MaxAttempts,
			ClaimTTL:    cfg.Delivery.ClaimTTL,
			InstanceID:  hostname + "-" + uuid.NewString(),
		},
		logger,
	)

	surveyClient := client.NewHTTPSurveyClient(client.HTTPClientConfig{
		BaseURL:   cfg.Survey.APIURL,
		APIKey:    cfg.Survey.APIKey,
		UserAgent: cfg.Survey.UserAgent,
		Timeout:   cfg.Survey.Timeout,
		Logger:    logger,
	}, v)

	session := services.NewSurveySession(surveyClient, services.NewSubmissionGateway(queue, logger), v, logger)
	exportService := services.NewExportService(payloadRepo, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handlerLogger := utils.NewSlogLogger(logger)
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestID(handlerLogger), utils.LoggerMiddleware(handlerLogger))
	handlers.NewHandlerManager(session, exportService, payloadRepo, v, handlerLogger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	if cfg.Survey.FetchOnStart {
		session.FetchSurvey(ctx, func(success bool) {
			logger.Info("Initial survey fetch finished", "success", success)
		})
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server")
	case err := <-serverErr:
		stop()
		wg.Wait()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	wg.Wait()

	logger.Info("Server exited")
	return nil
}
