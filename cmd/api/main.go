package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"futurisys/attrition-api/internal/config"
	"futurisys/attrition-api/internal/handlers"
	"futurisys/attrition-api/internal/logging"
	"futurisys/attrition-api/internal/metrics"
	"futurisys/attrition-api/internal/ml"
	"futurisys/attrition-api/internal/repositories"
	"futurisys/attrition-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("✅ Config loaded successfully", zap.String("version", cfg.Version()))

	// Initialize database
	db, err := config.InitDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Failed to initialize database", zap.String("error", logging.RedactError(err)))
	}
	if err := config.Migrate(db, logger); err != nil {
		logger.Fatal("❌ Failed to migrate database", zap.Error(err))
	}

	// Initialize repositories
	inputRepo := repositories.NewPredictionInputRepository(db)
	outputRepo := repositories.NewPredictionOutputRepository(db)
	logger.Info("✅ Repositories initialized successfully")

	// Load the classifier; the API does not start without one
	loaders, err := config.ModelLoaders(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Invalid model configuration", zap.Error(err))
	}
	loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	classifier, err := ml.Load(loadCtx, logger.Named("model"), loaders...)
	cancel()
	if err != nil {
		logger.Fatal("❌ Failed to load model", zap.String("error", logging.RedactError(err)))
	}
	logger.Info("✅ Model loaded successfully")

	// Initialize services
	recorder := metrics.NewRecorder()
	predictionService := services.NewPredictionService(inputRepo, outputRepo, classifier, recorder, logger)
	erdService := services.NewERDService(services.NewGormInspector(db))
	logger.Info("✅ Services initialized successfully")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      cfg.API.Title,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: handlers.ErrorHandler(logger.Named("http")),
	})

	handlers.SetupRoutes(app, handlers.Routes{
		Predictions:    handlers.NewPredictionHandler(predictionService),
		Meta:           handlers.NewMetaHandler(cfg.API.Title, cfg.Version(), erdService),
		UI:             handlers.NewUIHandler(predictionService, cfg.Version()),
		Metrics:        recorder,
		APIKey:         cfg.Server.APIKey,
		CORSOrigins:    cfg.AllowedOrigins(),
		RequestTimeout: cfg.Server.RequestTimeout,
		AccessLog:      true,
	})
	if cfg.Server.APIKey == "" {
		logger.Warn("API_KEY is empty, prediction routes and the /ui form are not protected")
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("❌ Server forced to shutdown", zap.Error(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("🚀 Server starting", zap.String("addr", addr))
	logger.Info("🧪 Prediction form", zap.String("url", fmt.Sprintf("http://localhost%s/ui", addr)))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
