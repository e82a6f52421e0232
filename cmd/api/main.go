package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bharathreddy-142/wheather/internal/config"
	"github.com/Bharathreddy-142/wheather/internal/database"
	"github.com/Bharathreddy-142/wheather/internal/handlers"
	"github.com/Bharathreddy-142/wheather/internal/middleware"
	"github.com/Bharathreddy-142/wheather/internal/scheduler"
	"github.com/Bharathreddy-142/wheather/internal/services"
	"github.com/Bharathreddy-142/wheather/internal/telemetry"
	"github.com/Bharathreddy-142/wheather/pkg/openweather"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize OpenTelemetry tracer
	ctx := context.Background()
	tracerShutdown, err := telemetry.InitTracer(ctx, "wheather-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Error("Failed to initialize tracer", zap.Error(err))
	} else {
		defer func() {
			if err := tracerShutdown(ctx); err != nil {
				log.Error("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Provider client
	client := openweather.NewClient(openweather.Config{
		APIKey:          cfg.OpenWeatherAPIKey,
		BaseURL:         cfg.WeatherBaseURL,
		AirPollutionURL: cfg.AirPollutionURL,
		UVIndexURL:      cfg.UVIndexURL,
		Timeout:         cfg.ProviderTimeout,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      "Wheather API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}))
	app.Use(telemetry.New(telemetry.Config{
		ServiceName: "wheather-api",
	}))
	app.Use(middleware.PrometheusMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, POST, OPTIONS",
		AllowHeaders: "Accept, Accept-Encoding, Content-Type, Origin, User-Agent, X-Requested-With",
	}))

	setupRoutes(app, db, client, log)

	// Optional in-process batch refresh
	var refreshScheduler *scheduler.Scheduler
	if cfg.RefreshCron != "" {
		cities := services.NewCityService(db)
		weather := services.NewWeatherService(cities, client, log)
		updater := services.NewUpdaterService(cities, weather, log)
		refreshScheduler = scheduler.New(updater, cfg.RefreshCron, log)
		if err := refreshScheduler.Start(); err != nil {
			log.Error("Failed to start refresh scheduler", zap.Error(err))
			refreshScheduler = nil
		}
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("Shutting down server...")
		if refreshScheduler != nil {
			refreshScheduler.Stop()
		}
		if err := app.Shutdown(); err != nil {
			log.Error("Error shutting down server", zap.Error(err))
		}
	}()

	log.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

func setupRoutes(app *fiber.App, db *database.DB, client *openweather.Client, log *zap.Logger) {
	// Health check endpoints for k8s probes
	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/v1/healthz", handlers.HealthCheck)
	app.Get("/v1/readiness", handlers.ReadinessCheck(db))
	app.Get("/v1/liveness", handlers.LivenessCheck)

	// Prometheus metrics
	app.Get("/metrics", middleware.PrometheusHandler())

	// API v1 group
	v1 := app.Group("/v1")
	handlers.SetupWeatherRoutes(v1, db, client, log)
}
