// Command updater refreshes persisted weather for tracked cities out of band,
// mirroring the refresh flow of the API without sharing any state with it
// beyond the datastore.
//
// Usage:
//
//	updater            update every tracked city
//	updater -city Oslo update a single city (name matched case-insensitively)
package main

import (
	"context"
	"flag"
	"os"

	"github.com/Bharathreddy-142/wheather/internal/config"
	"github.com/Bharathreddy-142/wheather/internal/database"
	"github.com/Bharathreddy-142/wheather/internal/services"
	"github.com/Bharathreddy-142/wheather/pkg/openweather"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	cityName := flag.String("city", "", "update weather for a specific city (by name)")
	flag.Parse()

	log, _ := zap.NewProduction()
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	client := openweather.NewClient(openweather.Config{
		APIKey:          cfg.OpenWeatherAPIKey,
		BaseURL:         cfg.WeatherBaseURL,
		AirPollutionURL: cfg.AirPollutionURL,
		UVIndexURL:      cfg.UVIndexURL,
		Timeout:         cfg.ProviderTimeout,
	}, log)

	cities := services.NewCityService(db)
	weather := services.NewWeatherService(cities, client, log)
	updater := services.NewUpdaterService(cities, weather, log)

	ctx := context.Background()
	if *cityName != "" {
		if err := updater.UpdateByName(ctx, *cityName); err != nil {
			os.Exit(1)
		}
		return
	}

	_, failed := updater.UpdateAll(ctx)
	if failed > 0 {
		os.Exit(1)
	}
}
