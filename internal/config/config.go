package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string

	// Database
	DatabaseURL string

	// OpenWeatherMap provider
	OpenWeatherAPIKey string
	WeatherBaseURL    string
	AirPollutionURL   string
	UVIndexURL        string
	ProviderTimeout   time.Duration

	// Out-of-band refresh (cron spec, empty = disabled)
	RefreshCron string

	// SigNoz
	SigNozEndpoint string
}

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "3000"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),

		// Database - DATABASE_URL wins, otherwise built from discrete env vars
		DatabaseURL: getDatabaseURL(),

		// Provider
		OpenWeatherAPIKey: getEnv("OPENWEATHER_API_KEY", ""),
		WeatherBaseURL:    getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		AirPollutionURL:   getEnv("OPENWEATHER_AIR_POLLUTION_URL", "http://api.openweathermap.org/data/2.5/air_pollution"),
		UVIndexURL:        getEnv("OPENWEATHER_UVI_URL", "http://api.openweathermap.org/data/2.5/uvi"),
		ProviderTimeout:   getEnvAsDuration("PROVIDER_TIMEOUT", 5*time.Second),

		// Scheduler
		RefreshCron: getEnv("REFRESH_INTERVAL_CRON", ""),

		// SigNoz
		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "wheather")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
