package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config carries everything the client needs to talk to OpenWeatherMap.
// There is no package-level state; construct a Client per process.
type Config struct {
	APIKey          string
	BaseURL         string
	AirPollutionURL string
	UVIndexURL      string
	Timeout         time.Duration
}

// Client issues GET requests against the OpenWeatherMap endpoints. Every call
// is bounded by the configured timeout and guarded by a circuit breaker;
// callers receive (nil, err) for any network, status, or decode failure and
// are expected to treat that as "data unavailable".
type Client struct {
	httpClient *http.Client
	cfg        Config
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if cfg.AirPollutionURL == "" {
		cfg.AirPollutionURL = "http://api.openweathermap.org/data/2.5/air_pollution"
	}
	if cfg.UVIndexURL == "" {
		cfg.UVIndexURL = "http://api.openweathermap.org/data/2.5/uvi"
	}

	breakerSettings := gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		breaker:    gobreaker.NewCircuitBreaker(breakerSettings),
		logger:     logger,
	}
}

// CurrentWeather fetches current conditions for a free-text city name. The
// provider resolves ambiguous names and returns its canonical city name.
func (c *Client) CurrentWeather(ctx context.Context, city string) (*CurrentWeather, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", c.cfg.APIKey)
	values.Set("units", "metric")

	body, err := c.get(ctx, fmt.Sprintf("%s/weather?%s", c.cfg.BaseURL, values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}

	var payload CurrentWeather
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse current weather response: %w", err)
	}
	if len(payload.Weather) == 0 {
		return nil, fmt.Errorf("current weather response has no weather conditions")
	}

	return &payload, nil
}

// Forecast fetches the raw 3-hour forecast series, up to 40 points (5 days).
func (c *Client) Forecast(ctx context.Context, city string) ([]ForecastPoint, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", c.cfg.APIKey)
	values.Set("units", "metric")
	values.Set("cnt", "40")

	body, err := c.get(ctx, fmt.Sprintf("%s/forecast?%s", c.cfg.BaseURL, values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	var payload struct {
		List []ForecastPoint `json:"list"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	return payload.List, nil
}

// AirPollution fetches the air quality index (1-5 ordinal scale) and the main
// pollutant concentrations for a coordinate pair.
func (c *Client) AirPollution(ctx context.Context, lat, lon float64) (*AirQuality, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s?%s", c.cfg.AirPollutionURL, c.coordQuery(lat, lon)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch air pollution: %w", err)
	}

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components map[string]float64 `json:"components"`
		} `json:"list"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse air pollution response: %w", err)
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("air pollution response has no entries")
	}

	entry := payload.List[0]
	return &AirQuality{
		AQI:  entry.Main.AQI,
		PM25: entry.Components["pm2_5"],
		PM10: entry.Components["pm10"],
		NO2:  entry.Components["no2"],
		O3:   entry.Components["o3"],
	}, nil
}

// UVIndex fetches the UV index for a coordinate pair.
func (c *Client) UVIndex(ctx context.Context, lat, lon float64) (*UVIndex, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s?%s", c.cfg.UVIndexURL, c.coordQuery(lat, lon)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch UV index: %w", err)
	}

	var payload UVIndex
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse UV index response: %w", err)
	}

	return &payload, nil
}

func (c *Client) coordQuery(lat, lon float64) string {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", c.cfg.APIKey)
	return values.Encode()
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request failed: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("HTTP request failed", zap.String("url", url), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("Request successful",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.Int("body_size", len(body)))

		return body, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
