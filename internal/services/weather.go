package services

import (
	"context"
	"errors"

	"github.com/Bharathreddy-142/wheather/internal/models"
	"github.com/Bharathreddy-142/wheather/pkg/openweather"
	"go.uber.org/zap"
)

// ErrProviderUnavailable is returned when the weather provider could not
// deliver a usable payload. It is the only provider-facing failure callers
// ever see; the underlying cause is logged, not propagated.
var ErrProviderUnavailable = errors.New("weather data unavailable")

// WeatherService orchestrates provider fetches, forecast aggregation and
// persistence for the page routes and the maintenance flow.
type WeatherService struct {
	cities *CityService
	client *openweather.Client
	logger *zap.Logger
}

func NewWeatherService(cities *CityService, client *openweather.Client, logger *zap.Logger) *WeatherService {
	return &WeatherService{cities: cities, client: client, logger: logger}
}

// LiveWeather is the view context built from a live current-conditions fetch.
type LiveWeather struct {
	Temperature float64  `json:"temperature"`
	FeelsLike   *float64 `json:"feels_like,omitempty"`
	TempMin     *float64 `json:"temp_min,omitempty"`
	TempMax     *float64 `json:"temp_max,omitempty"`
	Humidity    int      `json:"humidity"`
	Description string   `json:"description"`
	Main        string   `json:"main"`
	WindSpeed   float64  `json:"wind_speed"`
	WindDeg     *float64 `json:"wind_deg,omitempty"`
	WindGust    *float64 `json:"wind_gust,omitempty"`
	Pressure    int      `json:"pressure"`
	Cloudiness  int      `json:"cloudiness"`
	Visibility  *int     `json:"visibility,omitempty"`
	Sunrise     *int64   `json:"sunrise,omitempty"`
	Sunset      *int64   `json:"sunset,omitempty"`
	Country     string   `json:"country,omitempty"`
	Coords      Coords   `json:"coords"`
}

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CityDetail is the full view context for the city detail route. Live fields
// are omitted when the corresponding fetch failed.
type CityDetail struct {
	City           *models.City            `json:"city"`
	LatestSample   *models.WeatherSample   `json:"latest_sample,omitempty"`
	WeatherHistory []models.WeatherSample  `json:"weather_history"`
	IsFavorite     bool                    `json:"is_favorite"`
	Current        *LiveWeather            `json:"current,omitempty"`
	Forecast       []DailySummary          `json:"forecast,omitempty"`
	HourlyForecast []HourlySummary         `json:"hourly_forecast,omitempty"`
	AirQuality     *openweather.AirQuality `json:"aqi,omitempty"`
	UVIndex        *openweather.UVIndex    `json:"uvi,omitempty"`
	TempTrend      *TemperatureTrend       `json:"temp_trend,omitempty"`
}

// SearchAndTrack resolves a city name through the provider and persists the
// result: the city row (created on first search, keyed by the provider's
// canonical name), a new weather sample and a search record. On provider
// failure nothing is written.
func (s *WeatherService) SearchAndTrack(ctx context.Context, cityName string) (*models.City, error) {
	current, err := s.client.CurrentWeather(ctx, cityName)
	if err != nil {
		s.logger.Warn("Current weather fetch failed",
			zap.String("city", cityName), zap.Error(err))
		return nil, ErrProviderUnavailable
	}

	lat, lon := current.Coord.Lat, current.Coord.Lon
	city, created, err := s.cities.GetOrCreate(current.Name, CityDefaults{
		Country:   current.Sys.Country,
		Latitude:  &lat,
		Longitude: &lon,
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("Tracking new city",
			zap.String("name", city.Name), zap.String("country", city.Country))
	}

	if _, err := s.cities.RecordSample(city.ID, sampleFromCurrent(current)); err != nil {
		return nil, err
	}
	if err := s.cities.RecordSearch(city.ID); err != nil {
		return nil, err
	}

	return city, nil
}

// Refresh re-fetches current weather for an existing city, updates the stored
// coordinates and country, and appends a new sample. A provider failure
// leaves all persisted state untouched.
func (s *WeatherService) Refresh(ctx context.Context, cityID uint) (*models.City, error) {
	city, err := s.cities.Get(cityID)
	if err != nil {
		return nil, err
	}

	current, err := s.client.CurrentWeather(ctx, city.Name)
	if err != nil {
		s.logger.Warn("Refresh fetch failed",
			zap.String("city", city.Name), zap.Error(err))
		return nil, ErrProviderUnavailable
	}

	if err := s.cities.UpdateLocation(city.ID, current.Sys.Country, current.Coord.Lat, current.Coord.Lon); err != nil {
		return nil, err
	}
	if _, err := s.cities.RecordSample(city.ID, sampleFromCurrent(current)); err != nil {
		return nil, err
	}

	return s.cities.Get(city.ID)
}

// Detail assembles the city detail context: persisted history plus up to four
// live fetches. Each live failure degrades to an absent field.
func (s *WeatherService) Detail(ctx context.Context, cityID uint) (*CityDetail, error) {
	city, err := s.cities.Get(cityID)
	if err != nil {
		return nil, err
	}

	detail := &CityDetail{City: city}

	if detail.LatestSample, err = s.cities.LatestSample(city.ID); err != nil {
		return nil, err
	}
	if detail.WeatherHistory, err = s.cities.SampleHistory(city.ID, 10); err != nil {
		return nil, err
	}
	if detail.IsFavorite, err = s.cities.IsFavorite(city.ID); err != nil {
		return nil, err
	}
	if detail.TempTrend, err = s.cities.Trend(city.ID, 30); err != nil {
		return nil, err
	}

	current, err := s.client.CurrentWeather(ctx, city.Name)
	if err != nil {
		s.logger.Warn("Live current weather unavailable",
			zap.String("city", city.Name), zap.Error(err))
	} else {
		detail.Current = liveFromCurrent(current)
	}

	points, err := s.client.Forecast(ctx, city.Name)
	if err != nil {
		s.logger.Warn("Forecast unavailable",
			zap.String("city", city.Name), zap.Error(err))
	} else {
		detail.Forecast = DailyForecast(points)
		detail.HourlyForecast = HourlyForecast(points)
	}

	// Air quality and UV index need coordinates from a successful current fetch.
	if current != nil {
		if aqi, err := s.client.AirPollution(ctx, current.Coord.Lat, current.Coord.Lon); err != nil {
			s.logger.Warn("Air quality unavailable",
				zap.String("city", city.Name), zap.Error(err))
		} else {
			detail.AirQuality = aqi
		}

		if uvi, err := s.client.UVIndex(ctx, current.Coord.Lat, current.Coord.Lon); err != nil {
			s.logger.Warn("UV index unavailable",
				zap.String("city", city.Name), zap.Error(err))
		} else {
			detail.UVIndex = uvi
		}
	}

	return detail, nil
}

// Hourly returns the hourly aggregation for a tracked city. Provider failure
// yields an empty list, not an error; only an unknown city id is an error.
func (s *WeatherService) Hourly(ctx context.Context, cityID uint) ([]HourlySummary, error) {
	city, err := s.cities.Get(cityID)
	if err != nil {
		return nil, err
	}

	points, err := s.client.Forecast(ctx, city.Name)
	if err != nil {
		s.logger.Warn("Hourly forecast unavailable",
			zap.String("city", city.Name), zap.Error(err))
		return []HourlySummary{}, nil
	}
	return HourlyForecast(points), nil
}

// LiveWeatherFor fetches current weather for each city, best effort: cities
// whose fetch fails are simply absent from the returned map.
func (s *WeatherService) LiveWeatherFor(ctx context.Context, cities []models.City) map[uint]*LiveWeather {
	weather := make(map[uint]*LiveWeather)
	for _, city := range cities {
		current, err := s.client.CurrentWeather(ctx, city.Name)
		if err != nil {
			s.logger.Warn("Live weather omitted",
				zap.String("city", city.Name), zap.Error(err))
			continue
		}
		weather[city.ID] = liveFromCurrent(current)
	}
	return weather
}

// sampleFromCurrent maps a provider payload onto the persisted sample shape.
func sampleFromCurrent(current *openweather.CurrentWeather) models.WeatherSample {
	return models.WeatherSample{
		Temperature:        current.Main.Temp,
		FeelsLike:          current.Main.FeelsLike,
		Humidity:           current.Main.Humidity,
		Pressure:           current.Main.Pressure,
		WeatherMain:        current.Weather[0].Main,
		WeatherDescription: current.Weather[0].Description,
		WindSpeed:          current.Wind.Speed,
		Cloudiness:         current.Clouds.All,
	}
}

func liveFromCurrent(current *openweather.CurrentWeather) *LiveWeather {
	return &LiveWeather{
		Temperature: current.Main.Temp,
		FeelsLike:   current.Main.FeelsLike,
		TempMin:     current.Main.TempMin,
		TempMax:     current.Main.TempMax,
		Humidity:    current.Main.Humidity,
		Description: titleCase(current.Weather[0].Description),
		Main:        current.Weather[0].Main,
		WindSpeed:   current.Wind.Speed,
		WindDeg:     current.Wind.Deg,
		WindGust:    current.Wind.Gust,
		Pressure:    current.Main.Pressure,
		Cloudiness:  current.Clouds.All,
		Visibility:  current.Visibility,
		Sunrise:     current.Sys.Sunrise,
		Sunset:      current.Sys.Sunset,
		Country:     current.Sys.Country,
		Coords:      Coords{Lat: current.Coord.Lat, Lon: current.Coord.Lon},
	}
}
