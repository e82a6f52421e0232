package services

import (
	"context"

	"github.com/Bharathreddy-142/wheather/internal/models"
	"go.uber.org/zap"
)

// UpdaterService batch-refreshes tracked cities out of band. It repeats the
// same fetch-then-insert sequence as the refresh route and shares no state
// with live requests beyond the datastore.
type UpdaterService struct {
	cities  *CityService
	weather *WeatherService
	logger  *zap.Logger
}

func NewUpdaterService(cities *CityService, weather *WeatherService, logger *zap.Logger) *UpdaterService {
	return &UpdaterService{cities: cities, weather: weather, logger: logger}
}

// UpdateAll refreshes every tracked city, reporting per-city success or
// failure. A failing city does not stop the batch.
func (s *UpdaterService) UpdateAll(ctx context.Context) (updated, failed int) {
	cities, err := s.cities.ListAll()
	if err != nil {
		s.logger.Error("Failed to list cities", zap.Error(err))
		return 0, 0
	}
	if len(cities) == 0 {
		s.logger.Warn("No cities in database, nothing to update")
		return 0, 0
	}

	for _, city := range cities {
		if err := s.updateOne(ctx, city); err != nil {
			failed++
			continue
		}
		updated++
	}

	s.logger.Info("Weather update finished",
		zap.Int("updated", updated), zap.Int("failed", failed))
	return updated, failed
}

// UpdateByName refreshes a single city, matched case-insensitively since the
// name comes from an operator rather than the provider.
func (s *UpdaterService) UpdateByName(ctx context.Context, name string) error {
	city, err := s.cities.GetByName(name)
	if err != nil {
		s.logger.Error("City not found", zap.String("city", name))
		return err
	}
	return s.updateOne(ctx, *city)
}

func (s *UpdaterService) updateOne(ctx context.Context, city models.City) error {
	current, err := s.weather.client.CurrentWeather(ctx, city.Name)
	if err != nil {
		s.logger.Error("✗ Failed to update city",
			zap.String("city", city.Name), zap.Error(err))
		return ErrProviderUnavailable
	}

	if _, err := s.cities.RecordSample(city.ID, sampleFromCurrent(current)); err != nil {
		s.logger.Error("✗ Failed to persist sample",
			zap.String("city", city.Name), zap.Error(err))
		return err
	}

	s.logger.Info("✓ Updated city", zap.String("city", city.Name))
	return nil
}
