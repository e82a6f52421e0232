package services

import (
	"errors"
	"time"

	"github.com/Bharathreddy-142/wheather/internal/database"
	"github.com/Bharathreddy-142/wheather/internal/models"
	"gorm.io/gorm"
)

// ErrCityNotFound is returned for operations against an unknown city id.
var ErrCityNotFound = errors.New("city not found")

// CityService owns the persistence contracts for cities and their dependent
// rows: get-or-create identity, append-only samples and search records, the
// binary favorite mark, and cascade delete.
type CityService struct {
	db *database.DB
}

func NewCityService(db *database.DB) *CityService {
	return &CityService{db: db}
}

// CityDefaults are the fields applied when GetOrCreate has to insert. They
// come from a fresh provider response, never from user input.
type CityDefaults struct {
	Country   string
	Latitude  *float64
	Longitude *float64
}

type CityListResponse struct {
	Items      []models.City `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

type SearchListResponse struct {
	Items      []models.SearchRecord `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

// TemperatureTrend summarizes persisted temperatures, newest window first
// collapsed to avg/min/max plus the chronological series.
type TemperatureTrend struct {
	Avg          float64   `json:"avg"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`
	Temperatures []float64 `json:"temperatures"`
}

// GetOrCreate looks a city up by its unique name and inserts it with the
// given defaults on a miss. The lookup is case-sensitive: the name is the
// provider's canonical spelling.
func (s *CityService) GetOrCreate(name string, defaults CityDefaults) (*models.City, bool, error) {
	var city models.City
	err := s.db.Where("name = ?", name).First(&city).Error
	if err == nil {
		return &city, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	city = models.City{
		Name:      name,
		Country:   defaults.Country,
		Latitude:  defaults.Latitude,
		Longitude: defaults.Longitude,
	}
	if err := s.db.Create(&city).Error; err != nil {
		return nil, false, err
	}
	return &city, true, nil
}

func (s *CityService) Get(id uint) (*models.City, error) {
	var city models.City
	if err := s.db.First(&city, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return &city, nil
}

// GetByName matches a city name case-insensitively. Used by the maintenance
// command, which takes operator input rather than provider output.
func (s *CityService) GetByName(name string) (*models.City, error) {
	var city models.City
	if err := s.db.Where("LOWER(name) = LOWER(?)", name).First(&city).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return &city, nil
}

func (s *CityService) ListAll() ([]models.City, error) {
	var cities []models.City
	err := s.db.Order("created_at DESC").Find(&cities).Error
	return cities, err
}

// List retrieves cities with pagination.
func (s *CityService) List(page, limit int) (*CityListResponse, error) {
	var cities []models.City
	var total int64

	query := s.db.Model(&models.City{})
	query.Count(&total)

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&cities).Error; err != nil {
		return nil, err
	}

	return &CityListResponse{
		Items:      cities,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UpdateLocation overwrites the stored country and coordinates. Only the
// refresh flow calls this, with values from a successful provider response.
func (s *CityService) UpdateLocation(cityID uint, country string, lat, lon float64) error {
	return s.db.Model(&models.City{}).Where("id = ?", cityID).Updates(map[string]interface{}{
		"country":   country,
		"latitude":  lat,
		"longitude": lon,
	}).Error
}

// RecordSample appends a new weather sample. Samples are never updated; the
// timestamp is assigned on insert, a caller-supplied one is discarded.
func (s *CityService) RecordSample(cityID uint, sample models.WeatherSample) (*models.WeatherSample, error) {
	sample.ID = 0
	sample.CityID = cityID
	sample.Timestamp = time.Time{}
	if err := s.db.Create(&sample).Error; err != nil {
		return nil, err
	}
	return &sample, nil
}

// RecordSearch appends a search event for the city.
func (s *CityService) RecordSearch(cityID uint) error {
	return s.db.Create(&models.SearchRecord{CityID: cityID}).Error
}

// ToggleFavorite flips the favorite mark for a city: it deletes the existing
// mark if one exists, otherwise it creates one. Returns true when a mark was
// added, false when removed.
func (s *CityService) ToggleFavorite(cityID uint) (bool, error) {
	if _, err := s.Get(cityID); err != nil {
		return false, err
	}

	var mark models.FavoriteMark
	err := s.db.Where("city_id = ?", cityID).First(&mark).Error
	if err == nil {
		if err := s.db.Delete(&mark).Error; err != nil {
			return false, err
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := s.db.Create(&models.FavoriteMark{CityID: cityID}).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *CityService) IsFavorite(cityID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.FavoriteMark{}).Where("city_id = ?", cityID).Count(&count).Error
	return count > 0, err
}

func (s *CityService) ListFavorites() ([]models.FavoriteMark, error) {
	var marks []models.FavoriteMark
	err := s.db.Preload("City").Order("added_at DESC, id DESC").Find(&marks).Error
	return marks, err
}

// Delete removes a city and cascades to all dependent rows. The child tables
// are cleared explicitly so the contract holds even when the datastore does
// not enforce foreign keys.
func (s *CityService) Delete(id uint) error {
	city, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.db.Where("city_id = ?", city.ID).Delete(&models.WeatherSample{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("city_id = ?", city.ID).Delete(&models.SearchRecord{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("city_id = ?", city.ID).Delete(&models.FavoriteMark{}).Error; err != nil {
		return err
	}
	return s.db.Delete(&models.City{}, city.ID).Error
}

// LatestSample returns the most recent sample for a city, or nil when the
// city has no samples yet.
func (s *CityService) LatestSample(cityID uint) (*models.WeatherSample, error) {
	var sample models.WeatherSample
	err := s.db.Where("city_id = ?", cityID).Order("timestamp DESC, id DESC").First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sample, nil
}

// SampleHistory returns the most recent n samples, newest first.
func (s *CityService) SampleHistory(cityID uint, n int) ([]models.WeatherSample, error) {
	var samples []models.WeatherSample
	err := s.db.Where("city_id = ?", cityID).Order("timestamp DESC, id DESC").Limit(n).Find(&samples).Error
	return samples, err
}

// RecentSearches returns the most recent n search events, newest first. The
// list is intentionally not deduplicated by city.
func (s *CityService) RecentSearches(n int) ([]models.SearchRecord, error) {
	var records []models.SearchRecord
	err := s.db.Preload("City").Order("searched_at DESC, id DESC").Limit(n).Find(&records).Error
	return records, err
}

// ListSearches retrieves search records with pagination.
func (s *CityService) ListSearches(page, limit int) (*SearchListResponse, error) {
	var records []models.SearchRecord
	var total int64

	query := s.db.Model(&models.SearchRecord{})
	query.Count(&total)

	offset := (page - 1) * limit
	if err := s.db.Preload("City").Order("searched_at DESC, id DESC").
		Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}

	return &SearchListResponse{
		Items:      records,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Trend computes avg/min/max over the last n persisted samples. Returns nil
// when the city has no samples.
func (s *CityService) Trend(cityID uint, n int) (*TemperatureTrend, error) {
	samples, err := s.SampleHistory(cityID, n)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, nil
	}

	trend := &TemperatureTrend{
		Min:          samples[0].Temperature,
		Max:          samples[0].Temperature,
		Temperatures: make([]float64, len(samples)),
	}

	var sum float64
	for i, sample := range samples {
		sum += sample.Temperature
		if sample.Temperature < trend.Min {
			trend.Min = sample.Temperature
		}
		if sample.Temperature > trend.Max {
			trend.Max = sample.Temperature
		}
		// samples arrive newest first; the series reads oldest first
		trend.Temperatures[len(samples)-1-i] = sample.Temperature
	}
	trend.Avg = sum / float64(len(samples))

	return trend, nil
}

func totalPages(total int64, limit int) int {
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}
