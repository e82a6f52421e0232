package services

import (
	"testing"
	"time"

	"github.com/Bharathreddy-142/wheather/internal/database"
	"github.com/Bharathreddy-142/wheather/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database failed: %v", err)
	}

	// every connection of an in-memory sqlite gets its own database
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrapping sql.DB failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &database.DB{DB: gdb}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

func seedCity(t *testing.T, s *CityService, name, country string) *models.City {
	t.Helper()

	lat, lon := 51.5, -0.12
	city, _, err := s.GetOrCreate(name, CityDefaults{Country: country, Latitude: &lat, Longitude: &lon})
	if err != nil {
		t.Fatalf("seeding city %q failed: %v", name, err)
	}
	return city
}

func sample(temp float64) models.WeatherSample {
	return models.WeatherSample{
		Temperature:        temp,
		Humidity:           65,
		Pressure:           1013,
		WeatherMain:        "Clouds",
		WeatherDescription: "overcast clouds",
		WindSpeed:          3.5,
		Cloudiness:         90,
	}
}

func TestGetOrCreateCollapsesDuplicateNames(t *testing.T) {
	s := NewCityService(newTestDB(t))

	first, created, err := s.GetOrCreate("London", CityDefaults{Country: "GB"})
	if err != nil {
		t.Fatalf("first GetOrCreate failed: %v", err)
	}
	if !created {
		t.Error("expected first call to create the city")
	}

	second, created, err := s.GetOrCreate("London", CityDefaults{Country: "XX"})
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if created {
		t.Error("expected second call to find the existing city")
	}
	if second.ID != first.ID {
		t.Errorf("expected same city id, got %d and %d", first.ID, second.ID)
	}
	if second.Country != "GB" {
		t.Errorf("defaults must not overwrite an existing row, country = %q", second.Country)
	}

	var count int64
	s.db.Model(&models.City{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 city row, got %d", count)
	}
}

func TestGetOrCreateIsCaseSensitive(t *testing.T) {
	s := NewCityService(newTestDB(t))

	seedCity(t, s, "London", "GB")
	_, created, err := s.GetOrCreate("london", CityDefaults{})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !created {
		t.Error("lowercase name must not match the existing row")
	}
}

func TestLatestSampleReturnsNewestInsert(t *testing.T) {
	s := NewCityService(newTestDB(t))
	city := seedCity(t, s, "Paris", "FR")

	if _, err := s.RecordSample(city.ID, sample(15.5)); err != nil {
		t.Fatalf("first RecordSample failed: %v", err)
	}
	if _, err := s.RecordSample(city.ID, sample(16.0)); err != nil {
		t.Fatalf("second RecordSample failed: %v", err)
	}

	latest, err := s.LatestSample(city.ID)
	if err != nil {
		t.Fatalf("LatestSample failed: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest sample")
	}
	if latest.Temperature != 16.0 {
		t.Errorf("expected latest temperature 16.0, got %v", latest.Temperature)
	}

	history, err := s.SampleHistory(city.ID, 10)
	if err != nil {
		t.Fatalf("SampleHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(history))
	}
	if history[0].Temperature != 16.0 || history[1].Temperature != 15.5 {
		t.Errorf("history not ordered newest first: %v, %v",
			history[0].Temperature, history[1].Temperature)
	}
}

func TestLatestSampleWithoutSamples(t *testing.T) {
	s := NewCityService(newTestDB(t))
	city := seedCity(t, s, "Oslo", "NO")

	latest, err := s.LatestSample(city.ID)
	if err != nil {
		t.Fatalf("LatestSample failed: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil for a city without samples, got %+v", latest)
	}
}

func TestRecordSampleDiscardsCallerTimestamp(t *testing.T) {
	s := NewCityService(newTestDB(t))
	city := seedCity(t, s, "Madrid", "ES")

	backdated := sample(12.0)
	backdated.Timestamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	stored, err := s.RecordSample(city.ID, backdated)
	if err != nil {
		t.Fatalf("RecordSample failed: %v", err)
	}
	if stored.Timestamp.Year() == 2000 {
		t.Error("caller-supplied timestamp must not survive the insert")
	}
	if time.Since(stored.Timestamp) > time.Minute {
		t.Errorf("expected a fresh server-assigned timestamp, got %v", stored.Timestamp)
	}
}

func TestToggleFavoriteIsBinary(t *testing.T) {
	s := NewCityService(newTestDB(t))
	city := seedCity(t, s, "Tokyo", "JP")

	added, err := s.ToggleFavorite(city.ID)
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if !added {
		t.Error("first toggle should add the mark")
	}

	var count int64
	s.db.Model(&models.FavoriteMark{}).Where("city_id = ?", city.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 mark after first toggle, got %d", count)
	}

	added, err = s.ToggleFavorite(city.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if added {
		t.Error("second toggle should remove the mark")
	}

	s.db.Model(&models.FavoriteMark{}).Where("city_id = ?", city.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected 0 marks after second toggle, got %d", count)
	}
}

func TestToggleFavoriteUnknownCity(t *testing.T) {
	s := NewCityService(newTestDB(t))

	if _, err := s.ToggleFavorite(42); err != ErrCityNotFound {
		t.Errorf("expected ErrCityNotFound, got %v", err)
	}
}

func TestDeleteCityCascades(t *testing.T) {
	s := NewCityService(newTestDB(t))
	city := seedCity(t, s, "Berlin", "DE")
	other := seedCity(t, s, "Madrid", "ES")

	for i := 0; i < 2; i++ {
		if _, err := s.RecordSample(city.ID, sample(10.0)); err != nil {
			t.Fatalf("RecordSample failed: %v", err)
		}
	}
	if _, err := s.RecordSample(other.ID, sample(20.0)); err != nil {
		t.Fatalf("RecordSample failed: %v", err)
	}
	if err := s.RecordSearch(city.ID); err != nil {
		t.Fatalf("RecordSearch failed: %v", err)
	}
	if _, err := s.ToggleFavorite(city.ID); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}

	if err := s.Delete(city.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var cities, samples, searches, favorites int64
	s.db.Model(&models.City{}).Count(&cities)
	s.db.Model(&models.WeatherSample{}).Count(&samples)
	s.db.Model(&models.SearchRecord{}).Count(&searches)
	s.db.Model(&models.FavoriteMark{}).Count(&favorites)

	if cities != 1 {
		t.Errorf("expected the other city to survive, got %d cities", cities)
	}
	if samples != 1 {
		t.Errorf("expected only the other city's sample, got %d", samples)
	}
	if searches != 0 {
		t.Errorf("expected search records deleted, got %d", searches)
	}
	if favorites != 0 {
		t.Errorf("expected favorite marks deleted, got %d", favorites)
	}
}

func TestDeleteUnknownCity(t *testing.T) {
	s := NewCityService(newTestDB(t))

	if err := s.Delete(7); err != ErrCityNotFound {
		t.Errorf("expected ErrCityNotFound, got %v", err)
	}
}

func TestRecentSearchesKeepsDuplicates(t *testing.T) {
	s := NewCityService(newTestDB(t))
	city := seedCity(t, s, "Rome", "IT")

	for i := 0; i < 3; i++ {
		if err := s.RecordSearch(city.ID); err != nil {
			t.Fatalf("RecordSearch failed: %v", err)
		}
	}

	records, err := s.RecentSearches(10)
	if err != nil {
		t.Fatalf("RecentSearches failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 search records, got %d", len(records))
	}
	for _, record := range records {
		if record.City == nil || record.City.Name != "Rome" {
			t.Errorf("expected preloaded city Rome, got %+v", record.City)
		}
	}
}

func TestTrendComputesWindowStats(t *testing.T) {
	s := NewCityService(newTestDB(t))
	city := seedCity(t, s, "Lisbon", "PT")

	temps := []float64{10, 20, 30}
	for _, temp := range temps {
		if _, err := s.RecordSample(city.ID, sample(temp)); err != nil {
			t.Fatalf("RecordSample failed: %v", err)
		}
	}

	trend, err := s.Trend(city.ID, 30)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if trend == nil {
		t.Fatal("expected a trend")
	}
	if trend.Avg != 20 || trend.Min != 10 || trend.Max != 30 {
		t.Errorf("unexpected stats: avg=%v min=%v max=%v", trend.Avg, trend.Min, trend.Max)
	}
	want := []float64{10, 20, 30}
	for i, temp := range trend.Temperatures {
		if temp != want[i] {
			t.Errorf("series should read oldest first, got %v", trend.Temperatures)
			break
		}
	}

	empty := seedCity(t, s, "Porto", "PT")
	trend, err = s.Trend(empty.ID, 30)
	if err != nil {
		t.Fatalf("Trend on empty city failed: %v", err)
	}
	if trend != nil {
		t.Errorf("expected nil trend for a city without samples, got %+v", trend)
	}
}

func TestGetByNameIsCaseInsensitive(t *testing.T) {
	s := NewCityService(newTestDB(t))
	seedCity(t, s, "London", "GB")

	city, err := s.GetByName("lOnDoN")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if city.Name != "London" {
		t.Errorf("expected London, got %q", city.Name)
	}

	if _, err := s.GetByName("Atlantis"); err != ErrCityNotFound {
		t.Errorf("expected ErrCityNotFound, got %v", err)
	}
}
