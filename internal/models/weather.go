package models

import (
	"time"
)

// WeatherSample is one persisted snapshot of weather conditions for a city.
// Samples are append-only: rows are inserted with a server-assigned timestamp
// and never updated afterwards.
// DB: weather_samples
type WeatherSample struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	CityID             uint      `gorm:"column:city_id;not null;index:idx_sample_city" json:"city_id"`
	Temperature        float64   `gorm:"column:temperature;not null" json:"temperature"`
	FeelsLike          *float64  `gorm:"column:feels_like" json:"feels_like,omitempty"`
	TempMin            *float64  `gorm:"column:temp_min" json:"temp_min,omitempty"`
	TempMax            *float64  `gorm:"column:temp_max" json:"temp_max,omitempty"`
	Humidity           int       `gorm:"column:humidity;not null" json:"humidity"`
	Pressure           int       `gorm:"column:pressure;not null" json:"pressure"`
	WeatherMain        string    `gorm:"column:weather_main;size:100;not null" json:"weather_main"`
	WeatherDescription string    `gorm:"column:weather_description;size:255;not null" json:"weather_description"`
	WindSpeed          float64   `gorm:"column:wind_speed;not null" json:"wind_speed"`
	WindDeg            *float64  `gorm:"column:wind_deg" json:"wind_deg,omitempty"`
	WindGust           *float64  `gorm:"column:wind_gust" json:"wind_gust,omitempty"`
	Cloudiness         int       `gorm:"column:cloudiness;not null" json:"cloudiness"`
	Visibility         *int      `gorm:"column:visibility" json:"visibility,omitempty"`
	Sunrise            *int64    `gorm:"column:sunrise" json:"sunrise,omitempty"`
	Sunset             *int64    `gorm:"column:sunset" json:"sunset,omitempty"`
	UVI                *float64  `gorm:"column:uvi" json:"uvi,omitempty"`
	AQI                *int      `gorm:"column:aqi" json:"aqi,omitempty"`
	RainProbability    *int      `gorm:"column:rain_probability" json:"rain_probability,omitempty"`
	Timestamp          time.Time `gorm:"column:timestamp;not null;autoCreateTime;index:idx_sample_ts,sort:desc" json:"timestamp"`

	// Relations
	City *City `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

func (WeatherSample) TableName() string {
	return "weather_samples"
}

// SearchRecord is one search event for a city. Records double as an audit log
// and as the source of the "recently viewed" list on the landing route.
// DB: search_records
type SearchRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CityID     uint      `gorm:"column:city_id;not null;index:idx_search_city" json:"city_id"`
	SearchedAt time.Time `gorm:"column:searched_at;not null;autoCreateTime;index:idx_search_at,sort:desc" json:"searched_at"`

	// Relations
	City *City `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

func (SearchRecord) TableName() string {
	return "search_records"
}

// FavoriteMark marks a city as a favorite. At most one mark exists per city;
// the toggle operation creates or deletes it.
// DB: favorite_marks
type FavoriteMark struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	CityID  uint      `gorm:"column:city_id;not null;uniqueIndex:favorite_marks_city_id_key" json:"city_id"`
	AddedAt time.Time `gorm:"column:added_at;not null;autoCreateTime" json:"added_at"`

	// Relations
	City *City `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

func (FavoriteMark) TableName() string {
	return "favorite_marks"
}
