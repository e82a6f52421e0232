package models

import (
	"time"
)

// City represents a tracked city. A city is created on the first successful
// search for its name and is never duplicated; the stored name is the
// provider's canonical spelling, not the user's raw input.
// DB: cities
type City struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:100;not null;uniqueIndex:cities_name_key" json:"name"`
	Country   string    `gorm:"column:country;size:100" json:"country"`
	Latitude  *float64  `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude *float64  `gorm:"column:longitude" json:"longitude,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`

	// Relations
	Samples       []WeatherSample `gorm:"foreignKey:CityID;constraint:OnDelete:CASCADE" json:"samples,omitempty"`
	SearchRecords []SearchRecord  `gorm:"foreignKey:CityID;constraint:OnDelete:CASCADE" json:"search_records,omitempty"`
	FavoriteMarks []FavoriteMark  `gorm:"foreignKey:CityID;constraint:OnDelete:CASCADE" json:"favorite_marks,omitempty"`
}

func (City) TableName() string {
	return "cities"
}
