package services

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Bharathreddy-142/wheather/pkg/openweather"
)

// DailySummary is one representative forecast point per calendar day.
type DailySummary struct {
	Dt          int64   `json:"dt"`
	Date        string  `json:"date"`
	Hour        int     `json:"hour"`
	Temperature float64 `json:"temperature"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	Description string  `json:"description"`
	Main        string  `json:"main"`
	WindSpeed   float64 `json:"wind_speed"`
	Cloudiness  int     `json:"cloudiness"`
	Rain        float64 `json:"rain"`
}

// HourlySummary is one raw 3-hour point reshaped for display.
type HourlySummary struct {
	Time        string   `json:"time"`
	Hour        int      `json:"hour"`
	Temperature float64  `json:"temperature"`
	FeelsLike   *float64 `json:"feels_like,omitempty"`
	Humidity    int      `json:"humidity"`
	Description string   `json:"description"`
	Main        string   `json:"main"`
	WindSpeed   float64  `json:"wind_speed"`
	RainProb    int      `json:"rain_prob"`
	Cloudiness  int      `json:"cloudiness"`
}

// DailyForecast reduces the 3-hour series to one point per calendar day,
// midday biased: a day's candidate is replaced when no candidate is stored
// yet, when the point is at hour 12, or when the point is before noon while
// the stored candidate is after noon. Once a day holds an hour-12 point it is
// final. Days are keyed in the server's local time zone. Output is sorted
// chronologically and truncated to the first 10 days.
func DailyForecast(points []openweather.ForecastPoint) []DailySummary {
	daily := make(map[string]DailySummary)

	for _, point := range points {
		if len(point.Weather) == 0 {
			continue
		}

		t := time.Unix(point.Dt, 0)
		key := t.Format("2006-01-02")

		stored, exists := daily[key]
		if exists && stored.Hour == 12 {
			continue
		}
		if !exists || t.Hour() == 12 || (t.Hour() < 12 && stored.Hour > 12) {
			daily[key] = DailySummary{
				Dt:          point.Dt,
				Date:        key,
				Hour:        t.Hour(),
				Temperature: point.Main.Temp,
				TempMin:     point.Main.TempMin,
				TempMax:     point.Main.TempMax,
				Humidity:    point.Main.Humidity,
				Pressure:    point.Main.Pressure,
				Description: titleCase(point.Weather[0].Description),
				Main:        point.Weather[0].Main,
				WindSpeed:   point.Wind.Speed,
				Cloudiness:  point.Clouds.All,
				Rain:        point.Rain.ThreeHour,
			}
		}
	}

	keys := make([]string, 0, len(daily))
	for key := range daily {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > 10 {
		keys = keys[:10]
	}

	summaries := make([]DailySummary, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, daily[key])
	}
	return summaries
}

// HourlyForecast reshapes the first 8 raw points (the provider's next ~24h)
// with a local time-of-day label and the precipitation probability scaled
// from a 0-1 fraction to a 0-100 percentage.
func HourlyForecast(points []openweather.ForecastPoint) []HourlySummary {
	if len(points) > 8 {
		points = points[:8]
	}

	summaries := make([]HourlySummary, 0, len(points))
	for _, point := range points {
		if len(point.Weather) == 0 {
			continue
		}

		t := time.Unix(point.Dt, 0)
		summaries = append(summaries, HourlySummary{
			Time:        t.Format("15:04"),
			Hour:        t.Hour(),
			Temperature: point.Main.Temp,
			FeelsLike:   point.Main.FeelsLike,
			Humidity:    point.Main.Humidity,
			Description: titleCase(point.Weather[0].Description),
			Main:        point.Weather[0].Main,
			WindSpeed:   point.Wind.Speed,
			RainProb:    int(point.Pop * 100),
			Cloudiness:  point.Clouds.All,
		})
	}
	return summaries
}

// titleCase capitalizes the first rune of each space-separated word, e.g.
// "overcast clouds" -> "Overcast Clouds". Descriptions are localizable, so
// the first character is not assumed to be a single byte.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
