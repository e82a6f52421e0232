package handlers

import (
	"strconv"
	"strings"

	"github.com/Bharathreddy-142/wheather/internal/database"
	"github.com/Bharathreddy-142/wheather/internal/models"
	"github.com/Bharathreddy-142/wheather/internal/services"
	"github.com/Bharathreddy-142/wheather/pkg/openweather"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type WeatherHandler struct {
	cities   *services.CityService
	weather  *services.WeatherService
	validate *validator.Validate
}

func NewWeatherHandler(db *database.DB, client *openweather.Client, logger *zap.Logger) *WeatherHandler {
	cities := services.NewCityService(db)
	return &WeatherHandler{
		cities:   cities,
		weather:  services.NewWeatherService(cities, client, logger),
		validate: validator.New(),
	}
}

func SetupWeatherRoutes(router fiber.Router, db *database.DB, client *openweather.Client, logger *zap.Logger) {
	h := NewWeatherHandler(db, client, logger)

	router.Get("/", h.Landing)
	router.Post("/search", h.Search)
	router.Get("/cities", h.ListCities)
	router.Get("/cities/:id", h.CityDetail)
	router.Get("/cities/:id/refresh", h.Refresh)
	router.Post("/cities/:id/delete", h.DeleteCity)
	router.Post("/cities/:id/favorite/toggle", h.ToggleFavorite)
	router.Get("/cities/:id/hourly", h.Hourly)
	router.Get("/search-history", h.SearchHistory)
	router.Get("/favorites", h.Favorites)
}

type SearchRequest struct {
	CityName string `json:"city_name" validate:"required"`
}

// Landing godoc
// @Summary Recently searched cities with live weather
// @Tags weather
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *WeatherHandler) Landing(c *fiber.Ctx) error {
	records, err := h.cities.RecentSearches(10)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var referenced []models.City
	for _, record := range records {
		if record.City == nil {
			continue
		}
		referenced = append(referenced, *record.City)
	}

	weather := h.weather.LiveWeatherFor(c.Context(), referenced)

	return c.JSON(fiber.Map{
		"recent_searches": records,
		"weather_data":    weather,
	})
}

// Search godoc
// @Summary Search a city and track it
// @Tags weather
// @Accept json
// @Produce json
// @Param request body SearchRequest true "City name to search"
// @Success 201 {object} map[string]interface{}
// @Router /search [post]
func (h *WeatherHandler) Search(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.CityName = strings.TrimSpace(req.CityName)
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "City name is required"})
	}

	city, err := h.weather.SearchAndTrack(c.Context(), req.CityName)
	if err != nil {
		if err == services.ErrProviderUnavailable {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "City not found or API error",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Weather data for " + city.Name + " fetched successfully",
		"city_id":  city.ID,
		"redirect": "/v1/cities/" + strconv.Itoa(int(city.ID)),
	})
}

// ListCities godoc
// @Summary List tracked cities
// @Tags cities
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} services.CityListResponse
// @Router /cities [get]
func (h *WeatherHandler) ListCities(c *fiber.Ctx) error {
	page, limit := pagination(c, 10)

	response, err := h.cities.List(page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(response)
}

// CityDetail godoc
// @Summary Detailed weather context for a city
// @Tags cities
// @Produce json
// @Param id path int true "City ID"
// @Success 200 {object} services.CityDetail
// @Router /cities/{id} [get]
func (h *WeatherHandler) CityDetail(c *fiber.Ctx) error {
	id, err := parseCityID(c)
	if err != nil {
		return err
	}

	detail, err := h.weather.Detail(c.Context(), id)
	if err != nil {
		return cityError(c, err)
	}
	return c.JSON(detail)
}

// Refresh godoc
// @Summary Re-fetch and persist current weather for a city
// @Tags cities
// @Produce json
// @Param id path int true "City ID"
// @Success 200 {object} map[string]interface{}
// @Router /cities/{id}/refresh [get]
func (h *WeatherHandler) Refresh(c *fiber.Ctx) error {
	id, err := parseCityID(c)
	if err != nil {
		return err
	}

	city, err := h.weather.Refresh(c.Context(), id)
	if err != nil {
		if err == services.ErrProviderUnavailable {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Failed to fetch weather data",
			})
		}
		return cityError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Weather data for " + city.Name + " updated",
		"city":    city,
	})
}

// DeleteCity godoc
// @Summary Delete a city and all its dependent rows
// @Tags cities
// @Produce json
// @Param id path int true "City ID"
// @Success 200 {object} map[string]interface{}
// @Router /cities/{id}/delete [post]
func (h *WeatherHandler) DeleteCity(c *fiber.Ctx) error {
	id, err := parseCityID(c)
	if err != nil {
		return err
	}

	city, err := h.cities.Get(id)
	if err != nil {
		return cityError(c, err)
	}
	if err := h.cities.Delete(id); err != nil {
		return cityError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "City " + city.Name + " deleted successfully",
	})
}

// ToggleFavorite godoc
// @Summary Toggle the favorite mark for a city
// @Tags favorites
// @Produce json
// @Param id path int true "City ID"
// @Success 200 {object} map[string]interface{}
// @Router /cities/{id}/favorite/toggle [post]
func (h *WeatherHandler) ToggleFavorite(c *fiber.Ctx) error {
	id, err := parseCityID(c)
	if err != nil {
		return err
	}

	added, err := h.cities.ToggleFavorite(id)
	if err != nil {
		if err == services.ErrCityNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"status":  "error",
				"message": "City not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	status := "removed"
	if added {
		status = "added"
	}
	return c.JSON(fiber.Map{
		"status":      status,
		"is_favorite": added,
	})
}

// Hourly godoc
// @Summary Hourly forecast data for a city
// @Tags cities
// @Produce json
// @Param id path int true "City ID"
// @Success 200 {object} map[string]interface{}
// @Router /cities/{id}/hourly [get]
func (h *WeatherHandler) Hourly(c *fiber.Ctx) error {
	id, err := parseCityID(c)
	if err != nil {
		return err
	}

	hourly, err := h.weather.Hourly(c.Context(), id)
	if err != nil {
		if err == services.ErrCityNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"hourly_forecast": hourly,
	})
}

// SearchHistory godoc
// @Summary Paginated search history
// @Tags weather
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} services.SearchListResponse
// @Router /search-history [get]
func (h *WeatherHandler) SearchHistory(c *fiber.Ctx) error {
	page, limit := pagination(c, 20)

	response, err := h.cities.ListSearches(page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(response)
}

// Favorites godoc
// @Summary Favorite cities with live weather
// @Tags favorites
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /favorites [get]
func (h *WeatherHandler) Favorites(c *fiber.Ctx) error {
	marks, err := h.cities.ListFavorites()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var referenced []models.City
	for _, mark := range marks {
		if mark.City != nil {
			referenced = append(referenced, *mark.City)
		}
	}
	weather := h.weather.LiveWeatherFor(c.Context(), referenced)

	return c.JSON(fiber.Map{
		"favorites":    marks,
		"weather_data": weather,
	})
}

// pagination reads page/limit query params, falling back to sane values for
// anything non-positive or unparseable.
func pagination(c *fiber.Ctx, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

func parseCityID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid city ID")
	}
	return uint(id), nil
}

func cityError(c *fiber.Ctx, err error) error {
	if err == services.ErrCityNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "City not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
