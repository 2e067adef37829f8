package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"climate-pipeline/internal/models"
)

// WeatherClient fetches the OpenWeatherMap current weather endpoint with
// metric units, so temperatures arrive in Celsius without conversion.
type WeatherClient struct {
	*BaseClient
	baseURL string
	now     func() time.Time
}

type currentWeatherResponse struct {
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
		Pressure  *float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

func NewWeatherClient(config ClientConfig, logger *zap.Logger) *WeatherClient {
	return &WeatherClient{
		BaseClient: NewBaseClient("current-weather", config, logger),
		baseURL:    "https://api.openweathermap.org/data/2.5/weather",
		now:        time.Now,
	}
}

// SetBaseURL points the client at a different endpoint. Used by tests.
func (c *WeatherClient) SetBaseURL(url string) {
	c.baseURL = url
}

// FetchWeather issues one bounded call and maps every failure to a
// *FetchError. Optional fields the provider omitted stay nil.
func (c *WeatherClient) FetchWeather(ctx context.Context, cfg *models.Configuration) (*models.WeatherReading, error) {
	lat := *cfg.Location.Latitude
	lon := *cfg.Location.Longitude
	url := fmt.Sprintf("%s?lat=%v&lon=%v&appid=%s&units=metric", c.baseURL, lat, lon, cfg.APIKey)

	data, err := c.Get(ctx, url)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Endpoint: "weather", Err: err}
	}

	var response currentWeatherResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, &FetchError{Kind: KindShape, Endpoint: "weather", Err: err}
	}

	if response.Main == nil || len(response.Weather) == 0 {
		return nil, &FetchError{
			Kind:     KindShape,
			Endpoint: "weather",
			Err:      errors.New("response missing main or weather[0]"),
		}
	}

	reading := &models.WeatherReading{
		Timestamp:          c.now().Format(time.RFC3339),
		TemperatureCelsius: response.Main.Temp,
		FeelsLikeCelsius:   response.Main.FeelsLike,
		HumidityPercent:    response.Main.Humidity,
		PressureHpa:        response.Main.Pressure,
		Description:        response.Weather[0].Description,
	}
	if response.Wind != nil {
		reading.WindSpeedMps = response.Wind.Speed
	}

	if reading.TemperatureCelsius != nil {
		c.logger.Info("Weather fetched",
			zap.Float64("temperature_celsius", *reading.TemperatureCelsius),
			zap.String("description", reading.Description))
	} else {
		c.logger.Info("Weather fetched without temperature",
			zap.String("description", reading.Description))
	}

	return reading, nil
}
