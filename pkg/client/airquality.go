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

// AirQualityClient fetches the OpenWeatherMap air pollution endpoint and
// normalizes the response into an AirQualityReading.
type AirQualityClient struct {
	*BaseClient
	baseURL string
	now     func() time.Time
}

type airPollutionResponse struct {
	List []struct {
		Main *struct {
			AQI *int `json:"aqi"`
		} `json:"main"`
		Components map[string]float64 `json:"components"`
	} `json:"list"`
}

func NewAirQualityClient(config ClientConfig, logger *zap.Logger) *AirQualityClient {
	return &AirQualityClient{
		BaseClient: NewBaseClient("air-pollution", config, logger),
		baseURL:    "http://api.openweathermap.org/data/2.5/air_pollution",
		now:        time.Now,
	}
}

// SetBaseURL points the client at a different endpoint. Used by tests.
func (c *AirQualityClient) SetBaseURL(url string) {
	c.baseURL = url
}

// FetchAirQuality issues one bounded call and maps every failure to a
// *FetchError. The reading is stamped with the wall clock at parse time.
func (c *AirQualityClient) FetchAirQuality(ctx context.Context, cfg *models.Configuration) (*models.AirQualityReading, error) {
	lat := *cfg.Location.Latitude
	lon := *cfg.Location.Longitude
	url := fmt.Sprintf("%s?lat=%v&lon=%v&appid=%s", c.baseURL, lat, lon, cfg.APIKey)

	data, err := c.Get(ctx, url)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Endpoint: "air quality", Err: err}
	}

	var response airPollutionResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, &FetchError{Kind: KindShape, Endpoint: "air quality", Err: err}
	}

	if len(response.List) == 0 || response.List[0].Main == nil || response.List[0].Main.AQI == nil {
		return nil, &FetchError{
			Kind:     KindShape,
			Endpoint: "air quality",
			Err:      errors.New("response missing list[0].main.aqi"),
		}
	}

	entry := response.List[0]
	reading := &models.AirQualityReading{
		Timestamp: c.now().Format(time.RFC3339),
		Latitude:  lat,
		Longitude: lon,
		AQI:       entry.Main.AQI,
		CO:        component(entry.Components, "co"),
		NO2:       component(entry.Components, "no2"),
		O3:        component(entry.Components, "o3"),
		PM25:      component(entry.Components, "pm2_5"),
		PM10:      component(entry.Components, "pm10"),
		SO2:       component(entry.Components, "so2"),
	}

	c.logger.Info("Air quality fetched", zap.Int("aqi", *reading.AQI))

	return reading, nil
}

// component returns nil for pollutants the provider omitted, so an absent
// value never turns into a zero.
func component(components map[string]float64, key string) *float64 {
	v, ok := components[key]
	if !ok {
		return nil
	}
	return &v
}
