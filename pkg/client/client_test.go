package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"climate-pipeline/internal/models"
)

func clientConfig() *models.Configuration {
	lat, lon := 50.08, 14.43
	return &models.Configuration{
		APIKey: "test-key",
		Location: models.Location{
			CityName:  "Prague",
			Latitude:  &lat,
			Longitude: &lon,
		},
	}
}

func TestFetchAirQualityNormalizesResponse(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"list":[{"main":{"aqi":2},"components":{"co":201.9,"no2":0.7,"o3":68.6,"pm2_5":0.5,"pm10":0.54}}]}`))
	}))
	defer server.Close()

	c := NewAirQualityClient(ClientConfig{}, zap.NewNop())
	c.SetBaseURL(server.URL)

	reading, err := c.FetchAirQuality(context.Background(), clientConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"lat=50.08", "lon=14.43", "appid=test-key"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("request query missing %q: %q", want, gotQuery)
		}
	}

	if *reading.AQI != 2 {
		t.Errorf("unexpected aqi: %d", *reading.AQI)
	}
	if reading.CO == nil || *reading.CO != 201.9 {
		t.Errorf("unexpected co: %v", reading.CO)
	}
	// so2 was omitted by the provider: absent, not zero.
	if reading.SO2 != nil {
		t.Errorf("missing component must stay nil, got %v", *reading.SO2)
	}
	if reading.Timestamp == "" {
		t.Error("reading must be stamped at parse time")
	}
}

func TestFetchAirQualityShapeErrors(t *testing.T) {
	for name, body := range map[string]string{
		"empty list":   `{"list":[]}`,
		"missing main": `{"list":[{"components":{}}]}`,
		"missing aqi":  `{"list":[{"main":{},"components":{}}]}`,
		"not json":     `<html>rate limited</html>`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		c := NewAirQualityClient(ClientConfig{}, zap.NewNop())
		c.SetBaseURL(server.URL)

		_, err := c.FetchAirQuality(context.Background(), clientConfig())
		fe, ok := AsFetchError(err)
		if !ok {
			t.Fatalf("%s: expected *FetchError, got %T", name, err)
		}
		if fe.Kind != KindShape {
			t.Errorf("%s: expected shape error, got %v", name, fe.Kind)
		}
		server.Close()
	}
}

func TestFetchAirQualityNetworkErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewAirQualityClient(ClientConfig{}, zap.NewNop())
	c.SetBaseURL(server.URL)

	_, err := c.FetchAirQuality(context.Background(), clientConfig())
	fe, ok := AsFetchError(err)
	if !ok || fe.Kind != KindNetwork {
		t.Fatalf("expected network FetchError on non-2xx, got %v", err)
	}

	// Unreachable endpoint.
	c.SetBaseURL("http://127.0.0.1:1")
	_, err = c.FetchAirQuality(context.Background(), clientConfig())
	fe, ok = AsFetchError(err)
	if !ok || fe.Kind != KindNetwork {
		t.Fatalf("expected network FetchError on connection failure, got %v", err)
	}
}

func TestFetchWeatherNormalizesResponse(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"main":{"temp":21.5,"feels_like":20.9,"humidity":60,"pressure":1012},"weather":[{"description":"clear sky"}],"wind":{"speed":3.2}}`))
	}))
	defer server.Close()

	c := NewWeatherClient(ClientConfig{}, zap.NewNop())
	c.SetBaseURL(server.URL)

	reading, err := c.FetchWeather(context.Background(), clientConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Metric units must be requested explicitly so temp arrives in Celsius.
	if !strings.Contains(gotQuery, "units=metric") {
		t.Errorf("request must ask for metric units: %q", gotQuery)
	}

	if *reading.TemperatureCelsius != 21.5 || *reading.FeelsLikeCelsius != 20.9 {
		t.Errorf("unexpected temperatures: %+v", reading)
	}
	if *reading.HumidityPercent != 60 || *reading.PressureHpa != 1012 {
		t.Errorf("unexpected humidity/pressure: %+v", reading)
	}
	if reading.Description != "clear sky" {
		t.Errorf("unexpected description: %q", reading.Description)
	}
	if reading.WindSpeedMps == nil || *reading.WindSpeedMps != 3.2 {
		t.Errorf("unexpected wind speed: %v", reading.WindSpeedMps)
	}
}

func TestFetchWeatherOptionalWind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"main":{"temp":10},"weather":[{"description":"mist"}]}`))
	}))
	defer server.Close()

	c := NewWeatherClient(ClientConfig{}, zap.NewNop())
	c.SetBaseURL(server.URL)

	reading, err := c.FetchWeather(context.Background(), clientConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.WindSpeedMps != nil {
		t.Error("missing wind block must leave wind speed nil")
	}
	if reading.FeelsLikeCelsius != nil {
		t.Error("missing feels_like must stay nil")
	}
}

func TestFetchWeatherShapeErrors(t *testing.T) {
	for name, body := range map[string]string{
		"missing main":    `{"weather":[{"description":"clear sky"}]}`,
		"empty weather[]": `{"main":{"temp":10},"weather":[]}`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		c := NewWeatherClient(ClientConfig{}, zap.NewNop())
		c.SetBaseURL(server.URL)

		_, err := c.FetchWeather(context.Background(), clientConfig())
		fe, ok := AsFetchError(err)
		if !ok || fe.Kind != KindShape {
			t.Errorf("%s: expected shape FetchError, got %v", name, err)
		}
		server.Close()
	}
}
