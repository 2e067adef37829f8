package services

import (
	"strings"
	"testing"

	"climate-pipeline/internal/models"
)

func analyzerConfig() *models.Configuration {
	lat, lon := 50.08, 14.43
	return &models.Configuration{
		APIKey: "test-key",
		Location: models.Location{
			CityName:  "Prague",
			Latitude:  &lat,
			Longitude: &lon,
		},
		Thresholds: models.Thresholds{
			AQIAlert:         100,
			TempAlertCelsius: 30,
		},
	}
}

func readings(aqi int, temp float64) (*models.AirQualityReading, *models.WeatherReading) {
	return &models.AirQualityReading{AQI: &aqi},
		&models.WeatherReading{TemperatureCelsius: &temp, Description: "clear sky"}
}

const normalMessage = "Conditions are within normal parameters."

func TestAnalyzeBothThresholdsBreached(t *testing.T) {
	cfg := analyzerConfig()
	aqi, weather := readings(120, 32)

	verdict := AnalyzeConditions(aqi, weather, cfg)
	if !verdict.Alert {
		t.Fatalf("expected alert=true, got message %q", verdict.Message)
	}

	// The alert message must cite both observed values, both thresholds
	// and the location.
	for _, want := range []string{"120", "100", "32", "30", "Prague", "ALERT"} {
		if !strings.Contains(verdict.Message, want) {
			t.Errorf("alert message missing %q: %q", want, verdict.Message)
		}
	}
}

func TestAnalyzeNormalConditions(t *testing.T) {
	cfg := analyzerConfig()
	aqi, weather := readings(80, 25)

	verdict := AnalyzeConditions(aqi, weather, cfg)
	if verdict.Alert {
		t.Fatal("expected alert=false")
	}
	if verdict.Message != normalMessage {
		t.Fatalf("expected normal-conditions message, got %q", verdict.Message)
	}
}

func TestAnalyzeAQIOnlyBreached(t *testing.T) {
	cfg := analyzerConfig()
	aqi, weather := readings(120, 25)

	verdict := AnalyzeConditions(aqi, weather, cfg)
	if verdict.Alert {
		t.Fatal("expected alert=false for AQI-only breach")
	}
	if verdict.Message == normalMessage {
		t.Fatal("informational message must differ from the normal one")
	}
	for _, want := range []string{"120", "Prague", "below threshold"} {
		if !strings.Contains(verdict.Message, want) {
			t.Errorf("AQI-breach message missing %q: %q", want, verdict.Message)
		}
	}
}

func TestAnalyzeTempOnlyBreached(t *testing.T) {
	cfg := analyzerConfig()
	aqi, weather := readings(80, 32)

	verdict := AnalyzeConditions(aqi, weather, cfg)
	if verdict.Alert {
		t.Fatal("expected alert=false for temperature-only breach")
	}
	if verdict.Message == normalMessage {
		t.Fatal("informational message must differ from the normal one")
	}
	for _, want := range []string{"32", "80", "below threshold"} {
		if !strings.Contains(verdict.Message, want) {
			t.Errorf("temp-breach message missing %q: %q", want, verdict.Message)
		}
	}
}

func TestAnalyzeThresholdBoundaries(t *testing.T) {
	cfg := analyzerConfig()

	// AQI threshold is inclusive: aqi == threshold breaches.
	aqi, weather := readings(100, 25)
	verdict := AnalyzeConditions(aqi, weather, cfg)
	if verdict.Message == normalMessage {
		t.Error("aqi == threshold should count as a breach")
	}

	// Temperature threshold is exclusive: temp == threshold does not.
	aqi, weather = readings(80, 30)
	verdict = AnalyzeConditions(aqi, weather, cfg)
	if verdict.Message != normalMessage {
		t.Errorf("temp == threshold should not breach, got %q", verdict.Message)
	}
}

func TestAnalyzeMissingData(t *testing.T) {
	cfg := analyzerConfig()

	temp := 25.0
	noAQI := &models.AirQualityReading{}
	withTemp := &models.WeatherReading{TemperatureCelsius: &temp}

	aqiVal := 80
	withAQI := &models.AirQualityReading{AQI: &aqiVal}
	noTemp := &models.WeatherReading{}

	for name, tc := range map[string]struct {
		aqi     *models.AirQualityReading
		weather *models.WeatherReading
	}{
		"missing aqi":         {noAQI, withTemp},
		"missing temperature": {withAQI, noTemp},
		"nil readings":        {nil, nil},
	} {
		verdict := AnalyzeConditions(tc.aqi, tc.weather, cfg)
		if verdict.Alert {
			t.Errorf("%s: expected alert=false", name)
		}
		if verdict.Message == normalMessage {
			t.Errorf("%s: missing-data message must be distinguishable from the normal one", name)
		}
		if !strings.Contains(verdict.Message, "Missing") {
			t.Errorf("%s: expected missing-data wording, got %q", name, verdict.Message)
		}
	}
}
