package services

import (
	"fmt"
	"strconv"

	"climate-pipeline/internal/models"
)

// AnalyzeConditions evaluates the readings against the configured thresholds.
// It is a pure function: total, no side effects, always produces a verdict.
//
// The AQI threshold is inclusive (aqi >= threshold breaches), the temperature
// threshold exclusive (temp > threshold breaches). An alert requires both.
func AnalyzeConditions(aqi *models.AirQualityReading, weather *models.WeatherReading, cfg *models.Configuration) models.Verdict {
	aqiThreshold := cfg.Thresholds.AQIAlert
	tempThreshold := cfg.Thresholds.TempAlertCelsius
	city := cfg.Location.CityName

	if aqi == nil || aqi.AQI == nil || weather == nil || weather.TemperatureCelsius == nil {
		return models.Verdict{
			Alert:   false,
			Message: "WARNING: Missing AQI or Temperature data, cannot perform full analysis.",
		}
	}

	currentAQI := *aqi.AQI
	currentTemp := *weather.TemperatureCelsius

	aqiBreach := currentAQI >= aqiThreshold
	tempBreach := currentTemp > tempThreshold

	switch {
	case aqiBreach && tempBreach:
		return models.Verdict{
			Alert: true,
			Message: fmt.Sprintf(
				"ALERT: Conditions threshold exceeded in %s! AQI: %d (Threshold: >= %d), Temperature: %s°C (Threshold: > %s°C).",
				city, currentAQI, aqiThreshold, formatTemp(currentTemp), formatTemp(tempThreshold)),
		}
	case aqiBreach:
		return models.Verdict{
			Alert: false,
			Message: fmt.Sprintf(
				"INFO: Air Quality index is %d (Threshold: >= %d) in %s, but temperature (%s°C) is below threshold.",
				currentAQI, aqiThreshold, city, formatTemp(currentTemp)),
		}
	case tempBreach:
		return models.Verdict{
			Alert: false,
			Message: fmt.Sprintf(
				"INFO: Temperature is %s°C (Threshold: > %s°C) in %s, but AQI (%d) is below threshold.",
				formatTemp(currentTemp), formatTemp(tempThreshold), city, currentAQI),
		}
	default:
		return models.Verdict{
			Alert:   false,
			Message: "Conditions are within normal parameters.",
		}
	}
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
