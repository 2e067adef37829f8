package storage

import (
	"strconv"

	"climate-pipeline/internal/models"
)

// canonicalColumns is the fixed, ordered header the persistent log declares.
// Novel keys encountered during a merge are appended after these, in
// first-seen order.
var canonicalColumns = []string{
	"timestamp", "latitude", "longitude", "aqi", "temperature_celsius",
	"humidity_percent", "description", "co", "no2", "o3", "pm2_5", "pm10", "so2",
	"feels_like_celsius", "pressure_hpa", "wind_speed_mps",
}

// CanonicalColumns returns a copy of the canonical column list.
func CanonicalColumns() []string {
	cols := make([]string, len(canonicalColumns))
	copy(cols, canonicalColumns)
	return cols
}

// Merge combines the two readings into a single record. Air quality fields
// come first; a weather field whose key already exists is stored under a
// "weather_" prefixed key instead of overwriting, except timestamp which
// keeps the air quality value. The two readings currently share only
// timestamp, so the prefix branch is unreachable with today's schemas; the
// rule is kept as specified and pinned by a unit test.
func Merge(aqi *models.AirQualityReading, weather *models.WeatherReading) *models.MergedRecord {
	rec := &models.MergedRecord{Values: make(map[string]string)}

	putField(rec, "timestamp", aqi.Timestamp)
	putField(rec, "latitude", formatFloat(aqi.Latitude))
	putField(rec, "longitude", formatFloat(aqi.Longitude))
	putField(rec, "aqi", formatOptInt(aqi.AQI))
	putField(rec, "co", formatOptFloat(aqi.CO))
	putField(rec, "no2", formatOptFloat(aqi.NO2))
	putField(rec, "o3", formatOptFloat(aqi.O3))
	putField(rec, "pm2_5", formatOptFloat(aqi.PM25))
	putField(rec, "pm10", formatOptFloat(aqi.PM10))
	putField(rec, "so2", formatOptFloat(aqi.SO2))

	mergeField(rec, "timestamp", weather.Timestamp)
	mergeField(rec, "temperature_celsius", formatOptFloat(weather.TemperatureCelsius))
	mergeField(rec, "feels_like_celsius", formatOptFloat(weather.FeelsLikeCelsius))
	mergeField(rec, "humidity_percent", formatOptFloat(weather.HumidityPercent))
	mergeField(rec, "pressure_hpa", formatOptFloat(weather.PressureHpa))
	mergeField(rec, "description", weather.Description)
	mergeField(rec, "wind_speed_mps", formatOptFloat(weather.WindSpeedMps))

	return rec
}

// putField records a first-source field, tracking first-seen key order.
func putField(rec *models.MergedRecord, key, value string) {
	if _, exists := rec.Values[key]; !exists {
		rec.Keys = append(rec.Keys, key)
	}
	rec.Values[key] = value
}

// mergeField records a second-source field. A key that already exists is not
// overwritten: timestamp keeps the first value, any other collision goes
// under weather_<key>.
func mergeField(rec *models.MergedRecord, key, value string) {
	if _, exists := rec.Values[key]; !exists {
		putField(rec, key, value)
		return
	}
	if key == "timestamp" {
		return
	}
	putField(rec, "weather_"+key, value)
}

// Reconcile maps the record's keys onto the canonical column order. Keys
// absent from the canonical list are appended in first-seen order and also
// returned as extensions. The resulting columns are exactly what the writer
// emits; a value under any other key would be dropped, never an error.
func Reconcile(rec *models.MergedRecord, canonical []string) (columns []string, extensions []string) {
	columns = make([]string, len(canonical))
	copy(columns, canonical)

	known := make(map[string]bool, len(canonical))
	for _, col := range canonical {
		known[col] = true
	}

	for _, key := range rec.Keys {
		if !known[key] {
			columns = append(columns, key)
			extensions = append(extensions, key)
			known[key] = true
		}
	}

	return columns, extensions
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatOptInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
