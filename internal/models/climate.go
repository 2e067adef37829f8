package models

// Location identifies the single fixed location the pipeline monitors.
// Latitude and longitude are pointers so a zero coordinate is distinguishable
// from a missing one during validation.
type Location struct {
	CityName  string   `json:"city_name"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

type Thresholds struct {
	AQIAlert         int     `json:"aqi_alert"`
	TempAlertCelsius float64 `json:"temp_alert_celsius"`
}

// StorageConfig names the tabular log target. A missing filename is not a
// config violation; it surfaces later as a non-fatal store failure.
type StorageConfig struct {
	CSVFilename string `json:"csv_filename"`
}

// Configuration is the immutable per-run configuration record. It is
// constructed once per pipeline invocation and never mutated.
type Configuration struct {
	APIKey     string        `json:"api_key"`
	Location   Location      `json:"location"`
	Thresholds Thresholds    `json:"thresholds"`
	Storage    StorageConfig `json:"storage"`
}

// AirQualityReading is one normalized snapshot from the air pollution
// endpoint. Pollutant components the provider omitted stay nil rather than
// defaulting to zero.
type AirQualityReading struct {
	Timestamp string   `json:"timestamp"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	AQI       *int     `json:"aqi"`
	CO        *float64 `json:"co"`
	NO2       *float64 `json:"no2"`
	O3        *float64 `json:"o3"`
	PM25      *float64 `json:"pm2_5"`
	PM10      *float64 `json:"pm10"`
	SO2       *float64 `json:"so2"`
}

// WeatherReading is one normalized snapshot from the current weather
// endpoint, in metric units.
type WeatherReading struct {
	Timestamp          string   `json:"timestamp"`
	TemperatureCelsius *float64 `json:"temperature_celsius"`
	FeelsLikeCelsius   *float64 `json:"feels_like_celsius"`
	HumidityPercent    *float64 `json:"humidity_percent"`
	PressureHpa        *float64 `json:"pressure_hpa"`
	Description        string   `json:"description"`
	WindSpeedMps       *float64 `json:"wind_speed_mps"`
}

// MergedRecord is the single row combining an air quality reading and a
// weather reading for one run. Keys preserves first-seen merge order; Values
// holds the serialized cell for each key, with "" for absent optionals.
type MergedRecord struct {
	Keys   []string          `json:"keys"`
	Values map[string]string `json:"values"`
}

// Verdict is the analyzer's alert decision plus explanatory message.
type Verdict struct {
	Alert   bool   `json:"alert"`
	Message string `json:"message"`
}
