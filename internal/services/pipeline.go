package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"climate-pipeline/internal/models"
)

// Stage names for PipelineError, in execution order.
const (
	StageConfig  = "config"
	StageAQI     = "air-quality"
	StageWeather = "weather"
)

// PipelineError reports a terminal stage failure. Store failures never
// produce one; they are warnings and the run continues.
type PipelineError struct {
	Stage   string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

type ConfigLoader interface {
	Load() (*models.Configuration, error)
}

type AirQualityFetcher interface {
	FetchAirQuality(ctx context.Context, cfg *models.Configuration) (*models.AirQualityReading, error)
}

type WeatherFetcher interface {
	FetchWeather(ctx context.Context, cfg *models.Configuration) (*models.WeatherReading, error)
}

type Recorder interface {
	Append(aqi *models.AirQualityReading, weather *models.WeatherReading, cfg *models.Configuration) error
}

// RunStats summarizes orchestrator activity for the health endpoint.
type RunStats struct {
	Runs       int       `json:"runs"`
	Successes  int       `json:"successes"`
	Failures   int       `json:"failures"`
	Alerts     int       `json:"alerts"`
	LastRun    time.Time `json:"last_run"`
	LastResult string    `json:"last_result"`
}

// Pipeline sequences one run: load config, fetch air quality, fetch weather,
// store, analyze. The two fetches are strictly sequential so a failed air
// quality fetch short-circuits before any weather call. Runs within one
// process are serialized by a mutex; the shared CSV log stays unguarded
// across processes.
type Pipeline struct {
	loader   ConfigLoader
	aqi      AirQualityFetcher
	weather  WeatherFetcher
	recorder Recorder
	logger   *zap.Logger

	// runMu serializes runs so two dashboard triggers cannot interleave
	// appends to the shared log; statsMu guards the counters so the health
	// endpoint never blocks on a run in flight.
	runMu   sync.Mutex
	statsMu sync.Mutex
	stats   RunStats
}

func NewPipeline(loader ConfigLoader, aqi AirQualityFetcher, weather WeatherFetcher, recorder Recorder, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		loader:   loader,
		aqi:      aqi,
		weather:  weather,
		recorder: recorder,
		logger:   logger,
	}
}

// Run executes one end-to-end pipeline invocation. It always returns the
// complete step-by-step run log; the verdict is non-nil exactly when err is
// nil, and err is always a *PipelineError. Config and fetch failures are
// terminal, a store failure is recorded as a warning and the run proceeds to
// analysis.
func (p *Pipeline) Run(ctx context.Context) ([]string, *models.Verdict, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	p.statsMu.Lock()
	p.stats.Runs++
	p.stats.LastRun = time.Now()
	p.statsMu.Unlock()

	logs := []string{"======= Starting climate pipeline run ======="}

	logs = append(logs, "config: loading configuration...")
	cfg, err := p.loader.Load()
	if err != nil {
		p.logger.Error("Pipeline aborted, configuration load failed", zap.Error(err))
		logs = append(logs, fmt.Sprintf("config: load failed: %v", err))
		logs = append(logs, "Pipeline failed: Could not load configuration.")
		return logs, nil, p.fail(&PipelineError{Stage: StageConfig, Message: "Configuration Error", Err: err})
	}
	logs = append(logs, fmt.Sprintf("config: using configuration for %s (%v, %v)",
		cfg.Location.CityName, *cfg.Location.Latitude, *cfg.Location.Longitude))

	logs = append(logs, "air quality: attempting fetch...")
	aqiReading, err := p.aqi.FetchAirQuality(ctx, cfg)
	if err != nil {
		p.logger.Error("Pipeline aborted, air quality fetch failed", zap.Error(err))
		logs = append(logs, fmt.Sprintf("air quality: fetch failed: %v", err))
		logs = append(logs, "Pipeline interrupted: Failed to fetch air quality data.")
		return logs, nil, p.fail(&PipelineError{Stage: StageAQI, Message: "Failed to fetch AQI", Err: err})
	}
	logs = append(logs, fmt.Sprintf("air quality: fetch successful, AQI %s", formatOptAQI(aqiReading.AQI)))

	logs = append(logs, "weather: attempting fetch...")
	weatherReading, err := p.weather.FetchWeather(ctx, cfg)
	if err != nil {
		p.logger.Error("Pipeline aborted, weather fetch failed", zap.Error(err))
		logs = append(logs, fmt.Sprintf("weather: fetch failed: %v", err))
		logs = append(logs, "Pipeline interrupted: Failed to fetch weather data.")
		return logs, nil, p.fail(&PipelineError{Stage: StageWeather, Message: "Failed to fetch Weather", Err: err})
	}
	logs = append(logs, fmt.Sprintf("weather: fetch successful, temperature %s°C, %s",
		formatOptTemp(weatherReading.TemperatureCelsius), weatherReading.Description))

	logs = append(logs, fmt.Sprintf("storage: appending to %s...", cfg.Storage.CSVFilename))
	if err := p.recorder.Append(aqiReading, weatherReading, cfg); err != nil {
		// Non-terminal: the verdict matters more than the log row.
		p.logger.Warn("Store step failed, continuing to analysis", zap.Error(err))
		logs = append(logs, fmt.Sprintf("Pipeline Warning: Failed to store data: %v", err))
	} else {
		logs = append(logs, "storage: append successful")
	}

	logs = append(logs, "analysis: evaluating conditions...")
	verdict := AnalyzeConditions(aqiReading, weatherReading, cfg)
	logs = append(logs, fmt.Sprintf("analysis: complete, alert=%t", verdict.Alert))
	logs = append(logs, verdict.Message)

	p.statsMu.Lock()
	p.stats.Successes++
	if verdict.Alert {
		p.stats.Alerts++
		p.stats.LastResult = "alert"
	} else {
		p.stats.LastResult = "ok"
	}
	runs := p.stats.Runs
	p.statsMu.Unlock()

	logs = append(logs, "======= Pipeline run finished =======")

	p.logger.Info("Pipeline run finished",
		zap.Bool("alert", verdict.Alert),
		zap.Int("runs", runs))

	return logs, &verdict, nil
}

func (p *Pipeline) fail(err *PipelineError) error {
	p.statsMu.Lock()
	p.stats.Failures++
	p.stats.LastResult = "error"
	p.statsMu.Unlock()
	return err
}

// Stats returns a snapshot of the run counters.
func (p *Pipeline) Stats() RunStats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

func formatOptTemp(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatTemp(*v)
}

func formatOptAQI(v *int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}
