package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"climate-pipeline/internal/config"
	"climate-pipeline/internal/services"
	"climate-pipeline/internal/storage"
)

type Handler struct {
	pipeline *services.Pipeline
	loader   *config.Loader
	recorder *storage.CSVRecorder
	logger   *zap.Logger
}

func NewHandler(pipeline *services.Pipeline, loader *config.Loader, recorder *storage.CSVRecorder, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		loader:   loader,
		recorder: recorder,
		logger:   logger,
	}
}

// RunPipeline handles POST /api/v1/pipeline/run. A failed run is still a
// completed request: the response always carries the full run log plus a
// result that is one of error, alert or ok.
func (h *Handler) RunPipeline(c *fiber.Ctx) error {
	h.logger.Info("Pipeline run requested")

	logs, verdict, err := h.pipeline.Run(c.Context())
	if err != nil {
		var pe *services.PipelineError
		if errors.As(err, &pe) {
			return c.JSON(fiber.Map{
				"logs": logs,
				"result": fiber.Map{
					"status":  "error",
					"stage":   pe.Stage,
					"message": pe.Message,
				},
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	status := "ok"
	if verdict.Alert {
		status = "alert"
	}

	return c.JSON(fiber.Map{
		"logs": logs,
		"result": fiber.Map{
			"status":  status,
			"alert":   verdict.Alert,
			"message": verdict.Message,
		},
	})
}

// GetConfig handles GET /api/v1/config. The API key is redacted; the
// dashboard shows the monitored location and thresholds, never the secret.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.loader.Load()
	if err != nil {
		if ce, ok := config.AsConfigError(err); ok {
			code := fiber.StatusInternalServerError
			if ce.Kind == config.KindNotFound {
				code = fiber.StatusNotFound
			}
			return c.Status(code).JSON(fiber.Map{
				"error": "Failed to load configuration",
				"kind":  ce.Kind.String(),
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	redacted := *cfg
	redacted.APIKey = "[redacted]"
	return c.JSON(redacted)
}

// GetHistory handles GET /api/v1/history. Returns the most recent log rows,
// default 10, as an unsynchronized best-effort snapshot.
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	limitStr := c.Query("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > 1000 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Limit parameter must be between 1 and 1000",
		})
	}

	cfg, err := h.loader.Load()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load configuration",
		})
	}

	rows, err := h.recorder.Tail(cfg, limit)
	if err != nil {
		var se *storage.StoreError
		if errors.As(err, &se) && se.Kind == storage.KindIOFailure {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":    "Log file not found; run the pipeline to create it",
				"filename": cfg.Storage.CSVFilename,
			})
		}
		h.logger.Error("Failed to read log history", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read log history")
	}

	return c.JSON(fiber.Map{
		"filename": cfg.Storage.CSVFilename,
		"columns":  storage.CanonicalColumns(),
		"rows":     rows,
		"count":    len(rows),
	})
}

// DownloadHistory handles GET /api/v1/history/download, streaming the raw
// CSV log.
func (h *Handler) DownloadHistory(c *fiber.Ctx) error {
	cfg, err := h.loader.Load()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load configuration",
		})
	}
	return c.Download(cfg.Storage.CSVFilename)
}

// GetHealth handles GET /api/v1/health.
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"stats":     h.pipeline.Stats(),
	})
}

var startTime = time.Now()
