package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maya/screenrank/internal/domain"
	"github.com/maya/screenrank/internal/etl"
	"github.com/maya/screenrank/internal/logger"
	"github.com/maya/screenrank/internal/repository"
)

// PipelineFactory builds a fresh orchestrator for one run.
type PipelineFactory func() *etl.Pipeline

// ETLHandler handles pipeline control endpoints: start, status, history,
// refresh, and best-effort cancel.
type ETLHandler struct {
	runs        *repository.RunRepository
	agg         *etl.AggregationEngine
	newPipeline PipelineFactory
	logger      *logger.Logger
}

// NewETLHandler creates a new ETL control handler.
// Parameters:
//   - runs: run history repository.
//   - agg: aggregation engine for the refresh endpoint.
//   - newPipeline: factory building one orchestrator per started run.
//   - log: logger instance.
// Returns:
//   - *ETLHandler: initialized handler.
func NewETLHandler(runs *repository.RunRepository, agg *etl.AggregationEngine, newPipeline PipelineFactory, log *logger.Logger) *ETLHandler {
	return &ETLHandler{
		runs:        runs,
		agg:         agg,
		newPipeline: newPipeline,
		logger:      log,
	}
}

// StartETL handles POST /api/v1/etl/start.
// Query parameters: dataset (optional single-dataset scope), force (skip the
// already-running guard). The pipeline runs as one background unit of work;
// the response returns the run ID immediately.
func (h *ETLHandler) StartETL(c *gin.Context) {
	ctx := c.Request.Context()
	force := c.Query("force") == "true"

	var datasets []etl.Dataset
	scope := "all"
	if ds := c.Query("dataset"); ds != "" {
		dataset, err := etl.ParseDataset(ds)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error() + ". Must be one of: people, titles, ratings, credits",
			})
			return
		}
		datasets = []etl.Dataset{dataset}
		scope = ds
	} else {
		datasets = etl.DatasetOrder
	}

	// Concurrent runs are discouraged, not prevented: this check and the
	// insert below are not one atomic unit.
	if !force {
		running, err := h.runs.HasRunning(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check run state: " + err.Error(),
			})
			return
		}
		if running {
			latest, _ := h.runs.GetLatest(ctx)
			detail := "A pipeline run is already in progress. Use force=true to override."
			if latest != nil {
				detail = fmt.Sprintf("A pipeline run is already in progress (run ID: %d). Use force=true to override.", latest.ID)
			}
			c.JSON(http.StatusConflict, gin.H{"error": detail})
			return
		}
	}

	run, err := h.runs.Begin(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create run record: " + err.Error(),
		})
		return
	}

	// The request context dies with the response; the background run gets
	// its own, carrying only the tracing fields.
	bgCtx := logger.WithFields(context.Background(), logger.Fields{
		logger.FieldComponent: "etl",
		logger.FieldRequestID: logger.GetRequestID(ctx),
	})
	pipeline := h.newPipeline()
	go pipeline.Execute(bgCtx, run, datasets...)

	h.logger.WithFields(logger.Fields{
		logger.FieldRunID: run.ID,
		"scope":           scope,
		"force":           force,
	}).Info("Pipeline run started")

	c.JSON(http.StatusOK, gin.H{
		"message":    "Pipeline started successfully",
		"run_id":     run.ID,
		"status":     domain.RunStatusRunning,
		"dataset":    scope,
		"started_at": run.StartedAt.Format(time.RFC3339),
	})
}

// GetStatus handles GET /api/v1/etl/status.
// Query parameters: run_id (optional; defaults to the latest run).
func (h *ETLHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	var run *domain.PipelineRun
	var err error
	if idStr := c.Query("run_id"); idStr != "" {
		id, perr := strconv.ParseUint(idStr, 10, 32)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run_id"})
			return
		}
		run, err = h.runs.GetByID(ctx, uint(id))
		if err == nil && run == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Run %d not found", id)})
			return
		}
	} else {
		run, err = h.runs.GetLatest(ctx)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get run status: " + err.Error(),
		})
		return
	}
	if run == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "No pipeline runs found",
			"status":  "never_run",
		})
		return
	}

	c.JSON(http.StatusOK, runStatusPayload(run))
}

// GetHistory handles GET /api/v1/etl/history.
// Query parameters: limit (1-100, default 10).
func (h *ETLHandler) GetHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid limit: must be between 1 and 100",
		})
		return
	}

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get run history: " + err.Error(),
		})
		return
	}

	history := make([]gin.H, 0, len(runs))
	for i := range runs {
		history = append(history, runStatusPayload(&runs[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":           history,
		"total_returned": len(history),
	})
}

// RefreshScores handles POST /api/v1/etl/refresh: recomputes the aggregate
// table alone, without reloading the base tables.
func (h *ETLHandler) RefreshScores(c *gin.Context) {
	if err := h.agg.Recompute(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to refresh scores: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scores refreshed successfully",
	})
}

// CancelRun handles DELETE /api/v1/etl/cancel/:run_id. Best effort only: it
// flips the run record to failed but cannot stop in-flight work.
func (h *ETLHandler) CancelRun(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("run_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run_id"})
		return
	}

	run, err := h.runs.GetByID(ctx, uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get run: " + err.Error(),
		})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Run %d not found", id)})
		return
	}
	if run.Status != domain.RunStatusRunning {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Run %d is not running (status: %s)", id, run.Status),
		})
		return
	}

	if err := h.runs.Finish(ctx, run.ID, domain.RunStatusFailed, run.RecordsProcessed, "Cancelled by user"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to cancel run: " + err.Error(),
		})
		return
	}

	h.logger.WithFields(logger.Fields{logger.FieldRunID: run.ID}).Info("Pipeline run cancelled")

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Run %d cancelled", id),
		"run_id":  run.ID,
		"status":  domain.RunStatusFailed,
	})
}

func runStatusPayload(run *domain.PipelineRun) gin.H {
	payload := gin.H{
		"run_id":            run.ID,
		"status":            run.Status,
		"started_at":        run.StartedAt.Format(time.RFC3339),
		"records_processed": run.RecordsProcessed,
		"message":           run.StatusMessage(),
	}
	if run.FinishedAt != nil {
		payload["finished_at"] = run.FinishedAt.Format(time.RFC3339)
	}
	if run.DurationSeconds != nil {
		payload["duration_seconds"] = *run.DurationSeconds
	}
	if run.ErrorMessage != nil && run.Status == domain.RunStatusFailed {
		payload["error_message"] = *run.ErrorMessage
	}
	return payload
}
