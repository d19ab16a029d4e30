package repository

import (
	"context"
	"errors"
	"time"

	"github.com/maya/screenrank/internal/domain"
	"gorm.io/gorm"
)

// RunRepository tracks the lifecycle of pipeline runs. Run rows are
// append-only history: Begin creates a running row, Finish finalizes it
// exactly once, nothing ever deletes them.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RunRepository: repository instance bound to db.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Begin inserts a new run row with status running and the current timestamp.
// The row ID is returned immediately so the orchestrator can reference it
// even if the run later fails.
func (r *RunRepository) Begin(ctx context.Context) (*domain.PipelineRun, error) {
	run := &domain.PipelineRun{
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Finish finalizes a run: sets the terminal status, stamps the finish
// timestamp, stores the processed-record count and, for failures, the error
// message, and computes the integer-truncated duration in seconds.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: run ID returned by Begin.
//   - status: terminal status (completed or failed).
//   - records: total records processed before the run ended.
//   - errMsg: human-readable failure reason; empty for completed runs.
// Returns:
//   - error: non-nil if the run is missing or the update fails.
func (r *RunRepository) Finish(ctx context.Context, id uint, status domain.RunStatus, records int, errMsg string) error {
	var run domain.PipelineRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return err
	}

	now := time.Now()
	duration := int(now.Sub(run.StartedAt).Seconds())

	updates := map[string]interface{}{
		"status":            status,
		"finished_at":       now,
		"records_processed": records,
		"duration_seconds":  duration,
	}
	if errMsg != "" {
		updates["error_message"] = errMsg
	}

	return r.db.WithContext(ctx).Model(&run).Updates(updates).Error
}

// GetByID retrieves a run by its ID. Returns (nil, nil) when no such run exists.
func (r *RunRepository) GetByID(ctx context.Context, id uint) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// GetLatest retrieves the most recently started run. Returns (nil, nil) when
// the history is empty.
func (r *RunRepository) GetLatest(ctx context.Context) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	if err := r.db.WithContext(ctx).Order("id DESC").First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// List retrieves the most recent runs, newest first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	var runs []domain.PipelineRun
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// HasRunning reports whether any run is currently in the running state.
// This is an advisory check, not a storage-level lock: two callers racing
// past it can both start, which the orchestration layer accepts.
func (r *RunRepository) HasRunning(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.PipelineRun{}).
		Where("status = ?", domain.RunStatusRunning).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
