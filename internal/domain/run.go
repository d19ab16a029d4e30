package domain

import "time"

// RunStatus represents the status of a pipeline run.
// Values include RunStatusRunning, RunStatusCompleted, and RunStatusFailed.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineRun represents one end-to-end pipeline execution. Rows are
// append-only history: created with status running, finalized exactly once.
type PipelineRun struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"run_id"`
	Status           RunStatus  `gorm:"type:varchar(20);not null;default:running;index" json:"status"`
	StartedAt        time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	RecordsProcessed int        `gorm:"default:0" json:"records_processed"`
	ErrorMessage     *string    `gorm:"type:text" json:"error_message,omitempty"`
	DurationSeconds  *int       `json:"duration_seconds,omitempty"`
}

// TableName returns the database table name for PipelineRun.
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// StatusMessage returns the human-readable status line shown by the API.
func (r *PipelineRun) StatusMessage() string {
	const layout = "02-01-2006 15:04"
	switch {
	case r.Status == RunStatusCompleted && r.FinishedAt != nil:
		return "Finished running successfully at " + r.FinishedAt.Format(layout)
	case r.Status == RunStatusFailed && r.FinishedAt != nil:
		return "Finished running unsuccessfully at " + r.FinishedAt.Format(layout)
	case r.Status == RunStatusRunning:
		return "Started running at " + r.StartedAt.Format(layout)
	default:
		return "Status: " + string(r.Status)
	}
}
