package etl

import (
	"compress/gzip"
	"context"
	"os"
	"sync"
	"time"

	"github.com/maya/screenrank/internal/domain"
	"github.com/maya/screenrank/internal/logger"
	"github.com/maya/screenrank/internal/repository"
)

// State is the in-memory lifecycle of a single pipeline instance.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Fetcher retrieves a dataset file to local storage.
type Fetcher interface {
	Fetch(ctx context.Context, dataset Dataset) (string, error)
}

// Pipeline sequences fetch, parse, and load for each dataset in the fixed
// order, then the aggregation recompute, then finalizes the run record. One
// instance drives one run.
type Pipeline struct {
	fetcher Fetcher
	loader  *BatchLoader
	agg     *AggregationEngine
	runs    *repository.RunRepository

	mu    sync.Mutex
	state State
}

// NewPipeline creates a pipeline orchestrator.
// Parameters:
//   - fetcher: source file fetcher.
//   - loader: batch loader for the base tables.
//   - agg: aggregation engine for the derived score table.
//   - runs: run history repository.
// Returns:
//   - *Pipeline: orchestrator in the NotStarted state.
func NewPipeline(fetcher Fetcher, loader *BatchLoader, agg *AggregationEngine, runs *repository.RunRepository) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		loader:  loader,
		agg:     agg,
		runs:    runs,
		state:   StateNotStarted,
	}
}

// State returns the pipeline's current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// RunResult is the structured outcome of one pipeline execution.
type RunResult struct {
	RunID            uint      `json:"run_id"`
	Success          bool      `json:"success"`
	RecordsProcessed int       `json:"records_processed"`
	DurationSeconds  float64   `json:"duration_seconds"`
	Error            string    `json:"error,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// Run executes the full pipeline: a new run record, all four datasets in
// order, then the aggregation recompute. The run record is finalized exactly
// once whether the steps succeed or fail; failures are captured in the
// result, not re-raised.
func (p *Pipeline) Run(ctx context.Context) *RunResult {
	return p.run(ctx, DatasetOrder)
}

// RunDataset executes a single-dataset run: one fetch/parse/load step
// followed immediately by the aggregation recompute, under the same
// run-record contract as a full run.
func (p *Pipeline) RunDataset(ctx context.Context, dataset Dataset) *RunResult {
	return p.run(ctx, []Dataset{dataset})
}

func (p *Pipeline) run(ctx context.Context, datasets []Dataset) *RunResult {
	run, err := p.runs.Begin(ctx)
	if err != nil {
		p.setState(StateFailed)
		return &RunResult{
			Success:   false,
			Error:     err.Error(),
			StartedAt: time.Now(),
		}
	}
	return p.Execute(ctx, run, datasets...)
}

// Execute drives an already-created run record through the given datasets.
// Used directly by the API layer, which creates the run row up front so it
// can return the run ID before the background work starts. The run record is
// finalized in a deferred step so exactly one Finish call happens regardless
// of which step fails.
func (p *Pipeline) Execute(ctx context.Context, run *domain.PipelineRun, datasets ...Dataset) (result *RunResult) {
	ctx = logger.SetRunID(ctx, run.ID)
	p.setState(StateRunning)

	total := 0
	var runErr error

	defer func() {
		finishedAt := time.Now()
		status := domain.RunStatusCompleted
		errMsg := ""
		if runErr != nil {
			status = domain.RunStatusFailed
			errMsg = runErr.Error()
			p.setState(StateFailed)
		} else {
			p.setState(StateCompleted)
		}

		if err := p.runs.Finish(ctx, run.ID, status, total, errMsg); err != nil {
			logger.FromContext(ctx).WithError(err).Error("Failed to finalize run record")
		}

		result = &RunResult{
			RunID:            run.ID,
			Success:          runErr == nil,
			RecordsProcessed: total,
			DurationSeconds:  finishedAt.Sub(run.StartedAt).Seconds(),
			Error:            errMsg,
			StartedAt:        run.StartedAt,
			FinishedAt:       finishedAt,
		}

		logger.With(logger.Fields{
			logger.FieldRecords:    total,
			logger.FieldStatus:     string(status),
			logger.FieldDurationMs: finishedAt.Sub(run.StartedAt).Milliseconds(),
		}).Info(ctx, "Pipeline run finished")
	}()

	logger.CtxInfo(ctx, "Starting pipeline run (%d datasets)", len(datasets))

	for _, dataset := range datasets {
		records, err := p.runStep(ctx, dataset)
		total += records
		if err != nil {
			runErr = err
			return
		}
	}

	if err := p.agg.Recompute(ctx); err != nil {
		runErr = err
	}
	return
}

// runStep performs fetch, parse, and load for one dataset, timing and logging
// around the step. The returned count includes batches committed before a
// mid-step failure.
func (p *Pipeline) runStep(ctx context.Context, dataset Dataset) (int, error) {
	ctx = logger.SetDataset(ctx, string(dataset))
	start := time.Now()

	path, err := p.fetcher.Fetch(ctx, dataset)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, &FetchError{Dataset: dataset, Err: err}
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, &FetchError{Dataset: dataset, Err: err}
	}
	defer gz.Close()

	var records int
	switch dataset {
	case DatasetPeople:
		records, err = Load(ctx, p.loader, domain.Person{}.TableName(), NewPeopleCursor(gz))
	case DatasetTitles:
		records, err = Load(ctx, p.loader, domain.Title{}.TableName(), NewTitlesCursor(gz))
	case DatasetRatings:
		records, err = Load(ctx, p.loader, domain.Rating{}.TableName(), NewRatingsCursor(gz))
	case DatasetCredits:
		records, err = Load(ctx, p.loader, domain.Credit{}.TableName(), NewCreditsCursor(gz))
	}
	if err != nil {
		return records, err
	}

	logger.With(logger.Fields{
		logger.FieldRecords:    records,
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "Dataset step completed: %s", dataset)

	return records, nil
}
