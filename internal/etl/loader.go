package etl

import (
	"context"

	"github.com/maya/screenrank/internal/config"
	"github.com/maya/screenrank/internal/logger"
	"gorm.io/gorm"
)

// BatchLoader replaces a destination table's contents with records pulled
// from a cursor, committing in fixed-size batches so memory and transaction
// size stay bounded. Each batch commit is its own short-lived unit of work;
// no transaction spans more than one batch.
type BatchLoader struct {
	db               *gorm.DB
	batchSize        int
	progressInterval int
}

// NewBatchLoader creates a new batch loader.
// Parameters:
//   - db: GORM database handle.
//   - cfg: ETL configuration (batch size, progress interval).
// Returns:
//   - *BatchLoader: initialized loader.
func NewBatchLoader(db *gorm.DB, cfg *config.ETLConfig) *BatchLoader {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	progress := cfg.ProgressInterval
	if progress <= 0 {
		progress = 1000
	}
	return &BatchLoader{
		db:               db,
		batchSize:        batchSize,
		progressInterval: progress,
	}
}

// Load deletes all rows of table, then pulls records from cursor and commits
// them in batches of the configured size, flushing any partial final batch.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - l: loader carrying the database handle and batch settings.
//   - table: destination table name.
//   - cursor: lazy record source.
// Returns:
//   - int: records committed, including those committed before a failure.
//   - error: *LoadError on truncate or commit failure; the loader does not
//     retry or roll forward past the failing batch.
func Load[T any](ctx context.Context, l *BatchLoader, table string, cursor *Cursor[T]) (int, error) {
	if err := l.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
		return 0, &LoadError{Table: table, Err: err}
	}

	batch := make([]T, 0, l.batchSize)
	count := 0
	lastProgress := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.db.WithContext(ctx).Table(table).Create(&batch).Error; err != nil {
			return &LoadError{Table: table, Err: err}
		}
		count += len(batch)
		batch = batch[:0]

		if count-lastProgress >= l.progressInterval {
			lastProgress = count - count%l.progressInterval
			logger.With(logger.Fields{logger.FieldRecords: count}).
				Info(ctx, "Load progress for %s", table)
		}
		return nil
	}

	for {
		record, ok, err := cursor.Next(ctx)
		if err != nil {
			return count, &LoadError{Table: table, Err: err}
		}
		if !ok {
			break
		}
		batch = append(batch, record)
		if len(batch) >= l.batchSize {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}
	if err := flush(); err != nil {
		return count, err
	}

	logger.With(logger.Fields{
		logger.FieldRecords: count,
		logger.FieldSkipped: cursor.Skipped(),
	}).Info(ctx, "Load completed for %s", table)

	return count, nil
}
