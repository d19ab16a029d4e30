package etl

import (
	"context"
	"fmt"

	"github.com/maya/screenrank/internal/logger"
	"gorm.io/gorm"
)

// AggregationEngine recomputes the derived actor_scores table from the four
// freshly loaded base tables. The recompute is delete-all then insert; it is
// never incremental.
type AggregationEngine struct {
	db *gorm.DB
}

// NewAggregationEngine creates a new aggregation engine.
func NewAggregationEngine(db *gorm.DB) *AggregationEngine {
	return &AggregationEngine{db: db}
}

// Recompute rebuilds actor_scores: for every (person name, category) pair the
// unweighted mean rating across that person's distinct rated titles, the
// count of those titles, and their summed runtime (absent runtime counts as
// zero). Pairs without a rated title never appear (inner joins throughout).
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - error: *AggregationError on failure; the table may then be empty or
//     stale depending on when the delete executed.
func (e *AggregationEngine) Recompute(ctx context.Context) error {
	logger.CtxInfo(ctx, "Recomputing actor scores")

	if err := e.db.WithContext(ctx).Exec("DELETE FROM actor_scores").Error; err != nil {
		return &AggregationError{Err: err}
	}

	// The inner SELECT DISTINCT collapses repeat credits so a title counts
	// once per (person, category) no matter how many roles it covers.
	avg := "ROUND(AVG(average_rating), 2)"
	if e.db.Dialector.Name() == "postgres" {
		avg = "ROUND(AVG(average_rating)::numeric, 2)"
	}

	insert := fmt.Sprintf(`
		INSERT INTO actor_scores (primary_name, profession, score, number_of_titles, total_runtime_minutes)
		SELECT
			primary_name,
			category AS profession,
			%s AS score,
			COUNT(tconst) AS number_of_titles,
			SUM(runtime_minutes) AS total_runtime_minutes
		FROM (
			SELECT DISTINCT
				p.primary_name,
				c.category,
				t.tconst,
				r.average_rating,
				COALESCE(t.runtime_minutes, 0) AS runtime_minutes
			FROM people p
			JOIN credits c ON p.nconst = c.nconst
			JOIN titles t ON c.tconst = t.tconst
			JOIN ratings r ON t.tconst = r.tconst
			WHERE c.category IN ('actor', 'actress')
		) rated
		GROUP BY primary_name, category
		ORDER BY score DESC`, avg)

	if err := e.db.WithContext(ctx).Exec(insert).Error; err != nil {
		return &AggregationError{Err: err}
	}

	logger.CtxInfo(ctx, "Actor scores recomputed")
	return nil
}
