package etl

import (
	"path/filepath"
	"testing"

	"github.com/maya/screenrank/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway SQLite database with the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.Person{},
		&domain.Title{},
		&domain.Rating{},
		&domain.Credit{},
		&domain.ActorScore{},
		&domain.PipelineRun{},
	))

	return db
}
