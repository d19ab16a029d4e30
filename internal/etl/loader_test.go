package etl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/maya/screenrank/internal/config"
	"github.com/maya/screenrank/internal/domain"
	"github.com/stretchr/testify/require"
)

func ratingsInput(rows ...string) string {
	return tsv(append([]string{"tconst\taverageRating\tnumVotes"}, rows...)...)
}

func TestLoadReplacesTableContents(t *testing.T) {
	db := newTestDB(t)
	loader := NewBatchLoader(db, &config.ETLConfig{BatchSize: 2})
	ctx := context.Background()

	// Pre-populate with rows that must not survive the reload
	require.NoError(t, db.Create(&domain.Rating{TConst: "tt9999999", AverageRating: 1.0, NumVotes: 1}).Error)

	input := ratingsInput(
		"tt0000001\t8.0\t1000",
		"tt0000002\t9.0\t3000",
		"tt0000003\t7.5\t200",
	)

	count, err := Load(ctx, loader, domain.Rating{}.TableName(), NewRatingsCursor(strings.NewReader(input)))
	require.NoError(t, err)
	require.Equal(t, 3, count)

	var ratings []domain.Rating
	require.NoError(t, db.Order("tconst").Find(&ratings).Error)
	require.Len(t, ratings, 3)
	require.Equal(t, "tt0000001", ratings[0].TConst)
	require.Equal(t, "tt0000003", ratings[2].TConst)
}

func TestLoadIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	loader := NewBatchLoader(db, &config.ETLConfig{BatchSize: 2})
	ctx := context.Background()

	input := ratingsInput(
		"tt0000001\t8.0\t1000",
		"tt0000002\t9.0\t3000",
		"tt0000003\t7.5\t200",
	)

	for i := 0; i < 2; i++ {
		count, err := Load(ctx, loader, domain.Rating{}.TableName(), NewRatingsCursor(strings.NewReader(input)))
		require.NoError(t, err)
		require.Equal(t, 3, count)
	}

	// Same contents both times: no duplicates, no leftovers
	var total int64
	require.NoError(t, db.Model(&domain.Rating{}).Count(&total).Error)
	require.EqualValues(t, 3, total)
}

func TestLoadFlushesPartialFinalBatch(t *testing.T) {
	db := newTestDB(t)
	loader := NewBatchLoader(db, &config.ETLConfig{BatchSize: 100})
	ctx := context.Background()

	// Fewer records than one full batch still get committed
	input := ratingsInput("tt0000001\t8.0\t1000")

	count, err := Load(ctx, loader, domain.Rating{}.TableName(), NewRatingsCursor(strings.NewReader(input)))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	var total int64
	require.NoError(t, db.Model(&domain.Rating{}).Count(&total).Error)
	require.EqualValues(t, 1, total)
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	db := newTestDB(t)
	loader := NewBatchLoader(db, &config.ETLConfig{BatchSize: 10})
	ctx := context.Background()

	// The sentinel-rating row is dropped, processing continues
	input := ratingsInput(
		"tt0000001\t\\N\t500",
		"tt0000002\t9.0\t3000",
	)

	count, err := Load(ctx, loader, domain.Rating{}.TableName(), NewRatingsCursor(strings.NewReader(input)))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	var ratings []domain.Rating
	require.NoError(t, db.Find(&ratings).Error)
	require.Len(t, ratings, 1)
	require.Equal(t, "tt0000002", ratings[0].TConst)
}

func TestLoadKeepsCommittedBatchesOnFailure(t *testing.T) {
	db := newTestDB(t)
	loader := NewBatchLoader(db, &config.ETLConfig{BatchSize: 1})
	ctx := context.Background()

	// The repeated tconst violates the primary key in its own batch, after
	// two batches have already committed
	input := ratingsInput(
		"tt0000001\t8.0\t1000",
		"tt0000002\t9.0\t3000",
		"tt0000001\t7.5\t200",
		"tt0000003\t6.0\t100",
	)

	count, err := Load(ctx, loader, domain.Rating{}.TableName(), NewRatingsCursor(strings.NewReader(input)))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Equal(t, domain.Rating{}.TableName(), loadErr.Table)

	// The count reflects the batches committed before the failure, and the
	// table holds exactly those rows
	require.Equal(t, 2, count)

	var ratings []domain.Rating
	require.NoError(t, db.Order("tconst").Find(&ratings).Error)
	require.Len(t, ratings, 2)
	require.Equal(t, "tt0000001", ratings[0].TConst)
	require.Equal(t, "tt0000002", ratings[1].TConst)
}

func TestLoadPeopleWithArrayColumns(t *testing.T) {
	db := newTestDB(t)
	loader := NewBatchLoader(db, &config.ETLConfig{BatchSize: 10})
	ctx := context.Background()

	input := tsv(
		"nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles",
		"nm0000001\tFred Astaire\t1899\t1987\tactor,soundtrack\ttt0050419,tt0053137",
	)

	count, err := Load(ctx, loader, domain.Person{}.TableName(), NewPeopleCursor(strings.NewReader(input)))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	var person domain.Person
	require.NoError(t, db.First(&person, "nconst = ?", "nm0000001").Error)
	require.Equal(t, domain.StringArray{"actor", "soundtrack"}, person.PrimaryProfession)
	require.True(t, person.KnownForTitles.Contains("tt0050419"))
}
