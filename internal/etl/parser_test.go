package etl

import (
	"context"
	"strings"
	"testing"

	"github.com/maya/screenrank/internal/domain"
	"github.com/stretchr/testify/require"
)

func tsv(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func collect[T any](t *testing.T, c *Cursor[T]) []T {
	t.Helper()
	var out []T
	for {
		rec, ok, err := c.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, rec)
	}
}

func TestPeopleCursor(t *testing.T) {
	input := tsv(
		"nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles",
		"nm0000001\tFred Astaire\t1899\t1987\tactor,soundtrack\ttt0050419,tt0053137",
		"nm0000002\tLauren Bacall\t1924\t2014\tactress,soundtrack\ttt0038355",
		"nm0000003\tJohn Director\t1950\t\\N\tdirector,producer\ttt0000001",
		"nm0000004\t\\N\t1960\t\\N\tactor\ttt0000002",
		"nm0000005\tNo Years\t\\N\t\\N\tactor\t\\N",
		"nm0000006\tshort line",
	)

	cursor := NewPeopleCursor(strings.NewReader(input))
	people := collect(t, cursor)

	require.Len(t, people, 3)

	fred := people[0]
	require.Equal(t, "nm0000001", fred.NConst)
	require.Equal(t, "Fred Astaire", fred.PrimaryName)
	require.NotNil(t, fred.BirthYear)
	require.Equal(t, 1899, *fred.BirthYear)
	require.NotNil(t, fred.DeathYear)
	require.Equal(t, 1987, *fred.DeathYear)
	require.Equal(t, domain.StringArray{"actor", "soundtrack"}, fred.PrimaryProfession)
	require.Equal(t, domain.StringArray{"tt0050419", "tt0053137"}, fred.KnownForTitles)

	// Sentinel years map to absent, sentinel title list to empty
	noYears := people[2]
	require.Nil(t, noYears.BirthYear)
	require.Nil(t, noYears.DeathYear)
	require.Empty(t, noYears.KnownForTitles)

	// Only the truncated line counts as malformed; the director and the
	// nameless row are filtered, not skipped
	require.Equal(t, 1, cursor.Skipped())
}

func TestPeopleCursorProfessionFilterIsCaseInsensitive(t *testing.T) {
	input := tsv(
		"nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles",
		"nm0000001\tLoud Person\t\\N\t\\N\tACTOR\t\\N",
		"nm0000002\tMixed Person\t\\N\t\\N\tActress,producer\t\\N",
	)

	people := collect(t, NewPeopleCursor(strings.NewReader(input)))
	require.Len(t, people, 2)
}

func TestTitlesCursor(t *testing.T) {
	input := tsv(
		"tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres",
		"tt0000001\tmovie\tCarmencita\t\\N\t0\t1894\t\\N\t1\tDocumentary,Short",
		"tt0000002\tmovie\tBad Runtime\tBad Runtime\t1\t1900\t\\N\tabc\tDrama",
		"tt0000003\tmovie\t\\N\t\\N\t0\t1901\t\\N\t10\tDrama",
		"tt0000004\ttoo\tshort",
	)

	cursor := NewTitlesCursor(strings.NewReader(input))
	titles := collect(t, cursor)

	require.Len(t, titles, 2)

	first := titles[0]
	require.Equal(t, "tt0000001", first.TConst)
	require.Equal(t, "movie", first.TitleType)
	require.Equal(t, "Carmencita", first.PrimaryTitle)
	// Absent original title falls back to the primary title
	require.Equal(t, "Carmencita", first.OriginalTitle)
	require.False(t, first.IsAdult)
	require.NotNil(t, first.StartYear)
	require.Equal(t, 1894, *first.StartYear)
	require.Nil(t, first.EndYear)
	require.NotNil(t, first.RuntimeMinutes)
	require.Equal(t, 1, *first.RuntimeMinutes)
	require.Equal(t, domain.StringArray{"Documentary", "Short"}, first.Genres)

	// Non-numeric runtime is stored as absent, not rejected
	second := titles[1]
	require.True(t, second.IsAdult)
	require.Nil(t, second.RuntimeMinutes)

	require.Equal(t, 1, cursor.Skipped())
}

func TestRatingsCursor(t *testing.T) {
	input := tsv(
		"tconst\taverageRating\tnumVotes",
		"tt0000001\t5.7\t1984",
		"tt0000002\t\\N\t500",
		"tt0000003\t6.1\t\\N",
		"tt0000004\t8.2\t1000",
	)

	cursor := NewRatingsCursor(strings.NewReader(input))
	ratings := collect(t, cursor)

	// Rows missing a valid rating or vote count are dropped entirely
	require.Len(t, ratings, 2)
	require.Equal(t, "tt0000001", ratings[0].TConst)
	require.Equal(t, 5.7, ratings[0].AverageRating)
	require.Equal(t, 1984, ratings[0].NumVotes)
	require.Equal(t, "tt0000004", ratings[1].TConst)

	require.Equal(t, 2, cursor.Skipped())
}

func TestCreditsCursor(t *testing.T) {
	input := tsv(
		"tconst\tordering\tnconst\tcategory\tjob\tcharacters",
		"tt0000001\t1\tnm0000001\tactor\t\\N\t[\"Self\"]",
		"tt0000001\t2\tnm0000002\tdirector\t\\N\t\\N",
		"tt0000002\tx\tnm0000003\tactress\t\\N\t\\N",
		"tt0000003\t1\tnm0000004\tself\t\\N\t\\N",
	)

	cursor := NewCreditsCursor(strings.NewReader(input))
	credits := collect(t, cursor)

	require.Len(t, credits, 2)

	first := credits[0]
	require.Equal(t, "tt0000001", first.TConst)
	require.Equal(t, 1, first.Ordering)
	require.Equal(t, "nm0000001", first.NConst)
	require.Equal(t, domain.CategoryActor, first.Category)
	require.Nil(t, first.Job)
	require.NotNil(t, first.Characters)
	require.Equal(t, `["Self"]`, *first.Characters)

	// Non-numeric ordering falls back to 1
	require.Equal(t, 1, credits[1].Ordering)
	require.Equal(t, domain.CategoryActress, credits[1].Category)

	// Disallowed categories are filtered silently, not counted as malformed
	require.Equal(t, 0, cursor.Skipped())
}

func TestCursorEmitCountMatchesInput(t *testing.T) {
	// Total emitted records equals input lines minus header minus skipped
	// minus filtered
	input := tsv(
		"tconst\taverageRating\tnumVotes",
		"tt0000001\t8.0\t1000",
		"tt0000002\t\\N\t500",
		"tt0000003\t9.0\t3000",
		"bad",
	)

	cursor := NewRatingsCursor(strings.NewReader(input))
	ratings := collect(t, cursor)

	require.Equal(t, 5, cursor.Lines())
	require.Equal(t, 2, cursor.Skipped())
	require.Equal(t, len(ratings), cursor.Lines()-1-cursor.Skipped())
}
