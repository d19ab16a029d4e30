package etl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maya/screenrank/internal/domain"
	"github.com/maya/screenrank/internal/logger"
)

// nullSentinel is the literal two-character marker for an absent field.
const nullSentinel = `\N`

// maxLineSize bounds a single input line; the principals file carries long
// character lists.
const maxLineSize = 4 * 1024 * 1024

// parseFunc converts one split line into a typed record.
// keep=false drops the line silently (dataset filter); a non-nil error marks
// the line malformed: it is logged, counted, and skipped.
type parseFunc[T any] func(fields []string) (record T, keep bool, err error)

// Cursor lazily produces typed records from a decompressed line stream, one
// line in memory at a time. It is a single forward pass; restarting requires
// re-opening the source stream.
type Cursor[T any] struct {
	scanner *bufio.Scanner
	parse   parseFunc[T]
	line    int
	skipped int
}

func newCursor[T any](r io.Reader, parse parseFunc[T]) *Cursor[T] {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Cursor[T]{scanner: scanner, parse: parse}
}

// Next returns the next record, or ok=false at end of stream. Malformed lines
// never abort the pass: they are logged with their line number and skipped.
// A non-nil error means the underlying stream itself failed.
func (c *Cursor[T]) Next(ctx context.Context) (record T, ok bool, err error) {
	var zero T
	for c.scanner.Scan() {
		c.line++
		if c.line == 1 {
			// Header line
			continue
		}

		fields := strings.Split(c.scanner.Text(), "\t")
		rec, keep, perr := c.parse(fields)
		if perr != nil {
			c.skipped++
			logger.CtxDebug(ctx, "Skipping malformed line %d: %v", c.line, perr)
			continue
		}
		if !keep {
			continue
		}
		return rec, true, nil
	}
	if serr := c.scanner.Err(); serr != nil {
		return zero, false, fmt.Errorf("read line %d: %w", c.line+1, serr)
	}
	return zero, false, nil
}

// Skipped returns the number of malformed lines dropped so far.
func (c *Cursor[T]) Skipped() int {
	return c.skipped
}

// Lines returns the number of lines consumed so far, header included.
func (c *Cursor[T]) Lines() int {
	return c.line
}

// optional maps the null sentinel and empty fields to "absent".
func optional(field string) *string {
	if field == "" || field == nullSentinel {
		return nil
	}
	return &field
}

// optionalInt parses a numeric field leniently: absent or non-numeric values
// become nil rather than rejecting the row.
func optionalInt(field string) *int {
	if field == "" || field == nullSentinel {
		return nil
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return nil
	}
	return &n
}

// splitList splits a comma-separated list field, mapping the sentinel to an
// empty list.
func splitList(field string) domain.StringArray {
	if field == "" || field == nullSentinel {
		return domain.StringArray{}
	}
	return domain.StringArray(strings.Split(field, ","))
}

// NewPeopleCursor parses the people dataset (nconst, primaryName, birthYear,
// deathYear, primaryProfession, knownForTitles), keeping only individuals
// whose profession list mentions acting.
func NewPeopleCursor(r io.Reader) *Cursor[domain.Person] {
	return newCursor(r, func(fields []string) (domain.Person, bool, error) {
		if len(fields) < 6 {
			return domain.Person{}, false, fmt.Errorf("expected at least 6 columns, got %d", len(fields))
		}

		name := fields[1]
		if name == "" || name == nullSentinel {
			return domain.Person{}, false, nil
		}

		professions := fields[4]
		if !strings.Contains(strings.ToLower(professions), "actor") &&
			!strings.Contains(strings.ToLower(professions), "actress") {
			return domain.Person{}, false, nil
		}

		return domain.Person{
			NConst:            fields[0],
			PrimaryName:       name,
			BirthYear:         optionalInt(fields[2]),
			DeathYear:         optionalInt(fields[3]),
			PrimaryProfession: splitList(professions),
			KnownForTitles:    splitList(fields[5]),
		}, true, nil
	})
}

// NewTitlesCursor parses the titles dataset (tconst, titleType, primaryTitle,
// originalTitle, isAdult, startYear, endYear, runtimeMinutes, genres),
// unfiltered. Non-numeric year and runtime fields are stored as absent.
func NewTitlesCursor(r io.Reader) *Cursor[domain.Title] {
	return newCursor(r, func(fields []string) (domain.Title, bool, error) {
		if len(fields) < 9 {
			return domain.Title{}, false, fmt.Errorf("expected at least 9 columns, got %d", len(fields))
		}

		primary := fields[2]
		if primary == "" || primary == nullSentinel {
			return domain.Title{}, false, nil
		}

		original := primary
		if o := optional(fields[3]); o != nil {
			original = *o
		}

		return domain.Title{
			TConst:         fields[0],
			TitleType:      deref(optional(fields[1])),
			PrimaryTitle:   primary,
			OriginalTitle:  original,
			IsAdult:        fields[4] == "1",
			StartYear:      optionalInt(fields[5]),
			EndYear:        optionalInt(fields[6]),
			RuntimeMinutes: optionalInt(fields[7]),
			Genres:         splitList(fields[8]),
		}, true, nil
	})
}

// NewRatingsCursor parses the ratings dataset (tconst, averageRating,
// numVotes). Rows without a valid numeric rating and vote count are dropped.
func NewRatingsCursor(r io.Reader) *Cursor[domain.Rating] {
	return newCursor(r, func(fields []string) (domain.Rating, bool, error) {
		if len(fields) < 3 {
			return domain.Rating{}, false, fmt.Errorf("expected at least 3 columns, got %d", len(fields))
		}

		rating, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return domain.Rating{}, false, fmt.Errorf("invalid average rating %q", fields[1])
		}
		votes, err := strconv.Atoi(fields[2])
		if err != nil {
			return domain.Rating{}, false, fmt.Errorf("invalid vote count %q", fields[2])
		}

		return domain.Rating{
			TConst:        fields[0],
			AverageRating: rating,
			NumVotes:      votes,
		}, true, nil
	})
}

// NewCreditsCursor parses the principals dataset (tconst, ordering, nconst,
// category, job, characters), keeping only actor/actress categories. A
// non-numeric ordering falls back to 1.
func NewCreditsCursor(r io.Reader) *Cursor[domain.Credit] {
	return newCursor(r, func(fields []string) (domain.Credit, bool, error) {
		if len(fields) < 4 {
			return domain.Credit{}, false, fmt.Errorf("expected at least 4 columns, got %d", len(fields))
		}

		category := fields[3]
		if !domain.ValidCategory(category) {
			return domain.Credit{}, false, nil
		}
		if fields[0] == "" || fields[0] == nullSentinel || fields[2] == "" || fields[2] == nullSentinel {
			return domain.Credit{}, false, fmt.Errorf("missing title or person identifier")
		}

		ordering := 1
		if n := optionalInt(fields[1]); n != nil {
			ordering = *n
		}

		credit := domain.Credit{
			TConst:   fields[0],
			Ordering: ordering,
			NConst:   fields[2],
			Category: category,
		}
		if len(fields) > 4 {
			credit.Job = optional(fields[4])
		}
		if len(fields) > 5 {
			credit.Characters = optional(fields[5])
		}
		return credit, true, nil
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
