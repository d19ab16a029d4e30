package etl

import "fmt"

// FetchError indicates a failure while retrieving a source file. Fatal to the
// dataset's step; probe failures never produce one, only the download itself.
type FetchError struct {
	Dataset Dataset
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Dataset, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// LoadError indicates a storage failure during table truncation or a batch
// commit. The loader does not retry past it.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// AggregationError indicates a failure during the score recompute. The
// aggregate table may be left empty or stale depending on when the delete ran.
type AggregationError struct {
	Err error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate scores: %v", e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
