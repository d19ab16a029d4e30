package etl

import "fmt"

// Dataset identifies one of the four fixed source files.
type Dataset string

const (
	DatasetPeople  Dataset = "people"
	DatasetTitles  Dataset = "titles"
	DatasetRatings Dataset = "ratings"
	DatasetCredits Dataset = "credits"
)

// DatasetOrder is the fixed processing order for a full pipeline run.
var DatasetOrder = []Dataset{DatasetPeople, DatasetTitles, DatasetRatings, DatasetCredits}

var datasetFiles = map[Dataset]string{
	DatasetPeople:  "name.basics.tsv.gz",
	DatasetTitles:  "title.basics.tsv.gz",
	DatasetRatings: "title.ratings.tsv.gz",
	DatasetCredits: "title.principals.tsv.gz",
}

// Filename returns the canonical remote/local file name for the dataset.
func (d Dataset) Filename() string {
	return datasetFiles[d]
}

// ParseDataset validates a dataset name from user input.
func ParseDataset(s string) (Dataset, error) {
	d := Dataset(s)
	if _, ok := datasetFiles[d]; !ok {
		return "", fmt.Errorf("unknown dataset %q", s)
	}
	return d, nil
}
