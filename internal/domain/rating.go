package domain

// Rating represents one row of the ratings dataset, keyed by title ID.
// Rows without a numeric rating or vote count never reach this type.
type Rating struct {
	TConst        string  `gorm:"column:tconst;type:varchar(20);primaryKey" json:"tconst"`
	AverageRating float64 `gorm:"not null" json:"average_rating"`
	NumVotes      int     `gorm:"not null" json:"num_votes"`
}

// TableName returns the database table name for Rating.
func (Rating) TableName() string {
	return "ratings"
}
