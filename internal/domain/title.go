package domain

// Title represents one row of the titles dataset. Loaded unfiltered and fully
// replaced on every pipeline run.
type Title struct {
	TConst         string      `gorm:"column:tconst;type:varchar(20);primaryKey" json:"tconst"`
	TitleType      string      `gorm:"type:varchar(50)" json:"title_type"`
	PrimaryTitle   string      `gorm:"type:varchar(500);not null;index:idx_titles_primary" json:"primary_title"`
	OriginalTitle  string      `gorm:"type:varchar(500)" json:"original_title"`
	IsAdult        bool        `gorm:"default:false" json:"is_adult"`
	StartYear      *int        `json:"start_year,omitempty"`
	EndYear        *int        `json:"end_year,omitempty"`
	RuntimeMinutes *int        `json:"runtime_minutes,omitempty"`
	Genres         StringArray `gorm:"type:text" json:"genres"`
}

// TableName returns the database table name for Title.
func (Title) TableName() string {
	return "titles"
}
