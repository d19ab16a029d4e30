package domain

// ActorScore is the derived aggregate row: one entry per (person name,
// profession) pair with at least one rated title. The table is recomputed
// from scratch after every successful load phase, never updated in place.
type ActorScore struct {
	ID                  uint    `gorm:"primaryKey;autoIncrement" json:"-"`
	PrimaryName         string  `gorm:"type:varchar(255);not null;index:idx_scores_name" json:"name"`
	Profession          string  `gorm:"type:varchar(50);not null;index:idx_scores_profession" json:"profession"`
	Score               float64 `gorm:"not null;index:idx_scores_score" json:"score"`
	NumberOfTitles      int     `gorm:"not null" json:"number_of_titles"`
	TotalRuntimeMinutes int     `gorm:"not null" json:"total_runtime_minutes"`
}

// TableName returns the database table name for ActorScore.
func (ActorScore) TableName() string {
	return "actor_scores"
}
